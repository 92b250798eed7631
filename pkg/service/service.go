package service

import (
	"context"
	"time"

	"nasapuff"
	"nasapuff/pkg/repository"
	"nasapuff/pkg/state"
)

// Fetcher returns today's APOD record.
type Fetcher interface {
	Fetch(ctx context.Context) (*nasapuff.ApodModel, error)
}

type Picture interface {
	InsertOne(ctx context.Context, p *nasapuff.ApodModel) (int64, error)
	GetByDate(ctx context.Context, date time.Time) (*nasapuff.ApodModel, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]nasapuff.ApodModel, error)
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)
}

type Image interface {
	Current(ctx context.Context) (*nasapuff.ApodModel, error)
}

type Service struct {
	Picture
	Image
}

func NewService(repos *repository.Repository, fetcher Fetcher, st *state.Image) *Service {
	return &Service{
		Picture: repos.Picture,
		Image:   NewImageService(fetcher, st),
	}
}

// ImageService serves the record behind the page.
type ImageService struct {
	fetcher Fetcher
	state   *state.Image
}

func NewImageService(fetcher Fetcher, st *state.Image) *ImageService {
	return &ImageService{fetcher: fetcher, state: st}
}

// Current returns a record holding only the cached URL when one is set. Before the
// first refresh it fetches the full record directly and leaves the state untouched.
func (s *ImageService) Current(ctx context.Context) (*nasapuff.ApodModel, error) {
	if u, ok := s.state.Get(); ok {
		return &nasapuff.ApodModel{URL: u}, nil
	}

	return s.fetcher.Fetch(ctx)
}
