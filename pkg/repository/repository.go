package repository

import (
	"context"
	"errors"
	"time"

	"nasapuff"

	"github.com/jmoiron/sqlx"
)

// ErrHistoryDisabled is returned by the history store when no database is configured.
var ErrHistoryDisabled = errors.New("picture history is disabled")

type Picture interface {
	InsertOne(ctx context.Context, p *nasapuff.ApodModel) (int64, error)
	GetByDate(ctx context.Context, date time.Time) (*nasapuff.ApodModel, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]nasapuff.ApodModel, error)
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)
}

type Repository struct {
	Picture
}

// NewRepository wraps db. A nil db gives a repository whose methods return ErrHistoryDisabled.
func NewRepository(db *sqlx.DB) *Repository {
	if db == nil {
		return &Repository{Picture: disabled{}}
	}

	return &Repository{
		Picture: NewActions(db),
	}
}

type disabled struct{}

func (disabled) InsertOne(context.Context, *nasapuff.ApodModel) (int64, error) {
	return 0, ErrHistoryDisabled
}

func (disabled) GetByDate(context.Context, time.Time) (*nasapuff.ApodModel, error) {
	return nil, ErrHistoryDisabled
}

func (disabled) GetByDateRange(context.Context, time.Time, time.Time) ([]nasapuff.ApodModel, error) {
	return nil, ErrHistoryDisabled
}

func (disabled) DeleteByDate(context.Context, time.Time) (int64, error) {
	return 0, ErrHistoryDisabled
}
