package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nasapuff/pkg/consts"
	"nasapuff/pkg/repository"
	"nasapuff/pkg/state"

	"github.com/sirupsen/logrus"
)

// Refresher re-fetches the APOD record on a fixed interval and keeps the image state current.
type Refresher struct {
	fetcher  Fetcher
	state    *state.Image
	history  Picture
	log      logrus.FieldLogger
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher wires the refresh timer to the same state the page reads.
func NewRefresher(fetcher Fetcher, st *state.Image, history Picture, log logrus.FieldLogger, interval time.Duration) *Refresher {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Refresher{
		fetcher:  fetcher,
		state:    st,
		history:  history,
		log:      log,
		interval: interval,
	}
}

// Update runs one refresh cycle. The state only changes when the fetched URL differs.
func (r *Refresher) Update(ctx context.Context) error {

	md, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch apod: %w", err)
	}

	if !r.state.Swap(md.URL) {
		r.log.Info(consts.MsgNoUpdate)
		return nil
	}

	r.log.Infof(consts.MsgUpdated, md.URL)

	if r.history == nil {
		return nil
	}

	if _, err := r.history.InsertOne(ctx, md); err != nil && !errors.Is(err, repository.ErrHistoryDisabled) {
		r.log.WithError(err).Warnf("failed to record picture %s", md.URL)
	}

	return nil
}

// Start launches the timer goroutine. The first cycle runs one interval after Start,
// later cycles keep the ticker's fixed schedule. Calling Start twice is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go r.run(ctx, r.done)
}

// Stop cancels the timer, including a fetch in flight, and waits for the goroutine to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Update(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.log.WithError(err).Error("image refresh failed")
			}
		}
	}
}
