// Package state keeps the image URL currently served by the page.
package state

import "sync"

// Image is the Current Image State: a single optional URL shared between the
// refresh timer and the request handlers.
type Image struct {
	mu  sync.RWMutex
	url string
	set bool
}

func New() *Image {
	return &Image{}
}

// Get returns the held URL and whether one was ever set.
func (s *Image) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.url, s.set
}

// Swap stores url unless it is already held. It reports whether the state changed.
func (s *Image) Swap(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set && s.url == url {
		return false
	}

	s.url, s.set = url, true
	return true
}
