// Package correlatortest provides a scripted response source for tests.
package correlatortest

import (
	"context"
	"sync"

	"github.com/use-agent/algoserve/correlator"
)

// JSON builds a response with a fixed body.
func JSON(url, body string) *correlator.Response {
	return correlator.NewResponse(url, 200, func(context.Context) ([]byte, error) {
		return []byte(body), nil
	})
}

// Source replays one script per subscription, in subscription order.
// Subscriptions beyond the scripts stay silent until closed.
type Source struct {
	mu      sync.Mutex
	scripts [][]*correlator.Response
	subs    int
	open    int
}

// NewSource returns a Source with the given scripts.
func NewSource(scripts ...[]*correlator.Response) *Source {
	return &Source{scripts: scripts}
}

// Subscribe implements correlator.Source.
func (s *Source) Subscribe(ctx context.Context) (*correlator.Subscription, error) {
	s.mu.Lock()
	idx := s.subs
	s.subs++
	s.open++
	var script []*correlator.Response
	if idx < len(s.scripts) {
		script = s.scripts[idx]
	}
	s.mu.Unlock()

	ch := make(chan *correlator.Response)
	done := make(chan struct{})
	go func() {
		for _, r := range script {
			select {
			case ch <- r:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return correlator.NewSubscription(ch, func() {
		close(done)
		s.mu.Lock()
		s.open--
		s.mu.Unlock()
	}), nil
}

// Subscriptions is the number of Subscribe calls so far.
func (s *Source) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs
}

// Open is the number of subscriptions not yet closed.
func (s *Source) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
