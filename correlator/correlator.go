// Package correlator matches a future network response to a logical wait.
//
// A Source publishes every response a page receives. A Waiter subscribes to
// that stream, skips responses its predicate rejects, and resolves exactly
// once with the first matching response whose body extracts to a non-pending
// value. The subscription is released when the Waiter resolves, whatever the
// outcome.
package correlator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/use-agent/algoserve/models"
)

// ErrPending is returned by an Extractor for intermediate states that must
// be skipped while the waiter keeps listening.
var ErrPending = errors.New("correlator: pending")

// Response is one completed network response observed on a page.
type Response struct {
	URL    string
	Status int

	body func(ctx context.Context) ([]byte, error)
}

// NewResponse builds a Response whose body is fetched lazily.
func NewResponse(url string, status int, body func(ctx context.Context) ([]byte, error)) *Response {
	return &Response{URL: url, Status: status, body: body}
}

// Body fetches the response body.
func (r *Response) Body(ctx context.Context) ([]byte, error) {
	if r.body == nil {
		return nil, errors.New("correlator: response has no body")
	}
	return r.body(ctx)
}

// Source is anything that can publish its responses.
type Source interface {
	// Subscribe starts delivering responses. Delivery is armed by the time
	// Subscribe returns.
	Subscribe(ctx context.Context) (*Subscription, error)
}

// Subscription is a cancellable handle over a response stream.
type Subscription struct {
	C <-chan *Response

	once   sync.Once
	cancel func()
}

// NewSubscription wraps a response channel and the function that tears the
// underlying listener down.
func NewSubscription(c <-chan *Response, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Predicate selects the responses a waiter cares about.
type Predicate func(r *Response) bool

// Extractor turns a matching body into a value, or reports ErrPending.
type Extractor[T any] func(body []byte) (T, error)

// Waiter is a single-resolution future over one subscription.
type Waiter[T any] struct {
	sub     *Subscription
	match   Predicate
	extract Extractor[T]

	mu       sync.Mutex
	resolved bool
	value    T
	err      error
}

// Arm subscribes to src and returns a waiter ready to resolve. Responses
// arriving between Arm and Wait are not lost.
func Arm[T any](ctx context.Context, src Source, match Predicate, extract Extractor[T]) (*Waiter[T], error) {
	sub, err := src.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	return &Waiter[T]{sub: sub, match: match, extract: extract}, nil
}

// Wait blocks until the waiter resolves. The first outcome is final: later
// calls return it again without touching the stream.
func (w *Waiter[T]) Wait(ctx context.Context) (T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.resolved {
		w.value, w.err = w.await(ctx)
		w.resolved = true
		w.sub.Close()
	}
	return w.value, w.err
}

// Close releases the subscription without resolving.
func (w *Waiter[T]) Close() {
	w.sub.Close()
}

func (w *Waiter[T]) await(ctx context.Context) (T, error) {
	var zero T
	for {
		select {
		case <-ctx.Done():
			return zero, models.NewOpError(models.ErrCodeTimeout, "waiting for response", ctx.Err())
		case r, ok := <-w.sub.C:
			if !ok {
				return zero, models.NewOpError(models.ErrCodeStreamClosed, "response stream closed", nil)
			}
			if !w.match(r) {
				continue
			}

			body, err := r.Body(ctx)
			if err != nil {
				return zero, models.NewOpError(models.ErrCodeResponseParse, "read body of "+r.URL, err)
			}

			v, err := w.extract(body)
			if errors.Is(err, ErrPending) {
				continue
			}
			if err != nil {
				return zero, models.NewOpError(models.ErrCodeResponseParse, "decode body of "+r.URL, err)
			}
			return v, nil
		}
	}
}

// Wait arms a waiter, waits for it and releases the subscription.
func Wait[T any](ctx context.Context, src Source, match Predicate, extract Extractor[T]) (T, error) {
	w, err := Arm(ctx, src, match, extract)
	if err != nil {
		var zero T
		return zero, err
	}
	defer w.Close()
	return w.Wait(ctx)
}

// URLContains matches responses whose URL contains substr.
func URLContains(substr string) Predicate {
	return func(r *Response) bool {
		return strings.Contains(r.URL, substr)
	}
}
