package correlator

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/algoserve/models"
)

// chanSource hands out one unbuffered channel so tests control delivery.
type chanSource struct {
	ch     chan *Response
	closed atomic.Bool
	subs   atomic.Int32
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan *Response)}
}

func (s *chanSource) Subscribe(ctx context.Context) (*Subscription, error) {
	s.subs.Add(1)
	return NewSubscription(s.ch, func() { s.closed.Store(true) }), nil
}

func jsonResponse(url, body string) *Response {
	return NewResponse(url, 200, func(context.Context) ([]byte, error) {
		return []byte(body), nil
	})
}

type state struct {
	State string `json:"state"`
	Msg   string `json:"status_msg"`
}

func extractState(body []byte) (state, error) {
	var s state
	if err := json.Unmarshal(body, &s); err != nil {
		return state{}, err
	}
	if s.State == "PENDING" || s.State == "STARTED" {
		return state{}, ErrPending
	}
	return s, nil
}

func TestWait_FirstMatchWins(t *testing.T) {
	src := newChanSource()
	ctx := context.Background()

	type outcome struct {
		v   state
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := Wait(ctx, src, URLContains("/check/"), extractState)
		done <- outcome{v, err}
	}()

	src.ch <- jsonResponse("https://leetcode.com/graphql", `not json at all`)
	src.ch <- jsonResponse("https://leetcode.com/submissions/detail/1/check/", `{"state":"PENDING"}`)
	src.ch <- jsonResponse("https://leetcode.com/submissions/detail/1/check/", `{"state":"STARTED"}`)
	if src.closed.Load() {
		t.Fatal("subscription closed while only pending states were seen")
	}
	src.ch <- jsonResponse("https://leetcode.com/submissions/detail/1/check/", `{"state":"SUCCESS","status_msg":"Accepted"}`)

	select {
	case got := <-done:
		if got.err != nil {
			t.Fatalf("unexpected error: %v", got.err)
		}
		if got.v.Msg != "Accepted" {
			t.Errorf("resolved with %+v, want Accepted", got.v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not resolve")
	}
	if !src.closed.Load() {
		t.Error("subscription must be released after resolution")
	}
}

func TestWait_PendingKeepsSubscription(t *testing.T) {
	src := newChanSource()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w, err := Arm(ctx, src, URLContains("check"), extractState)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		select {
		case src.ch <- jsonResponse("/check/", `{"state":"PENDING"}`):
		case <-ctx.Done():
		}
	}()

	_, err = w.Wait(ctx)
	if !models.HasCode(err, models.ErrCodeTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("timeout should wrap the context error, got %v", err)
	}
}

func TestWait_ParseErrorIsFatal(t *testing.T) {
	src := newChanSource()
	done := make(chan error, 1)
	go func() {
		_, err := Wait(context.Background(), src, URLContains("submit"), extractState)
		done <- err
	}()

	src.ch <- jsonResponse("https://leetcode.com/problems/two-sum/submit/", `<html>`)

	err := <-done
	if !models.HasCode(err, models.ErrCodeResponseParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !src.closed.Load() {
		t.Error("subscription must be released after a parse error")
	}
}

func TestWait_BodyErrorIsFatal(t *testing.T) {
	src := newChanSource()
	done := make(chan error, 1)
	go func() {
		_, err := Wait(context.Background(), src, URLContains("submit"), extractState)
		done <- err
	}()

	src.ch <- NewResponse("/submit/", 200, func(context.Context) ([]byte, error) {
		return nil, errors.New("No resource with given identifier found")
	})

	if err := <-done; !models.HasCode(err, models.ErrCodeResponseParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestWait_NonMatchingBodyNeverFetched(t *testing.T) {
	src := newChanSource()
	var fetched atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := Wait(ctx, src, URLContains("check"), extractState)
		done <- err
	}()

	src.ch <- NewResponse("https://assets.leetcode.com/app.js", 200, func(context.Context) ([]byte, error) {
		fetched.Store(true)
		return nil, nil
	})
	cancel()
	<-done

	if fetched.Load() {
		t.Error("body of a non-matching response was fetched")
	}
}

func TestWaiter_ResolvesExactlyOnce(t *testing.T) {
	src := newChanSource()
	ctx := context.Background()

	w, err := Arm(ctx, src, URLContains("check"), extractState)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		src.ch <- jsonResponse("/check/", `{"state":"SUCCESS","status_msg":"Wrong Answer"}`)
	}()

	first, err := w.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Nothing is sent anymore: a second Wait must not block on the stream.
	second, err := w.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second Wait returned %+v, want %+v", second, first)
	}
	if n := src.subs.Load(); n != 1 {
		t.Errorf("subscribed %d times, want 1", n)
	}
}

func TestWait_StreamClosed(t *testing.T) {
	ch := make(chan *Response)
	close(ch)
	src := sourceFunc(func(context.Context) (*Subscription, error) {
		return NewSubscription(ch, nil), nil
	})

	_, err := Wait(context.Background(), src, URLContains("x"), extractState)
	if !models.HasCode(err, models.ErrCodeStreamClosed) {
		t.Fatalf("expected stream closed, got %v", err)
	}
}

func TestArm_SubscribeError(t *testing.T) {
	boom := errors.New("target closed")
	src := sourceFunc(func(context.Context) (*Subscription, error) { return nil, boom })

	if _, err := Wait(context.Background(), src, URLContains("x"), extractState); !errors.Is(err, boom) {
		t.Fatalf("expected subscribe error, got %v", err)
	}
}

func TestSubscription_CloseIdempotent(t *testing.T) {
	var calls int
	sub := NewSubscription(nil, func() { calls++ })
	sub.Close()
	sub.Close()
	if calls != 1 {
		t.Errorf("cancel called %d times, want 1", calls)
	}
}

type sourceFunc func(ctx context.Context) (*Subscription, error)

func (f sourceFunc) Subscribe(ctx context.Context) (*Subscription, error) { return f(ctx) }
