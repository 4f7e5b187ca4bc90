package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/correlator"
	"github.com/use-agent/algoserve/models"
)

// responseBuffer absorbs bursts (the check endpoint is polled every second
// or so, but the page loads dozens of assets around a submit).
const responseBuffer = 32

// ProblemPage is one borrowed problem tab.
type ProblemPage struct {
	page *rod.Page
	url  string
	site config.SiteConfig
}

// URL returns the address the tab had when it was located.
func (p *ProblemPage) URL() string { return p.url }

// HTML returns the rendered document.
func (p *ProblemPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// ClickSubmit clicks the first <button> whose text contains the configured
// submit label. It does not wait for the button to appear.
func (p *ProblemPage) ClickSubmit(ctx context.Context) error {
	pg := p.page.Context(ctx)

	buttons, err := pg.Elements("button")
	if err != nil {
		return models.NewOpError(models.ErrCodeSubmitControlNotFound, "failed to query buttons", err)
	}

	for _, el := range buttons {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if !strings.Contains(strings.TrimSpace(text), p.site.SubmitButtonText) {
			continue
		}
		slog.Debug("clicking submit control", "text", strings.TrimSpace(text))
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("click submit control: %w", err)
		}
		return nil
	}

	return models.NewOpError(
		models.ErrCodeSubmitControlNotFound,
		fmt.Sprintf("no button containing %q among %d buttons", p.site.SubmitButtonText, len(buttons)),
		nil,
	)
}

// Subscribe implements correlator.Source over the CDP Network domain.
//
// A response is published once its body has finished loading, so that the
// body can be fetched. The listener is registered before Subscribe returns.
func (p *ProblemPage) Subscribe(ctx context.Context) (*correlator.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan *correlator.Response, responseBuffer)

	// All callbacks run on the single wait goroutine below.
	inflight := make(map[proto.NetworkRequestID]*proto.NetworkResponse)

	wait := p.page.Context(subCtx).EachEvent(
		func(e *proto.NetworkResponseReceived) {
			inflight[e.RequestID] = e.Response
		},
		func(e *proto.NetworkLoadingFailed) {
			delete(inflight, e.RequestID)
		},
		func(e *proto.NetworkLoadingFinished) {
			res, ok := inflight[e.RequestID]
			if !ok {
				return
			}
			delete(inflight, e.RequestID)

			r := correlator.NewResponse(res.URL, res.Status, p.bodyOf(e.RequestID))
			select {
			case out <- r:
			case <-subCtx.Done():
			}
		},
	)

	done := drain(wait, out)

	return correlator.NewSubscription(out, func() {
		cancel()
		<-done
	}), nil
}

// drain runs wait and closes out once the event stream ends, either because
// the subscription was cancelled or because the browser went away. Sends
// on out happen only inside wait's callbacks, so closing here is safe. The
// returned channel is closed after out.
func drain(wait func(), out chan<- *correlator.Response) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		wait()
	}()
	return done
}

func (p *ProblemPage) bodyOf(id proto.NetworkRequestID) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		res, err := proto.NetworkGetResponseBody{RequestID: id}.Call(p.page.Context(ctx))
		if err != nil {
			return nil, err
		}
		if res.Base64Encoded {
			return base64.StdEncoding.DecodeString(res.Body)
		}
		return []byte(res.Body), nil
	}
}
