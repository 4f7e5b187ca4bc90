package scraper

import (
	"context"
	"log/slog"
	"sync"

	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/models"
)

// Attachment shares one browser connection across the calls of a
// long-running process. It attaches on first use and reattaches once when
// the connection turns out to be dead.
type Attachment struct {
	connect func() (*Scraper, error)

	mu sync.Mutex
	sc *Scraper
}

// NewAttachment prepares a lazy attachment. ctx bounds the lifetime of every
// connection it opens.
func NewAttachment(ctx context.Context, browserCfg config.BrowserConfig, site config.SiteConfig) *Attachment {
	return &Attachment{
		connect: func() (*Scraper, error) {
			return Connect(ctx, browserCfg, site)
		},
	}
}

// ProblemPage returns the problem tab over the shared connection.
func (a *Attachment) ProblemPage(ctx context.Context) (*ProblemPage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for attempt := 0; ; attempt++ {
		if a.sc == nil {
			sc, err := a.connect()
			if err != nil {
				return nil, err
			}
			a.sc = sc
		}

		p, err := a.sc.ProblemPage(ctx)
		if err == nil || attempt > 0 || ctx.Err() != nil || !models.HasCode(err, models.ErrCodeBrowserConnect) {
			return p, err
		}
		slog.Info("browser connection lost, reattaching", "error", err)
		a.dropLocked()
	}
}

// Close releases the shared connection, if any.
func (a *Attachment) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropLocked()
}

func (a *Attachment) dropLocked() {
	if a.sc == nil {
		return
	}
	if err := a.sc.Close(); err != nil {
		slog.Debug("closing browser connection", "error", err)
	}
	a.sc = nil
}
