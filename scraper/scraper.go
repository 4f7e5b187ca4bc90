package scraper

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/models"
)

// Scraper holds a connection to a Chrome the user already runs with
// --remote-debugging-port. The browser is borrowed: we never launch,
// navigate or close it, and its tabs belong to the user.
type Scraper struct {
	browser *rod.Browser
	site    config.SiteConfig
	ws      *cdp.WebSocket
}

// Connect resolves the debugging endpoint and attaches to the browser.
// ConnectTimeout bounds endpoint resolution and the websocket handshake.
// ctx stays attached to the browser for later calls and events; the
// connection itself lives until Close.
func Connect(ctx context.Context, browserCfg config.BrowserConfig, site config.SiteConfig) (*Scraper, error) {
	dialCtx := ctx
	if browserCfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, browserCfg.ConnectTimeout)
		defer cancel()
	}

	controlURL, err := resolveURL(dialCtx, browserCfg.DebugURL)
	if err != nil {
		return nil, models.NewOpError(
			models.ErrCodeBrowserConnect,
			"failed to resolve debugging endpoint "+browserCfg.DebugURL,
			err,
		)
	}
	slog.Debug("debugging endpoint resolved", "controlURL", controlURL)

	ws := &cdp.WebSocket{}
	if err := ws.Connect(dialCtx, controlURL, nil); err != nil {
		return nil, models.NewOpError(
			models.ErrCodeBrowserConnect,
			"failed to open devtools websocket",
			err,
		)
	}

	browser := rod.New().Client(cdp.New().Start(ws)).Context(ctx)
	if err := browser.Connect(); err != nil {
		_ = ws.Close()
		return nil, models.NewOpError(
			models.ErrCodeBrowserConnect,
			"failed to connect to browser",
			err,
		)
	}

	return &Scraper{browser: browser, site: site, ws: ws}, nil
}

// Close drops the devtools connection. Chrome and its tabs keep running.
func (s *Scraper) Close() error {
	return s.ws.Close()
}

// resolveURL runs launcher.ResolveURL, which has no context of its own.
func resolveURL(ctx context.Context, debugURL string) (string, error) {
	type resolved struct {
		url string
		err error
	}
	ch := make(chan resolved, 1)
	go func() {
		u, err := launcher.ResolveURL(debugURL)
		ch <- resolved{u, err}
	}()

	select {
	case r := <-ch:
		return r.url, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ProblemPage returns the first open tab showing a problem page.
func (s *Scraper) ProblemPage(ctx context.Context) (*ProblemPage, error) {
	pages, err := s.browser.Context(ctx).Pages()
	if err != nil {
		return nil, models.NewOpError(
			models.ErrCodeBrowserConnect,
			"failed to list pages",
			err,
		)
	}
	slog.Debug("pages listed", "count", len(pages))

	candidates := make([]*ProblemPage, 0, len(pages))
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			slog.Debug("skipping page without target info", "error", err)
			continue
		}
		slog.Debug("page", "url", info.URL)
		candidates = append(candidates, &ProblemPage{page: p, url: info.URL, site: s.site})
	}

	return Locate(candidates, s.site.ProblemURLPrefix)
}
