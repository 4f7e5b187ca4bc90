package judge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/correlator"
	"github.com/use-agent/algoserve/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Page is the slice of a problem tab the orchestrators need.
type Page interface {
	correlator.Source
	URL() string
	ClickSubmit(ctx context.Context) error
}

// Judge runs the submit and listen flows against one problem page.
type Judge struct {
	site        config.SiteConfig
	waitTimeout time.Duration
	limiter     *rate.Limiter
	rejected    map[string]struct{}
}

// New builds a Judge from the site and judge configuration.
func New(site config.SiteConfig, cfg config.JudgeConfig) *Judge {
	rejected := make(map[string]struct{}, len(cfg.RejectedStatuses))
	for _, s := range cfg.RejectedStatuses {
		rejected[s] = struct{}{}
	}

	burst := cfg.ListenRetryBurst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.ListenRetryRPS > 0 {
		limit = rate.Limit(cfg.ListenRetryRPS)
	}

	return &Judge{
		site:        site,
		waitTimeout: cfg.WaitTimeout,
		limiter:     rate.NewLimiter(limit, burst),
		rejected:    rejected,
	}
}

// timeout bounds a single wait. A zero WaitTimeout means no deadline.
func (j *Judge) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if j.waitTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, j.waitTimeout)
}

// Submit presses the page's submit control and waits for the verdict.
// Any failure is returned as is; there is no retry.
func (j *Judge) Submit(ctx context.Context, page Page) (*Verdict, error) {
	waitCtx, cancel := j.timeout(ctx)
	defer cancel()

	// Armed before the click so the created response cannot slip past.
	created, err := correlator.Arm(waitCtx, page, correlator.URLContains(j.site.SubmitURLPattern), ParseSubmissionID)
	if err != nil {
		return nil, err
	}
	defer created.Close()

	var id string
	g, gctx := errgroup.WithContext(waitCtx)
	g.Go(func() error {
		return page.ClickSubmit(gctx)
	})
	g.Go(func() error {
		var err error
		id, err = created.Wait(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.Info("submission created", "submission_id", id)

	return j.awaitVerdict(ctx, page, id)
}

// Listen waits for somebody else to submit on the page and returns the
// first judged verdict. Errors of a round are dropped and the next round
// starts once the limiter allows it; only ctx ends the loop early.
func (j *Judge) Listen(ctx context.Context, page Page) (*Verdict, error) {
	for round := 1; ; round++ {
		if err := j.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		v, err := j.listenOnce(ctx, page)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Debug("listen round discarded", "round", round, "error", err)
	}
}

func (j *Judge) listenOnce(ctx context.Context, page Page) (*Verdict, error) {
	waitCtx, cancel := j.timeout(ctx)
	defer cancel()

	id, err := correlator.Wait(waitCtx, page, correlator.URLContains(j.site.SubmitURLPattern), ParseSubmissionID)
	if err != nil {
		return nil, err
	}
	slog.Info("submission seen", "submission_id", id)

	return j.awaitVerdict(ctx, page, id)
}

func (j *Judge) awaitVerdict(ctx context.Context, page Page, id string) (*Verdict, error) {
	waitCtx, cancel := j.timeout(ctx)
	defer cancel()

	v, err := correlator.Wait(waitCtx, page, correlator.URLContains(id), ParseVerdict)
	if err != nil {
		return nil, fmt.Errorf("verdict for submission %s: %w", id, err)
	}
	v.SubmissionID = id
	return v, nil
}

// Classify maps a verdict to the process result. Rejected status messages
// exit 1, everything else exits 0.
func (j *Judge) Classify(v *Verdict) models.Result {
	if _, bad := j.rejected[v.StatusMsg]; bad {
		return models.Failure(v.StatusMsg)
	}
	return models.Success(v.StatusMsg)
}
