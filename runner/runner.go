// Package runner dispatches one CLI operation against the problem page and
// reduces the outcome to a models.Result. It never exits the process.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/judge"
	"github.com/use-agent/algoserve/models"
	"github.com/use-agent/algoserve/question"
	"github.com/use-agent/algoserve/webhook"
)

// Operations accepted on the command line.
const (
	OpSubmit  = "submit"
	OpListen  = "listen"
	OpExtract = "extract"
)

// Usage is printed for a missing or unknown operation.
const Usage = "usage: algoserve submit|listen|extract"

// ValidOp reports whether op names an operation.
func ValidOp(op string) bool {
	switch op {
	case OpSubmit, OpListen, OpExtract:
		return true
	}
	return false
}

// Page is a problem tab as every operation sees it.
type Page interface {
	judge.Page
	question.Page
}

// FindPage locates the problem tab.
type FindPage func(ctx context.Context) (Page, error)

// Runner wires the operations together.
type Runner struct {
	find      FindPage
	judge     *judge.Judge
	extractor *question.Extractor
	notifier  *webhook.Notifier
}

// New creates a Runner.
func New(find FindPage, j *judge.Judge, x *question.Extractor, hook config.WebhookConfig) *Runner {
	return &Runner{find: find, judge: j, extractor: x, notifier: webhook.NewNotifier(hook)}
}

// Run executes op.
func (r *Runner) Run(ctx context.Context, op string) models.Result {
	if !ValidOp(op) {
		err := models.NewOpError(models.ErrCodeInvalidInput, fmt.Sprintf("unknown operation %q", op), nil)
		slog.Error("invalid operation", "error", err)
		return models.Failure(Usage)
	}

	page, err := r.find(ctx)
	if err != nil {
		slog.Error("problem page not available", "error", err)
		return models.Failure(err.Error())
	}
	slog.Info("problem page located", "url", page.URL())

	switch op {
	case OpSubmit:
		v, err := r.judge.Submit(ctx, page)
		return r.report(ctx, v, err)
	case OpListen:
		v, err := r.judge.Listen(ctx, page)
		return r.report(ctx, v, err)
	default:
		if !r.extractor.Extract(ctx, page) {
			// The fallback document has been written; not a process failure.
			return models.Success("question not saved, see " + r.extractor.Path())
		}
		return models.Success("question saved to " + r.extractor.Path())
	}
}

func (r *Runner) report(ctx context.Context, v *judge.Verdict, err error) models.Result {
	if err != nil {
		slog.Error("no verdict", "error", err)
		return models.Failure(err.Error())
	}

	res := r.judge.Classify(v)
	slog.Info("verdict",
		"submission_id", v.SubmissionID,
		"status", v.StatusMsg,
		"correct", fmt.Sprintf("%d/%d", v.TotalCorrect, v.TotalTestcases),
		"exit", res.Code,
	)
	r.notify(ctx, v)
	return res
}

// notify is best effort: a dead endpoint must not change the exit status.
func (r *Runner) notify(ctx context.Context, v *judge.Verdict) {
	if r.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := r.notifier.Judged(ctx, v.SubmissionID, v); err != nil {
		slog.Warn("verdict webhook failed", "url", r.notifier.URL(), "error", err)
		return
	}
	slog.Debug("verdict webhook delivered", "url", r.notifier.URL())
}
