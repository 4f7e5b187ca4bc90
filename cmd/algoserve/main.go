package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/judge"
	"github.com/use-agent/algoserve/question"
	"github.com/use-agent/algoserve/runner"
	"github.com/use-agent/algoserve/scraper"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// ── 1. Pick the operation ───────────────────────────────────────
	var op string
	if len(args) > 0 {
		op = args[0]
	}
	if !runner.ValidOp(op) {
		fmt.Fprintln(os.Stderr, runner.Usage)
		return 1
	}

	// ── 2. Load configuration and logging ───────────────────────────
	cfg := config.Load()
	initLogger(cfg.Log)

	// ── 3. Cancellation: Ctrl-C ends a pending wait ─────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 4. Attach to the user's browser ─────────────────────────────
	sc, err := scraper.Connect(ctx, cfg.Browser, cfg.Site)
	if err != nil {
		slog.Error("failed to attach to browser", "debugURL", cfg.Browser.DebugURL, "error", err)
		return 1
	}
	defer sc.Close()

	find := func(ctx context.Context) (runner.Page, error) {
		p, err := sc.ProblemPage(ctx)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	// ── 5. Dispatch ─────────────────────────────────────────────────
	r := runner.New(
		find,
		judge.New(cfg.Site, cfg.Judge),
		question.NewExtractor(cfg.Question),
		cfg.Webhook,
	)
	res := r.Run(ctx, op)
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	return res.Code
}

// initLogger configures slog based on the LogConfig. Logs go to stderr so
// stdout carries only the result line.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
