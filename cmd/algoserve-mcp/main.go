package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/judge"
	"github.com/use-agent/algoserve/question"
	"github.com/use-agent/algoserve/runner"
	"github.com/use-agent/algoserve/scraper"
)

func main() {
	cfg := config.Load()

	// stdout belongs to the MCP transport.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	// One browser connection serves every tool call.
	browser := scraper.NewAttachment(context.Background(), cfg.Browser, cfg.Site)
	defer browser.Close()

	find := func(ctx context.Context) (runner.Page, error) {
		p, err := browser.ProblemPage(ctx)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	s := server.NewMCPServer(
		"algoserve",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_question",
		mcp.WithDescription("Read the LeetCode problem open in the attached Chrome and return it as Markdown (title, difficulty, URL, description)."),
		mcp.WithBoolean("save",
			mcp.Description("Also write the document to the configured question file (default: true)"),
		),
	)
	s.AddTool(extractTool, handleExtract(question.NewExtractor(cfg.Question), find))

	j := judge.New(cfg.Site, cfg.Judge)

	submitTool := mcp.NewTool("submit_solution",
		mcp.WithDescription("Press Submit on the open LeetCode problem and wait for the judge's verdict."),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Give up after this many seconds (default: no limit beyond ALGOSERVE_WAIT_TIMEOUT)"),
		),
	)
	s.AddTool(submitTool, handleVerdict(j, find, true))

	awaitTool := mcp.NewTool("await_verdict",
		mcp.WithDescription("Wait for the next submission made in the browser and return its verdict. Does not click anything."),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Give up after this many seconds (default: no limit)"),
		),
	)
	s.AddTool(awaitTool, handleVerdict(j, find, false))

	if err := server.ServeStdio(s); err != nil {
		browser.Close()
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
