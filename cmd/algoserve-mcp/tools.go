package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/algoserve/judge"
	"github.com/use-agent/algoserve/question"
	"github.com/use-agent/algoserve/runner"
)

// verdictResult is the tool payload for submit_solution and await_verdict.
type verdictResult struct {
	Verdict  *judge.Verdict `json:"verdict"`
	Accepted bool           `json:"accepted"`
}

func handleExtract(extractor *question.Extractor, find runner.FindPage) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, err := find(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rec := extractor.Build(ctx, page)
		doc := question.Render(rec)

		if request.GetBool("save", true) && !extractor.Persist(rec) {
			doc += "\n<!-- could not write " + extractor.Path() + " -->\n"
		}
		return mcp.NewToolResultText(doc), nil
	}
}

func handleVerdict(j *judge.Judge, find runner.FindPage, click bool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if secs := request.GetInt("timeout_seconds", 0); secs > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
			defer cancel()
		}

		page, err := find(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var v *judge.Verdict
		if click {
			v, err = j.Submit(ctx, page)
		} else {
			v, err = j.Listen(ctx, page)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := json.MarshalIndent(verdictResult{Verdict: v, Accepted: j.Classify(v).OK()}, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode verdict: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
