package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Browser.DebugURL != "http://localhost:9222" {
		t.Errorf("DebugURL = %q", cfg.Browser.DebugURL)
	}
	if cfg.Site.ProblemURLPrefix != "https://leetcode.com/problems" {
		t.Errorf("ProblemURLPrefix = %q", cfg.Site.ProblemURLPrefix)
	}
	if cfg.Judge.WaitTimeout != 0 {
		t.Errorf("WaitTimeout should default to no deadline, got %v", cfg.Judge.WaitTimeout)
	}
	want := []string{"Wrong Answer", "Runtime Error", "Compile Error"}
	if !reflect.DeepEqual(cfg.Judge.RejectedStatuses, want) {
		t.Errorf("RejectedStatuses = %v, want %v", cfg.Judge.RejectedStatuses, want)
	}
	if cfg.Question.OutputPath != "tempq.md" {
		t.Errorf("OutputPath = %q", cfg.Question.OutputPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ALGOSERVE_DEBUG_URL", "http://127.0.0.1:9333")
	t.Setenv("ALGOSERVE_WAIT_TIMEOUT", "90s")
	t.Setenv("ALGOSERVE_REJECTED_STATUSES", "Wrong Answer , Time Limit Exceeded,,")
	t.Setenv("ALGOSERVE_LISTEN_RPS", "not-a-number")

	cfg := Load()

	if cfg.Browser.DebugURL != "http://127.0.0.1:9333" {
		t.Errorf("DebugURL = %q", cfg.Browser.DebugURL)
	}
	if cfg.Judge.WaitTimeout != 90*time.Second {
		t.Errorf("WaitTimeout = %v", cfg.Judge.WaitTimeout)
	}
	want := []string{"Wrong Answer", "Time Limit Exceeded"}
	if !reflect.DeepEqual(cfg.Judge.RejectedStatuses, want) {
		t.Errorf("RejectedStatuses = %v, want %v", cfg.Judge.RejectedStatuses, want)
	}
	if cfg.Judge.ListenRetryRPS != 2 {
		t.Errorf("invalid float should fall back, got %v", cfg.Judge.ListenRetryRPS)
	}
}
