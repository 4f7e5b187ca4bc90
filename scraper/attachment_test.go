package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/models"
)

func TestAttachment_FailedAttachIsRetried(t *testing.T) {
	calls := 0
	a := &Attachment{connect: func() (*Scraper, error) {
		calls++
		return nil, models.NewOpError(models.ErrCodeBrowserConnect, "refused", errors.New("dial tcp: connection refused"))
	}}

	for i := 0; i < 2; i++ {
		if _, err := a.ProblemPage(context.Background()); !models.HasCode(err, models.ErrCodeBrowserConnect) {
			t.Fatalf("call %d: err = %v, want %s", i, err, models.ErrCodeBrowserConnect)
		}
	}
	if calls != 2 {
		t.Errorf("connect called %d times, want 2", calls)
	}
	a.Close()
}

func TestAttachment_UnreachableBrowser(t *testing.T) {
	a := NewAttachment(context.Background(), config.BrowserConfig{
		DebugURL:       "http://127.0.0.1:1",
		ConnectTimeout: 2 * time.Second,
	}, config.SiteConfig{ProblemURLPrefix: "https://leetcode.com/problems"})
	defer a.Close()

	if _, err := a.ProblemPage(context.Background()); !models.HasCode(err, models.ErrCodeBrowserConnect) {
		t.Fatalf("err = %v, want %s", err, models.ErrCodeBrowserConnect)
	}
}
