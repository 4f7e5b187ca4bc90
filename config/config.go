package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Browser  BrowserConfig
	Site     SiteConfig
	Judge    JudgeConfig
	Question QuestionConfig
	Webhook  WebhookConfig
	Log      LogConfig
}

// BrowserConfig controls how we attach to the user's Chrome.
type BrowserConfig struct {
	// DebugURL is the remote debugging endpoint of a running Chrome.
	DebugURL string // default: "http://localhost:9222"

	// ConnectTimeout bounds endpoint resolution and the websocket handshake.
	ConnectTimeout time.Duration // default: 10s
}

// SiteConfig describes the target site. These values are fragile by nature.
type SiteConfig struct {
	// ProblemURLPrefix identifies a problem page by substring match.
	ProblemURLPrefix string // default: "https://leetcode.com/problems"

	// SubmitURLPattern identifies the "submission created" response.
	SubmitURLPattern string // default: "submit"

	// SubmitButtonText is matched against the trimmed text of <button>s.
	SubmitButtonText string // default: "Submit"
}

// JudgeConfig controls the response waiters and verdict classification.
type JudgeConfig struct {
	// WaitTimeout bounds each response wait. Zero disables the deadline.
	WaitTimeout time.Duration // default: 0

	// ListenRetryRPS paces listen rounds after a swallowed error.
	ListenRetryRPS float64 // default: 2

	// ListenRetryBurst is the limiter burst for listen rounds.
	ListenRetryBurst int // default: 1

	// RejectedStatuses are status messages that map to exit code 1.
	// default: ["Wrong Answer", "Runtime Error", "Compile Error"]
	RejectedStatuses []string
}

// QuestionConfig controls problem extraction.
type QuestionConfig struct {
	// OutputPath is overwritten on every extraction.
	OutputPath string // default: "tempq.md"

	// MinDescriptionLen triggers a warning when the description is shorter.
	MinDescriptionLen int // default: 50
}

// WebhookConfig controls the optional verdict notification.
type WebhookConfig struct {
	URL    string
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			DebugURL:       envOr("ALGOSERVE_DEBUG_URL", "http://localhost:9222"),
			ConnectTimeout: envDurationOr("ALGOSERVE_CONNECT_TIMEOUT", 10*time.Second),
		},
		Site: SiteConfig{
			ProblemURLPrefix: envOr("ALGOSERVE_PROBLEM_URL", "https://leetcode.com/problems"),
			SubmitURLPattern: envOr("ALGOSERVE_SUBMIT_PATTERN", "submit"),
			SubmitButtonText: envOr("ALGOSERVE_SUBMIT_TEXT", "Submit"),
		},
		Judge: JudgeConfig{
			WaitTimeout:      envDurationOr("ALGOSERVE_WAIT_TIMEOUT", 0),
			ListenRetryRPS:   envFloatOr("ALGOSERVE_LISTEN_RPS", 2),
			ListenRetryBurst: envIntOr("ALGOSERVE_LISTEN_BURST", 1),
			RejectedStatuses: envSliceOr("ALGOSERVE_REJECTED_STATUSES", []string{
				"Wrong Answer", "Runtime Error", "Compile Error",
			}),
		},
		Question: QuestionConfig{
			OutputPath:        envOr("ALGOSERVE_QUESTION_FILE", "tempq.md"),
			MinDescriptionLen: envIntOr("ALGOSERVE_MIN_DESCRIPTION", 50),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("ALGOSERVE_WEBHOOK_URL"),
			Secret: os.Getenv("ALGOSERVE_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("ALGOSERVE_LOG_LEVEL", "info"),
			Format: envOr("ALGOSERVE_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envSliceOr splits on commas. Status messages contain spaces, so only the
// surrounding whitespace of each part is trimmed.
func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
