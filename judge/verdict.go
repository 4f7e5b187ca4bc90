package judge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/use-agent/algoserve/correlator"
	"github.com/ysmood/gson"
)

// Judging states reported by the check endpoint. Only the pending pair is
// known to be non-terminal; anything else ends the wait.
const (
	StatePending = "PENDING"
	StateStarted = "STARTED"
	StateSuccess = "SUCCESS"
)

// Verdict is the judged outcome of a submission.
type Verdict struct {
	SubmissionID   string `json:"submission_id,omitempty"`
	State          string `json:"state"`
	StatusCode     int    `json:"status_code"`
	StatusMsg      string `json:"status_msg"`
	RunSuccess     bool   `json:"run_success"`
	Finished       bool   `json:"finished"`
	TotalCorrect   int    `json:"total_correct"`
	TotalTestcases int    `json:"total_testcases"`
}

// IsPendingState reports whether state is an intermediate judging state.
func IsPendingState(state string) bool {
	return state == StatePending || state == StateStarted
}

// ParseSubmissionID reads the submission id from a "submission created"
// body. The site sends it as a number; strings are accepted as well.
func ParseSubmissionID(body []byte) (string, error) {
	if !json.Valid(body) {
		return "", errors.New("submission body is not JSON")
	}
	v, ok := gson.New(body).Gets("submission_id")
	if !ok || v.Nil() {
		return "", errors.New("submission body has no submission_id")
	}

	var id string
	switch val := v.Val().(type) {
	case string:
		id = val
	case float64:
		id = strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		id = val.String()
	default:
		return "", fmt.Errorf("submission_id has unexpected type %T", val)
	}
	if id == "" {
		return "", errors.New("submission_id is empty")
	}
	return id, nil
}

// ParseVerdict decodes a check body. Pending states yield
// correlator.ErrPending so the waiter keeps listening.
func ParseVerdict(body []byte) (*Verdict, error) {
	var v Verdict
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	if v.State == "" {
		return nil, errors.New("verdict has no state")
	}
	if IsPendingState(v.State) {
		return nil, correlator.ErrPending
	}
	return &v, nil
}
