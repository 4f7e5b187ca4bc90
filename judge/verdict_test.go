package judge

import (
	"errors"
	"testing"

	"github.com/use-agent/algoserve/correlator"
)

func TestParseSubmissionID(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"number", `{"submission_id": 1431552203}`, "1431552203", false},
		{"string", `{"submission_id": "1431552203"}`, "1431552203", false},
		{"missing", `{"error": "rate limited"}`, "", true},
		{"null", `{"submission_id": null}`, "", true},
		{"empty string", `{"submission_id": ""}`, "", true},
		{"not json", `<html></html>`, "", true},
		{"wrong type", `{"submission_id": {"id": 1}}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubmissionID([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVerdict_Pending(t *testing.T) {
	for _, body := range []string{`{"state":"PENDING"}`, `{"state":"STARTED","task_name":"judger.judgetask.Judge"}`} {
		v, err := ParseVerdict([]byte(body))
		if !errors.Is(err, correlator.ErrPending) {
			t.Errorf("%s: err = %v, want ErrPending", body, err)
		}
		if v != nil {
			t.Errorf("%s: pending state must not yield a verdict", body)
		}
	}
}

func TestParseVerdict_Judged(t *testing.T) {
	body := `{
		"status_code": 11,
		"run_success": true,
		"finished": true,
		"total_correct": 40,
		"total_testcases": 63,
		"status_msg": "Wrong Answer",
		"state": "SUCCESS"
	}`
	v, err := ParseVerdict([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	want := Verdict{
		State:          StateSuccess,
		StatusCode:     11,
		StatusMsg:      "Wrong Answer",
		RunSuccess:     true,
		Finished:       true,
		TotalCorrect:   40,
		TotalTestcases: 63,
	}
	if *v != want {
		t.Errorf("got %+v, want %+v", *v, want)
	}
}

func TestParseVerdict_Invalid(t *testing.T) {
	for _, body := range []string{`{}`, `{"status_msg":"Accepted"}`, `[`, ``} {
		if _, err := ParseVerdict([]byte(body)); err == nil || errors.Is(err, correlator.ErrPending) {
			t.Errorf("%q: expected a hard error, got %v", body, err)
		}
	}
}
