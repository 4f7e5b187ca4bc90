package models

// Exit codes reported to the shell.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Result is what an operation hands back to the dispatcher. The dispatcher
// is the only place that turns it into a process exit.
type Result struct {
	Code    int
	Message string
}

// OK reports whether the result maps to a zero exit status.
func (r Result) OK() bool { return r.Code == ExitOK }

// Success builds a zero-status result.
func Success(msg string) Result { return Result{Code: ExitOK, Message: msg} }

// Failure builds a non-zero result.
func Failure(msg string) Result { return Result{Code: ExitFailure, Message: msg} }
