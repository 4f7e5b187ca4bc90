package models

import (
	"errors"
	"fmt"
)

// Error codes used in logs, MCP tool results and internal error handling.
const (
	ErrCodePageNotFound          = "PAGE_NOT_FOUND"
	ErrCodeResponseParse         = "RESPONSE_PARSE"
	ErrCodeFileWrite             = "FILE_WRITE"
	ErrCodeSubmitControlNotFound = "SUBMIT_CONTROL_NOT_FOUND"
	ErrCodeBrowserConnect        = "BROWSER_CONNECT"
	ErrCodeTimeout               = "TIMEOUT"
	ErrCodeStreamClosed          = "STREAM_CLOSED"
	ErrCodeInvalidInput          = "INVALID_INPUT"
)

// OpError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type OpError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError.
func NewOpError(code, message string, err error) *OpError {
	return &OpError{Code: code, Message: message, Err: err}
}

// HasCode reports whether any OpError in err's chain carries code.
func HasCode(err error, code string) bool {
	var opErr *OpError
	for err != nil {
		if !errors.As(err, &opErr) {
			return false
		}
		if opErr.Code == code {
			return true
		}
		err = opErr.Err
	}
	return false
}
