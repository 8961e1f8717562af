package service

import (
	"errors"
	"fmt"
)

// ErrSubmitInFlight is returned when a submission arrives while another one
// from the same session is still running.
var ErrSubmitInFlight = errors.New("a recipe request is already in progress")

// ValidationError reports input the user can correct by re-entering it.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BackendError reports a failed generation call: transport failure, non-2xx
// status or an unusable response body.
type BackendError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failure while pulling text out of an upload.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %q: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
