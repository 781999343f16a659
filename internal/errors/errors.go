package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig   = "CONFIG"
	ErrChannel  = "CHANNEL"
	ErrPull     = "PULL"
	ErrRun      = "RUN"
	ErrProtocol = "PROTOCOL"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrPull code.
// Most wrapped errors in this client come from talking to the backend.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrPull,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewChannelUnavailable creates the error returned when something is sent while
// the push channel is not open.
func NewChannelUnavailable(state string) *Error {
	return &Error{
		Code:       ErrChannel,
		Message:    fmt.Sprintf("Push channel is not connected (%s)", state),
		Suggestion: "Wait for the connection to come back, then try again",
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Short returns the single-line form used in status bars and log panels.
func (e *Error) Short() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// Summary returns a one-line description of any error, using Short for
// structured errors.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Short()
	}
	return err.Error()
}

// ExitError carries a process exit code. When Err is nil the outcome was
// reported already and only the exit status remains to be set; otherwise Err
// is reported as usual and the process exits with Code.
type ExitError struct {
	Code int
	Err  error
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// WithExitCode attaches an exit code to err.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the reported error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
