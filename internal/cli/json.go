package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound     = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid      = "CONFIG_INVALID"
	ErrCodeChannelUnavailable = "CHANNEL_UNAVAILABLE"
	ErrCodeBackendUnreachable = "BACKEND_UNREACHABLE"
	ErrCodeBackendStatus      = "BACKEND_STATUS"
	ErrCodeRunRejected        = "RUN_REJECTED"
	ErrCodeRunTimeout         = "RUN_TIMEOUT"
	ErrCodeProtocol           = "PROTOCOL_ERROR"
	ErrCodeUnknown            = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	env := JSONEnvelope{
		Success: true,
		Data:    data,
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	jsonErr := ErrorToJSON(err)
	env := JSONEnvelope{
		Success: false,
		Error:   jsonErr,
	}
	return writeJSONEnvelope(w, env)
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	// Non-2xx backend answers carry the HTTP status as details.
	var statusErr *sdk.StatusError
	if stderrors.As(err, &statusErr) {
		jsonErr := &JSONError{
			Code:    ErrCodeBackendStatus,
			Message: errors.Summary(err),
			Details: map[string]interface{}{
				"status": statusErr.StatusCode,
				"path":   statusErr.Path,
			},
		}
		var sErr *errors.Error
		if stderrors.As(err, &sErr) {
			jsonErr.Suggestion = sErr.Suggestion
		}
		return jsonErr
	}

	var sErr *errors.Error
	if stderrors.As(err, &sErr) {
		return &JSONError{
			Code:       mapErrorCode(sErr.Code, sErr.Message),
			Message:    sErr.Short(),
			Suggestion: sErr.Suggestion,
		}
	}

	// Generic error
	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	msgLower := strings.ToLower(message)

	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrChannel:
		return ErrCodeChannelUnavailable
	case errors.ErrPull:
		return ErrCodeBackendUnreachable
	case errors.ErrRun:
		if strings.Contains(msgLower, "timed out") {
			return ErrCodeRunTimeout
		}
		return ErrCodeRunRejected
	case errors.ErrProtocol:
		return ErrCodeProtocol
	}

	return ErrCodeUnknown
}
