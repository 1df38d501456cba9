package apperr

import (
	"time"
)

// Error codes of the consumer-facing envelope. The HTTP layer that owns the
// envelope lives outside this repo; the mapping is defined here because it
// is the contract this layer's errors must land in.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "DUPLICATE_SLUG"
	CodeInternal     = "INTERNAL_ERROR"
)

// Code maps an error to its envelope code.
func Code(err error) string {
	switch k, _ := kindOf(err); k {
	case KindValidation:
		return CodeValidation
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}

// HTTPStatus maps an error to the status a consumer should respond with.
func HTTPStatus(err error) int {
	switch k, _ := kindOf(err); k {
	case KindValidation:
		return 400
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	default:
		return 500
	}
}

type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Success   bool          `json:"success"`
	Error     EnvelopeError `json:"error"`
	Timestamp time.Time     `json:"timestamp"`
}

// Envelope renders an error in the standard response shape.
func Envelope(err error) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error: EnvelopeError{
			Code:    Code(err),
			Message: err.Error(),
		},
		Timestamp: time.Now().UTC(),
	}
}
