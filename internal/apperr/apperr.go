// Package apperr defines the error taxonomy shared by every repository:
// validation, not-found, conflict, and a wrapped catch-all for storage
// failures. Errors carry the operation that raised them and the original
// cause; nothing at this layer retries or swallows.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Validationf(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(op, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an unexpected database failure with the operation name,
// preserving the original error as the cause. An error that already carries
// a kind passes through so classification survives nesting.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// Annotate wraps err with the operation name while preserving its kind,
// for errors raised below the layer that knows which operation failed.
func Annotate(op string, err error) error {
	if err == nil {
		return nil
	}
	k, _ := kindOf(err)
	return &Error{Kind: k, Op: op, Err: err}
}

func kindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return KindStorage, false
}

func IsValidation(err error) bool { k, ok := kindOf(err); return ok && k == KindValidation }
func IsNotFound(err error) bool   { k, ok := kindOf(err); return ok && k == KindNotFound }
func IsConflict(err error) bool   { k, ok := kindOf(err); return ok && k == KindConflict }
