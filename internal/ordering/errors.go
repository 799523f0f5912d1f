package ordering

import (
	"errors"
	"strings"
)

// Kind classifies an Error for callers.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindDatabase   Kind = "database"
	KindInternal   Kind = "internal"
)

// Error is returned by every Service operation. Validation errors carry the
// full list of violations in Messages.
type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Err != nil {
		if msg == "" {
			return string(e.Kind) + ": " + e.Err.Error()
		}
		return string(e.Kind) + ": " + msg + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError reports caller-correctable problems.
func ValidationError(msgs ...string) *Error {
	return &Error{Kind: KindValidation, Messages: msgs}
}

// NotFoundError reports a missing order.
func NotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{msg}}
}

// DatabaseError wraps a storage fault.
func DatabaseError(err error) *Error {
	return &Error{Kind: KindDatabase, Err: err}
}

// InternalError reports a broken invariant.
func InternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Messages: []string{msg}, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a validation Error.
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found Error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }
