package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPermissionDeny  = errors.New("permission denied")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
)

// AccessDeniedError carries the reason recorded for a denied decision.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	if e.Reason == "" {
		return ErrPermissionDeny.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPermissionDeny, e.Reason)
}

func (e *AccessDeniedError) Unwrap() error { return ErrPermissionDeny }

// Decision is the outcome of a single authorization check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Err converts a denied decision into an *AccessDeniedError, nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &AccessDeniedError{Reason: d.Reason}
}
