package profile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks user input that failed validation. Callers re-prompt.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMmrUnavailable is returned when an mmr window is requested but the
	// requester has no mmr on record.
	ErrMmrUnavailable = errors.New("requester mmr unavailable")
	// ErrUnauthorized is returned for privileged operations by other users.
	ErrUnauthorized = errors.New("unauthorized")
)

// StoreError wraps a persistence failure with the failed operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("profile store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Code is picked up by handler summary logging.
func (e *StoreError) Code() string { return "STORE_" + strings.ToUpper(e.Op) }

// IsStoreError reports whether err wraps a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
