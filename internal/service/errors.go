package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("file not found")
)

// QuotaError is returned when a requested upload would exceed one of the
// per-user limits. The limits are checked before any file row or store
// session exists, so there is nothing to roll back.
type QuotaError struct {
	Kind      string // "file_size", "user_bytes" or "active_uploads"
	Limit     int64
	Used      int64
	Requested int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded (%s): used %d + requested %d > limit %d",
		e.Kind, e.Used, e.Requested, e.Limit)
}

// AccessDeniedError carries the policy's reason for refusing an operation.
type AccessDeniedError struct {
	Op     string
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied for %s: %s", e.Op, e.Reason)
}
