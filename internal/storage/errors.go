package storage

import (
	"errors"
	"fmt"
)

// ErrUploadNotFound marks a session the store no longer knows, typically
// because it was aborted or already completed.
var ErrUploadNotFound = errors.New("multipart upload not found")

// CapacityError is returned when declared or actual uploaded bytes exceed the
// session's byte ceiling. The multipart session has been aborted by the time
// the caller sees this error (best-effort; an abort failure is logged, never
// allowed to mask the capacity violation).
type CapacityError struct {
	UploadedBytes int64
	DeclaredBytes int64
	MaxBytes      int64
}

func (e *CapacityError) Error() string {
	if e.DeclaredBytes > 0 {
		return fmt.Sprintf("upload capacity exceeded: %d uploaded + %d declared > %d max bytes",
			e.UploadedBytes, e.DeclaredBytes, e.MaxBytes)
	}
	return fmt.Sprintf("upload capacity exceeded: %d uploaded > %d max bytes", e.UploadedBytes, e.MaxBytes)
}

// ValidationError is raised synchronously, before any network call, for
// malformed buckets, keys, part numbers, expirations or part lists.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
