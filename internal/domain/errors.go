package domain

import (
	"errors"
	"fmt"
)

// Validation sentinels for the value objects. Callers match with errors.Is;
// the wrapped message carries the concrete reason.
var (
	ErrInvalidObjectKey = errors.New("invalid object key")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrInvalidUploadID  = errors.New("invalid upload id")
	ErrInvalidETag      = errors.New("invalid etag")
	ErrInvalidFileSize  = errors.New("invalid file size")
	ErrInvalidStatus    = errors.New("invalid file status")
)

// InvalidStateError is returned when a File operation is invoked while the
// aggregate is not in the state the operation requires.
type InvalidStateError struct {
	Op       string
	Current  FileStatus
	Required FileStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: file status is %s, requires %s", e.Op, e.Current, e.Required)
}

// TransitionError is returned when a status change is not allowed by the
// FileStatus transition table.
type TransitionError struct {
	From FileStatus
	To   FileStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}
