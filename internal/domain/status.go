package domain

import "fmt"

// FileStatus is the lifecycle state of a File.
type FileStatus string

const (
	// StatusPending means the upload was requested but no store session exists yet.
	StatusPending FileStatus = "PENDING"
	// StatusUploading means an in-flight multipart session is bound to the file.
	StatusUploading FileStatus = "UPLOADING"
	// StatusUploaded means the object is fully committed to the store.
	StatusUploaded FileStatus = "UPLOADED"
	// StatusCopying means the file originates from a server-side copy still in progress.
	StatusCopying FileStatus = "COPYING"
	// StatusFailed is a terminal error state.
	StatusFailed FileStatus = "FAILED"
	// StatusCanceled is a terminal state for aborted uploads.
	StatusCanceled FileStatus = "CANCELED"
	// StatusDeleted is a terminal state for removed files.
	StatusDeleted FileStatus = "DELETED"
)

// UPLOADING may cycle back to PENDING (a reset clears uploadId and etag);
// everything else is one-directional. COPYING is entered only at creation.
var statusTransitions = map[FileStatus][]FileStatus{
	StatusPending:   {StatusUploading, StatusFailed, StatusCanceled},
	StatusUploading: {StatusUploaded, StatusPending, StatusFailed, StatusCanceled},
	StatusUploaded:  {StatusDeleted},
	StatusCopying:   {StatusUploaded, StatusFailed, StatusCanceled},
	StatusFailed:    {},
	StatusCanceled:  {},
	StatusDeleted:   {},
}

// ParseFileStatus maps a stored string onto a known status.
func ParseFileStatus(raw string) (FileStatus, error) {
	s := FileStatus(raw)
	if _, ok := statusTransitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// CanTransitionTo reports whether the transition table allows s -> next.
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from s.
func (s FileStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

func (s FileStatus) String() string { return string(s) }
