// Package domain contains the file aggregate and its value objects.
// It has no persistence or transport dependencies; state changes are
// recorded as events and dispatched by the service layer after a save.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// File is the aggregate root for one stored object.
//
// Invariants:
//   - Key is always the join of Path and Filename; it is recomputed on every
//     move/rename and never set directly.
//   - UploadID is non-zero iff Status is UPLOADING.
//   - ETag is non-zero only after a successful completion.
//   - Size is fixed at creation; a re-upload replaces the file.
type File struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	OriginalName string     `json:"original_name"`
	Path         string     `json:"path"`
	Key          ObjectKey  `json:"object_key"`
	MimeType     string     `json:"mime_type"`
	Size         FileSize   `json:"size"`
	Bucket       string     `json:"bucket"`
	UserID       string     `json:"user_id,omitempty"` // empty for system-owned files
	IsPublic     bool       `json:"is_public"`
	Status       FileStatus `json:"status"`
	UploadID     UploadID   `json:"upload_id,omitempty"`
	ETag         ETag       `json:"etag,omitempty"`
	TargetApps   []string   `json:"target_apps,omitempty"`
	SourceFileID string     `json:"source_file_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	events []Event
}

// NewFileParams carries the caller-supplied attributes for a new file.
// Size is the declared byte count, validated against quota before any bytes
// move.
type NewFileParams struct {
	Filename   string
	Path       string
	MimeType   string
	Size       int64
	Bucket     string
	UserID     string
	IsPublic   bool
	TargetApps []string
}

// NewFileForUpload creates a File in PENDING with the object key derived from
// path and filename.
func NewFileForUpload(p NewFileParams) (*File, error) {
	if p.Size <= 0 {
		return nil, fmt.Errorf("%w: declared size must be positive, got %d", ErrInvalidFileSize, p.Size)
	}
	size, err := NewFileSize(p.Size)
	if err != nil {
		return nil, err
	}
	key, err := JoinObjectKey(p.Path, p.Filename)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	f := &File{
		ID:           uuid.NewString(),
		Filename:     p.Filename,
		OriginalName: p.Filename,
		Path:         p.Path,
		Key:          key,
		MimeType:     p.MimeType,
		Size:         size,
		Bucket:       p.Bucket,
		UserID:       p.UserID,
		IsPublic:     p.IsPublic,
		Status:       StatusPending,
		TargetApps:   p.TargetApps,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.record(FileUploadRequested{
		FileID:    f.ID,
		ObjectKey: key.String(),
		Size:      size.Bytes(),
		UserID:    p.UserID,
		At:        now,
	})
	return f, nil
}

// NewFileForCopy creates a File directly in COPYING, referencing the file the
// bytes are copied from. PENDING and UPLOADING are bypassed: the bytes never
// pass through a client-driven session.
func NewFileForCopy(p NewFileParams, sourceFileID string) (*File, error) {
	if sourceFileID == "" {
		return nil, fmt.Errorf("%w: source file id required for copy", ErrInvalidStatus)
	}
	f, err := NewFileForUpload(p)
	if err != nil {
		return nil, err
	}
	f.events = nil
	f.Status = StatusCopying
	f.SourceFileID = sourceFileID
	f.record(FileCopyInitiated{
		FileID:       f.ID,
		SourceFileID: sourceFileID,
		ObjectKey:    f.Key.String(),
		At:           f.CreatedAt,
	})
	return f, nil
}

// InitiateUpload binds a store-issued multipart session and moves the file to
// UPLOADING. Any stale etag from a previous cycle is cleared.
func (f *File) InitiateUpload(uploadID UploadID) error {
	if f.Status != StatusPending {
		return &InvalidStateError{Op: "initiate upload", Current: f.Status, Required: StatusPending}
	}
	if uploadID.IsZero() {
		return fmt.Errorf("%w: empty", ErrInvalidUploadID)
	}
	f.transition(StatusUploading)
	f.UploadID = uploadID
	f.ETag = ETag{}
	f.record(FileUploadInitiated{FileID: f.ID, UploadID: uploadID.String(), At: f.UpdatedAt})
	f.record(FileUploadStarted{FileID: f.ID, Size: f.Size.Bytes(), At: f.UpdatedAt})
	return nil
}

// CompleteUpload moves the file to UPLOADED, clearing the session and binding
// the final etag when the store reported one.
func (f *File) CompleteUpload(etag ETag) error {
	if f.Status != StatusUploading {
		return &InvalidStateError{Op: "complete upload", Current: f.Status, Required: StatusUploading}
	}
	f.transition(StatusUploaded)
	f.UploadID = UploadID{}
	f.ETag = etag
	f.record(FileUploadCompleted{
		FileID:    f.ID,
		ObjectKey: f.Key.String(),
		ETag:      etag.String(),
		At:        f.UpdatedAt,
	})
	return nil
}

// CompleteCopy moves a COPYING file to UPLOADED once the server-side copy is
// confirmed.
func (f *File) CompleteCopy(etag ETag) error {
	if f.Status != StatusCopying {
		return &InvalidStateError{Op: "complete copy", Current: f.Status, Required: StatusCopying}
	}
	f.transition(StatusUploaded)
	f.ETag = etag
	f.record(FileCopyCompleted{
		FileID:       f.ID,
		SourceFileID: f.SourceFileID,
		ETag:         etag.String(),
		At:           f.UpdatedAt,
	})
	return nil
}

// FailUpload marks the file FAILED from any non-terminal pre-UPLOADED state.
func (f *File) FailUpload(reason string) error {
	if !f.Status.CanTransitionTo(StatusFailed) {
		return &TransitionError{From: f.Status, To: StatusFailed}
	}
	f.transition(StatusFailed)
	f.UploadID = UploadID{}
	f.record(FileUploadFailed{FileID: f.ID, Reason: reason, At: f.UpdatedAt})
	return nil
}

// CancelUpload marks the file CANCELED.
func (f *File) CancelUpload() error {
	if !f.Status.CanTransitionTo(StatusCanceled) {
		return &TransitionError{From: f.Status, To: StatusCanceled}
	}
	f.transition(StatusCanceled)
	f.UploadID = UploadID{}
	f.record(FileUploadCanceled{FileID: f.ID, At: f.UpdatedAt})
	return nil
}

// ResetToPending cycles an UPLOADING file back to PENDING, clearing the
// session and etag so a fresh session can be initiated.
func (f *File) ResetToPending() error {
	if f.Status != StatusUploading {
		return &InvalidStateError{Op: "reset upload", Current: f.Status, Required: StatusUploading}
	}
	f.transition(StatusPending)
	f.UploadID = UploadID{}
	f.ETag = ETag{}
	f.record(FileUploadReset{FileID: f.ID, At: f.UpdatedAt})
	return nil
}

// MarkDeleted marks an UPLOADED file DELETED.
func (f *File) MarkDeleted() error {
	if !f.CanBeDeleted() {
		return &InvalidStateError{Op: "delete", Current: f.Status, Required: StatusUploaded}
	}
	f.transition(StatusDeleted)
	f.record(FileDeleted{FileID: f.ID, ObjectKey: f.Key.String(), At: f.UpdatedAt})
	return nil
}

// Move relocates the file to a new path and, optionally, a new filename
// (empty keeps the current one). The object key is recomputed. A move that
// turns out to only change the name also records a rename event: callers do
// not always know in advance which of the two occurred.
func (f *File) Move(newPath, newFilename string) error {
	if !f.CanBeMoved() {
		return &InvalidStateError{Op: "move", Current: f.Status, Required: StatusUploaded}
	}
	filename := newFilename
	if filename == "" {
		filename = f.Filename
	}
	newKey, err := JoinObjectKey(newPath, filename)
	if err != nil {
		return err
	}
	if newKey == f.Key {
		return nil
	}

	oldKey := f.Key
	oldFilename := f.Filename
	pathChanged := newPath != f.Path

	f.Path = newPath
	f.Filename = filename
	f.Key = newKey
	f.UpdatedAt = time.Now().UTC()

	f.record(FileMoved{
		FileID:      f.ID,
		OldKey:      oldKey.String(),
		NewKey:      newKey.String(),
		PathChanged: pathChanged,
		At:          f.UpdatedAt,
	})
	if filename != oldFilename {
		f.record(FileRenamed{
			FileID:      f.ID,
			OldFilename: oldFilename,
			NewFilename: filename,
			At:          f.UpdatedAt,
		})
	}
	return nil
}

// Rename changes only the filename component of the key.
func (f *File) Rename(newFilename string) error {
	if !f.CanBeRenamed() {
		return &InvalidStateError{Op: "rename", Current: f.Status, Required: StatusUploaded}
	}
	newKey, err := f.Key.WithFilename(newFilename)
	if err != nil {
		return err
	}
	if newKey == f.Key {
		return nil
	}

	oldFilename := f.Filename
	f.Filename = newFilename
	f.Key = newKey
	f.UpdatedAt = time.Now().UTC()
	f.record(FileRenamed{
		FileID:      f.ID,
		OldFilename: oldFilename,
		NewFilename: newFilename,
		At:          f.UpdatedAt,
	})
	return nil
}

// MakePublic flips the application-level visibility flag. The flag never
// touches store ACLs: the bucket enforces owner-controlled ACLs and read
// access is decided at the application layer.
func (f *File) MakePublic() {
	f.setVisibility(true)
}

// MakePrivate is the inverse of MakePublic and equally idempotent.
func (f *File) MakePrivate() {
	f.setVisibility(false)
}

func (f *File) setVisibility(public bool) {
	if f.IsPublic == public {
		return
	}
	f.IsPublic = public
	f.UpdatedAt = time.Now().UTC()
	f.record(FileVisibilityChanged{FileID: f.ID, IsPublic: public, At: f.UpdatedAt})
}

// CanBeDeleted reports whether the file may be removed from store and DB.
func (f *File) CanBeDeleted() bool { return f.Status == StatusUploaded }

// CanBeMoved reports whether the file may be relocated.
func (f *File) CanBeMoved() bool { return f.Status == StatusUploaded }

// CanBeRenamed reports whether the filename may change.
func (f *File) CanBeRenamed() bool { return f.Status == StatusUploaded }

// PullEvents drains and returns the events recorded since the last drain, in
// order. The service layer publishes them after persistence succeeds.
func (f *File) PullEvents() []Event {
	evts := f.events
	f.events = nil
	return evts
}

func (f *File) record(e Event) {
	f.events = append(f.events, e)
}

// transition applies a status change and records the generic paired event.
// Callers have already checked legality.
func (f *File) transition(next FileStatus) {
	prev := f.Status
	f.Status = next
	f.UpdatedAt = time.Now().UTC()
	f.record(FileStatusChanged{FileID: f.ID, From: prev, To: next, At: f.UpdatedAt})
}
