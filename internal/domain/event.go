package domain

import "time"

// Event is a domain event recorded by the File aggregate. Events accumulate
// on the aggregate and are drained by the application layer after the
// corresponding state has been persisted, so a failed save never publishes.
type Event interface {
	// EventName is a stable machine-readable identifier, e.g. "file.moved".
	EventName() string
	// OccurredAt is when the aggregate recorded the event.
	OccurredAt() time.Time
}

// FileStatusChanged accompanies every status transition in addition to the
// semantic event, so consumers can react generically.
type FileStatusChanged struct {
	FileID string     `json:"file_id"`
	From   FileStatus `json:"from"`
	To     FileStatus `json:"to"`
	At     time.Time  `json:"at"`
}

func (e FileStatusChanged) EventName() string     { return "file.status_changed" }
func (e FileStatusChanged) OccurredAt() time.Time { return e.At }

// FileUploadRequested is recorded when a File is created in PENDING.
type FileUploadRequested struct {
	FileID    string    `json:"file_id"`
	ObjectKey string    `json:"object_key"`
	Size      int64     `json:"size"`
	UserID    string    `json:"user_id,omitempty"`
	At        time.Time `json:"at"`
}

func (e FileUploadRequested) EventName() string     { return "file.upload_requested" }
func (e FileUploadRequested) OccurredAt() time.Time { return e.At }

// FileCopyInitiated is recorded when a File is created directly in COPYING.
type FileCopyInitiated struct {
	FileID       string    `json:"file_id"`
	SourceFileID string    `json:"source_file_id"`
	ObjectKey    string    `json:"object_key"`
	At           time.Time `json:"at"`
}

func (e FileCopyInitiated) EventName() string     { return "file.copy_initiated" }
func (e FileCopyInitiated) OccurredAt() time.Time { return e.At }

// FileUploadInitiated is recorded when a multipart session is bound to the file.
type FileUploadInitiated struct {
	FileID   string    `json:"file_id"`
	UploadID string    `json:"upload_id"`
	At       time.Time `json:"at"`
}

func (e FileUploadInitiated) EventName() string     { return "file.upload_initiated" }
func (e FileUploadInitiated) OccurredAt() time.Time { return e.At }

// FileUploadStarted is recorded alongside FileUploadInitiated; consumers that
// track transfer progress listen for this one.
type FileUploadStarted struct {
	FileID string    `json:"file_id"`
	Size   int64     `json:"size"`
	At     time.Time `json:"at"`
}

func (e FileUploadStarted) EventName() string     { return "file.upload_started" }
func (e FileUploadStarted) OccurredAt() time.Time { return e.At }

// FileUploadCompleted is recorded when the multipart session completes.
type FileUploadCompleted struct {
	FileID    string    `json:"file_id"`
	ObjectKey string    `json:"object_key"`
	ETag      string    `json:"etag,omitempty"`
	At        time.Time `json:"at"`
}

func (e FileUploadCompleted) EventName() string     { return "file.upload_completed" }
func (e FileUploadCompleted) OccurredAt() time.Time { return e.At }

// FileCopyCompleted is recorded when a server-side copy finishes.
type FileCopyCompleted struct {
	FileID       string    `json:"file_id"`
	SourceFileID string    `json:"source_file_id"`
	ETag         string    `json:"etag,omitempty"`
	At           time.Time `json:"at"`
}

func (e FileCopyCompleted) EventName() string     { return "file.copy_completed" }
func (e FileCopyCompleted) OccurredAt() time.Time { return e.At }

// FileUploadFailed is recorded when an upload or copy is marked failed.
type FileUploadFailed struct {
	FileID string    `json:"file_id"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

func (e FileUploadFailed) EventName() string     { return "file.upload_failed" }
func (e FileUploadFailed) OccurredAt() time.Time { return e.At }

// FileUploadCanceled is recorded when an upload is aborted by the client.
type FileUploadCanceled struct {
	FileID string    `json:"file_id"`
	At     time.Time `json:"at"`
}

func (e FileUploadCanceled) EventName() string     { return "file.upload_canceled" }
func (e FileUploadCanceled) OccurredAt() time.Time { return e.At }

// FileUploadReset is recorded when an UPLOADING file cycles back to PENDING.
type FileUploadReset struct {
	FileID string    `json:"file_id"`
	At     time.Time `json:"at"`
}

func (e FileUploadReset) EventName() string     { return "file.upload_reset" }
func (e FileUploadReset) OccurredAt() time.Time { return e.At }

// FileMoved is recorded when the object key changes.
type FileMoved struct {
	FileID      string    `json:"file_id"`
	OldKey      string    `json:"old_key"`
	NewKey      string    `json:"new_key"`
	PathChanged bool      `json:"path_changed"`
	At          time.Time `json:"at"`
}

func (e FileMoved) EventName() string     { return "file.moved" }
func (e FileMoved) OccurredAt() time.Time { return e.At }

// FileRenamed is recorded when the filename component changes, whether via
// Rename or via a Move that happened to only change the name.
type FileRenamed struct {
	FileID      string    `json:"file_id"`
	OldFilename string    `json:"old_filename"`
	NewFilename string    `json:"new_filename"`
	At          time.Time `json:"at"`
}

func (e FileRenamed) EventName() string     { return "file.renamed" }
func (e FileRenamed) OccurredAt() time.Time { return e.At }

// FileVisibilityChanged is recorded when the application-level public flag flips.
type FileVisibilityChanged struct {
	FileID   string    `json:"file_id"`
	IsPublic bool      `json:"is_public"`
	At       time.Time `json:"at"`
}

func (e FileVisibilityChanged) EventName() string     { return "file.visibility_changed" }
func (e FileVisibilityChanged) OccurredAt() time.Time { return e.At }

// FileDeleted is recorded when a file is marked deleted.
type FileDeleted struct {
	FileID    string    `json:"file_id"`
	ObjectKey string    `json:"object_key"`
	At        time.Time `json:"at"`
}

func (e FileDeleted) EventName() string     { return "file.deleted" }
func (e FileDeleted) OccurredAt() time.Time { return e.At }
