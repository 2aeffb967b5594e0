package storage

import (
	"context"
	"time"
)

// Package storage contains the object-storage abstraction and the multipart
// upload orchestration against an S3-compatible backend. Implementations keep
// no session state in process memory: part lists and byte totals are re-read
// from the store at every decision point, so multiple replicas can drive the
// same session.

// Store-imposed protocol limits.
const (
	// MinPartSize is the smallest allowed non-final part (5 MiB).
	MinPartSize = 5 * 1024 * 1024
	// MaxPartNumber is the store's ceiling on part numbers.
	MaxPartNumber = 10000
	// MaxPresignExpirySeconds is the longest allowed presigned-URL lifetime (7 days).
	MaxPresignExpirySeconds = 7 * 24 * 60 * 60
	// DeleteBatchSize is the store's limit on keys per batch delete request.
	DeleteBatchSize = 1000
)

// InitiateUploadParams opens a multipart session.
// MaxBytes is recorded as session metadata for traceability; enforcement is
// entirely the orchestrator's job.
type InitiateUploadParams struct {
	Bucket      string
	Key         string
	ContentType string
	MaxBytes    int64
	IsPublic    bool
}

// InitiateUploadResult carries the store-issued session token.
type InitiateUploadResult struct {
	UploadID string `json:"upload_id"`
}

// PresignPartParams requests a time-limited URL for uploading one part.
// DeclaredSizeBytes is signed into the URL as a fixed Content-Length, so the
// client's actual PUT cannot exceed what was declared here.
type PresignPartParams struct {
	Bucket            string
	Key               string
	UploadID          string
	PartNumber        int
	ExpirySeconds     int
	DeclaredSizeBytes int64
	MaxBytes          int64
}

// PresignedPartURL is the signed URL for one part upload.
type PresignedPartURL struct {
	URL        string    `json:"url"`
	PartNumber int       `json:"part_number"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CompletedPart identifies one uploaded part in a completion request.
type CompletedPart struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
}

// CompleteUploadParams stitches the uploaded parts into the final object.
type CompleteUploadParams struct {
	Bucket   string
	Key      string
	UploadID string
	Parts    []CompletedPart
	MaxBytes int64
}

// CompleteUploadResult carries the final object etag and the verified total
// size as re-derived from the store's own part listing.
type CompleteUploadResult struct {
	ETag string `json:"etag"`
	Size int64  `json:"size"`
}

// PartInfo describes one already-uploaded part.
type PartInfo struct {
	PartNumber   int       `json:"part_number"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}

// UploadStatus supports resumable uploads: a client that lost its session
// state can pick up from NextPartNumber instead of guessing.
type UploadStatus struct {
	Parts          []PartInfo `json:"parts"`
	UploadedBytes  int64      `json:"uploaded_bytes"`
	RemainingBytes int64      `json:"remaining_bytes"`
	NextPartNumber int        `json:"next_part_number"`
	CanComplete    bool       `json:"can_complete"`
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag"`
	ContentType  string            `json:"content_type"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Storage is the S3-compatible object storage client interface, covering the
// multipart upload protocol and plain object operations. All methods validate
// bucket and key syntax identically before touching the network, so no code
// path has weaker checks than another.
type Storage interface {
	// EnsureBucket creates the bucket if absent. Losing the creation race to
	// another caller is not an error.
	EnsureBucket(ctx context.Context, bucket string) error

	// InitiateMultipartUpload opens a session and returns its upload id.
	InitiateMultipartUpload(ctx context.Context, p InitiateUploadParams) (InitiateUploadResult, error)

	// PresignUploadPart re-derives the session's uploaded bytes from the store
	// and refuses to sign a part that would push the session past MaxBytes;
	// on refusal the whole session is aborted.
	PresignUploadPart(ctx context.Context, p PresignPartParams) (PresignedPartURL, error)

	// CompleteMultipartUpload re-derives the true total from the store's part
	// listing and rejects (aborting the session) when it exceeds MaxBytes.
	// This is the authoritative capacity gate.
	CompleteMultipartUpload(ctx context.Context, p CompleteUploadParams) (CompleteUploadResult, error)

	// AbortMultipartUpload discards the session and all its parts.
	AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error

	// ListUploadParts returns every uploaded part, paginating transparently.
	ListUploadParts(ctx context.Context, bucket, key, uploadID string) ([]PartInfo, error)

	// GetUploadStatus reports uploaded bytes and the next free part number.
	GetUploadStatus(ctx context.Context, bucket, key, uploadID string, maxBytes int64) (UploadStatus, error)

	// ObjectExists reports whether the key holds an object.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// GetObjectMetadata returns the object's stat without reading its body.
	GetObjectMetadata(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// CopyObject performs a server-side copy and returns the new object's etag.
	CopyObject(ctx context.Context, bucket, srcKey, dstKey string) (string, error)

	// MoveObject relocates an object. The store has no native move; this is
	// copy followed by delete of the source.
	MoveObject(ctx context.Context, bucket, srcKey, dstKey string) error

	// DeleteObject removes a single object.
	DeleteObject(ctx context.Context, bucket, key string) error

	// DeleteObjects removes many objects, batched at the store's limit.
	DeleteObjects(ctx context.Context, bucket string, keys []string) error

	// CreateFolder, FolderExists and DeleteFolder emulate folders with
	// zero-byte marker objects under the prefix.
	CreateFolder(ctx context.Context, bucket, prefix string) error
	FolderExists(ctx context.Context, bucket, prefix string) (bool, error)
	DeleteFolder(ctx context.Context, bucket, prefix string) (int, error)

	// ListByPrefix returns all objects under the prefix.
	ListByPrefix(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// PresignGet returns a time-limited URL for downloading the object.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
