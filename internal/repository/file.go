package repository

import (
	"context"
	"time"

	"filehub/internal/domain"
)

// FileRepository defines data access for file aggregates using SQL queries
// only. No business logic here, strictly persistence operations.
type FileRepository interface {
	// Create inserts a new file record.
	Create(ctx context.Context, f *domain.File) error

	// FindByID returns a file by its ID.
	FindByID(ctx context.Context, id string) (*domain.File, error)

	// List returns a paginated list of files and a total count for the filter.
	List(ctx context.Context, q FileQuery) (*PageResult[domain.File], error)

	// Update persists the aggregate's mutable fields.
	Update(ctx context.Context, f *domain.File) error

	// UpdateStatus sets only the status column.
	UpdateStatus(ctx context.Context, id string, status domain.FileStatus) error

	// UpdateUploadID sets or clears (empty string) the upload id column.
	UpdateUploadID(ctx context.Context, id, uploadID string) error

	// UpdateETag sets the etag column.
	UpdateETag(ctx context.Context, id, etag string) error

	// Delete removes a file row by ID. Missing rows are not an error.
	Delete(ctx context.Context, id string) error

	// FindExpiredUploads returns UPLOADING files untouched since the cutoff,
	// for the stale-session sweep.
	FindExpiredUploads(ctx context.Context, olderThan time.Duration) ([]domain.File, error)

	// GetUserUsedBytes sums the sizes of a user's non-terminal files.
	GetUserUsedBytes(ctx context.Context, userID string) (int64, error)

	// GetUserActiveUploadsCount counts a user's in-flight multipart sessions.
	GetUserActiveUploadsCount(ctx context.Context, userID string) (int, error)
}

// FileQuery holds list filters and limit/offset pagination parameters.
type FileQuery struct {
	UserID string
	Status domain.FileStatus
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
