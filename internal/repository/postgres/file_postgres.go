package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"filehub/internal/domain"
	"filehub/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business
// logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, filename, original_name, path, object_key, mime_type, size, bucket,
	user_id, is_public, status, upload_id, etag, target_apps, source_file_id, created_at, updated_at`

// Create inserts a new file row.
func (r *FilePostgres) Create(ctx context.Context, f *domain.File) error {
	const q = `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	targetApps, err := json.Marshal(f.TargetApps)
	if err != nil {
		return fmt.Errorf("marshal target apps: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		f.ID,
		f.Filename,
		f.OriginalName,
		f.Path,
		f.Key.String(),
		f.MimeType,
		f.Size.Bytes(),
		f.Bucket,
		nullString(f.UserID),
		f.IsPublic,
		f.Status.String(),
		nullString(f.UploadID.String()),
		nullString(f.ETag.String()),
		targetApps,
		nullString(f.SourceFileID),
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*domain.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// List returns files using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) List(ctx context.Context, fq repository.FileQuery) (*repository.PageResult[domain.File], error) {
	// The two optional filters collapse to always-true predicates when empty.
	const qCount = `
		SELECT COUNT(*) FROM files
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR status = $2)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, fq.UserID, string(fq.Status)).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, fq.UserID, string(fq.Status), fq.Limit, fq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[domain.File]{Items: items, Total: total}, nil
}

// Update persists the aggregate's mutable fields.
func (r *FilePostgres) Update(ctx context.Context, f *domain.File) error {
	const q = `
		UPDATE files
		SET filename = $2, path = $3, object_key = $4, is_public = $5, status = $6,
		    upload_id = $7, etag = $8, updated_at = $9
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q,
		f.ID,
		f.Filename,
		f.Path,
		f.Key.String(),
		f.IsPublic,
		f.Status.String(),
		nullString(f.UploadID.String()),
		nullString(f.ETag.String()),
		f.UpdatedAt,
	)
	return err
}

// UpdateStatus sets only the status column.
func (r *FilePostgres) UpdateStatus(ctx context.Context, id string, status domain.FileStatus) error {
	const q = `UPDATE files SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, status.String())
	return err
}

// UpdateUploadID sets or clears the upload id column.
func (r *FilePostgres) UpdateUploadID(ctx context.Context, id, uploadID string) error {
	const q = `UPDATE files SET upload_id = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, nullString(uploadID))
	return err
}

// UpdateETag sets the etag column.
func (r *FilePostgres) UpdateETag(ctx context.Context, id, etag string) error {
	const q = `UPDATE files SET etag = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, nullString(etag))
	return err
}

// Delete removes a file row by ID. It does not return an error if the row
// does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// FindExpiredUploads returns UPLOADING files untouched since the cutoff.
func (r *FilePostgres) FindExpiredUploads(ctx context.Context, olderThan time.Duration) ([]domain.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE status = 'UPLOADING' AND updated_at < $1
		ORDER BY updated_at ASC
	`
	cutoff := time.Now().UTC().Add(-olderThan)
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// GetUserUsedBytes sums the sizes of a user's non-terminal files. Declared
// sizes of in-flight uploads count against the quota, not just committed
// bytes, so parallel sessions cannot overshoot it together.
func (r *FilePostgres) GetUserUsedBytes(ctx context.Context, userID string) (int64, error) {
	const q = `
		SELECT COALESCE(SUM(size), 0)
		FROM files
		WHERE user_id = $1 AND status NOT IN ('FAILED', 'CANCELED', 'DELETED')
	`
	var used int64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&used)
	return used, err
}

// GetUserActiveUploadsCount counts a user's in-flight multipart sessions.
func (r *FilePostgres) GetUserActiveUploadsCount(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM files WHERE user_id = $1 AND status = 'UPLOADING'`
	var count int
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanFile rebuilds the aggregate from a row, re-validating the value
// objects so a corrupted row surfaces as an error instead of a bad File.
func scanFile(row rowScanner) (*domain.File, error) {
	var (
		f            domain.File
		objectKey    string
		sizeBytes    int64
		statusRaw    string
		userID       sql.NullString
		uploadID     sql.NullString
		etag         sql.NullString
		targetApps   []byte
		sourceFileID sql.NullString
	)
	if err := row.Scan(
		&f.ID,
		&f.Filename,
		&f.OriginalName,
		&f.Path,
		&objectKey,
		&f.MimeType,
		&sizeBytes,
		&f.Bucket,
		&userID,
		&f.IsPublic,
		&statusRaw,
		&uploadID,
		&etag,
		&targetApps,
		&sourceFileID,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}

	key, err := domain.NewObjectKey(objectKey)
	if err != nil {
		return nil, fmt.Errorf("stored object key: %w", err)
	}
	f.Key = key

	size, err := domain.NewFileSize(sizeBytes)
	if err != nil {
		return nil, fmt.Errorf("stored size: %w", err)
	}
	f.Size = size

	status, err := domain.ParseFileStatus(statusRaw)
	if err != nil {
		return nil, fmt.Errorf("stored status: %w", err)
	}
	f.Status = status

	f.UserID = userID.String
	f.SourceFileID = sourceFileID.String

	if uploadID.Valid && uploadID.String != "" {
		id, err := domain.NewUploadID(uploadID.String)
		if err != nil {
			return nil, fmt.Errorf("stored upload id: %w", err)
		}
		f.UploadID = id
	}
	if etag.Valid && etag.String != "" {
		tag, err := domain.NewETag(etag.String)
		if err != nil {
			return nil, fmt.Errorf("stored etag: %w", err)
		}
		f.ETag = tag
	}
	if len(targetApps) > 0 {
		if err := json.Unmarshal(targetApps, &f.TargetApps); err != nil {
			return nil, fmt.Errorf("unmarshal target apps: %w", err)
		}
	}
	return &f, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
