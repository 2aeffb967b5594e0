package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filehub/internal/domain"
	"filehub/internal/repository"
)

var fileColumnNames = []string{
	"id", "filename", "original_name", "path", "object_key", "mime_type", "size", "bucket",
	"user_id", "is_public", "status", "upload_id", "etag", "target_apps", "source_file_id",
	"created_at", "updated_at",
}

func newTestFile(t *testing.T) *domain.File {
	t.Helper()
	f, err := domain.NewFileForUpload(domain.NewFileParams{
		Filename: "report.pdf",
		Path:     "acme/reports",
		MimeType: "application/pdf",
		Size:     2048,
		Bucket:   "filehub",
		UserID:   "user-1",
	})
	require.NoError(t, err)
	f.PullEvents()
	return f
}

func fileRow(f *domain.File) *sqlmock.Rows {
	return sqlmock.NewRows(fileColumnNames).AddRow(
		f.ID, f.Filename, f.OriginalName, f.Path, f.Key.String(), f.MimeType,
		f.Size.Bytes(), f.Bucket, f.UserID, f.IsPublic, f.Status.String(),
		nil, nil, []byte(`["app-a"]`), nil, f.CreatedAt, f.UpdatedAt,
	)
}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()
	f := newTestFile(t)

	mock.ExpectExec("INSERT INTO files").
		WithArgs(
			f.ID, f.Filename, f.OriginalName, f.Path, f.Key.String(), f.MimeType,
			f.Size.Bytes(), f.Bucket, sqlmock.AnyArg(), f.IsPublic, "PENDING",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			f.CreatedAt, f.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, f)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		f := newTestFile(t)

		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs(f.ID).
			WillReturnRows(fileRow(f))

		got, err := repo.FindByID(ctx, f.ID)

		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, f.ID, got.ID)
		assert.Equal(t, "acme/reports/report.pdf", got.Key.String())
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, []string{"app-a"}, got.TargetApps)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})

	t.Run("corrupted status", func(t *testing.T) {
		f := newTestFile(t)
		rows := sqlmock.NewRows(fileColumnNames).AddRow(
			f.ID, f.Filename, f.OriginalName, f.Path, f.Key.String(), f.MimeType,
			f.Size.Bytes(), f.Bucket, f.UserID, f.IsPublic, "NOT_A_STATUS",
			nil, nil, nil, nil, f.CreatedAt, f.UpdatedAt,
		)

		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs(f.ID).
			WillReturnRows(rows)

		got, err := repo.FindByID(ctx, f.ID)

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestFilePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("filtered by user", func(t *testing.T) {
		f := newTestFile(t)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files").
			WithArgs("user-1", "").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM files (.+) ORDER BY").
			WithArgs("user-1", "", 10, 0).
			WillReturnRows(fileRow(f))

		res, err := repo.List(ctx, repository.FileQuery{UserID: "user-1", Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("empty page", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files").
			WithArgs("", "UPLOADED").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery("SELECT (.+) FROM files (.+) ORDER BY").
			WithArgs("", "UPLOADED", 10, 0).
			WillReturnRows(sqlmock.NewRows(fileColumnNames))

		res, err := repo.List(ctx, repository.FileQuery{Status: domain.StatusUploaded, Limit: 10})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})
}

func TestFilePostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)

	mock.ExpectExec("UPDATE files SET status = ").
		WithArgs("file-1", "FAILED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateStatus(context.Background(), "file-1", domain.StatusFailed)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)

	mock.ExpectExec("DELETE FROM files WHERE id = ?").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(context.Background(), "file-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindExpiredUploads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)

	f := newTestFile(t)
	uploadID, err := domain.NewUploadID("upload-abc123")
	require.NoError(t, err)
	require.NoError(t, f.InitiateUpload(uploadID))
	f.PullEvents()

	rows := sqlmock.NewRows(fileColumnNames).AddRow(
		f.ID, f.Filename, f.OriginalName, f.Path, f.Key.String(), f.MimeType,
		f.Size.Bytes(), f.Bucket, f.UserID, f.IsPublic, "UPLOADING",
		"upload-abc123", nil, nil, nil, f.CreatedAt, f.UpdatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM files WHERE status = 'UPLOADING'").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	found, err := repo.FindExpiredUploads(context.Background(), time.Hour)

	assert.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, domain.StatusUploading, found[0].Status)
	assert.Equal(t, "upload-abc123", found[0].UploadID.String())
}

func TestFilePostgres_UserQuotaQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(size\\), 0\\)").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4096))

	used, err := repo.GetUserUsedBytes(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(4096), used)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files WHERE user_id = ").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	active, err := repo.GetUserActiveUploadsCount(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, active)

	assert.NoError(t, mock.ExpectationsWereMet())
}
