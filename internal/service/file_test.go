package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filehub/internal/domain"
	"filehub/internal/repository"
	repoMocks "filehub/internal/repository/mocks"
	storeMocks "filehub/internal/storage/mocks"
)

func newUploadedFile(t *testing.T) *domain.File {
	t.Helper()
	f := newUploadingFile(t)
	etag, err := domain.NewETag("d41d8cd98f00b204e9800998ecf8427e")
	require.NoError(t, err)
	require.NoError(t, f.CompleteUpload(etag))
	f.PullEvents()
	return f
}

func newFileService(store *storeMocks.MockStorage, repo *repoMocks.MockFileRepository, pub EventPublisher) FileService {
	if pub == nil {
		pub = NopEventPublisher{}
	}
	return NewFileService(store, repo, NewOwnerOrPublicPolicy(), pub, 15*time.Minute)
}

func TestFileService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can read", func(t *testing.T) {
		f := newUploadedFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		svc := newFileService(nil, mRepo, nil)
		got, err := svc.Get(ctx, "user-1", f.ID)

		assert.NoError(t, err)
		assert.Equal(t, f.ID, got.ID)
	})

	t.Run("stranger cannot read private file", func(t *testing.T) {
		f := newUploadedFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		svc := newFileService(nil, mRepo, nil)
		_, err := svc.Get(ctx, "user-2", f.ID)

		var denied *AccessDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "get", denied.Op)
	})

	t.Run("stranger can read public file", func(t *testing.T) {
		f := newUploadedFile(t)
		f.MakePublic()
		f.PullEvents()
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		svc := newFileService(nil, mRepo, nil)
		_, err := svc.Get(ctx, "user-2", f.ID)

		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		svc := newFileService(nil, mRepo, nil)
		_, err := svc.Get(ctx, "user-1", "missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := newFileService(nil, new(repoMocks.MockFileRepository), nil)
		_, err := svc.Get(ctx, "user-1", "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestFileService_List(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	mRepo.On("List", ctx, repository.FileQuery{
		UserID: "user-1", Status: domain.StatusUploaded, Limit: 10, Offset: 0,
	}).Return(&repository.PageResult[domain.File]{
		Items: []domain.File{{ID: "a"}, {ID: "b"}},
		Total: 2,
	}, nil)

	svc := newFileService(nil, mRepo, nil)
	// Zero limit and negative offset fall back to defaults.
	res, err := svc.List(ctx, "user-1", domain.StatusUploaded, 0, -5)

	assert.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.Total)
	mRepo.AssertExpectations(t)
}

func TestFileService_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("moves object then record", func(t *testing.T) {
		f := newUploadedFile(t)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		pub := &capturingPublisher{}
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)
		mStore.On("MoveObject", ctx, "filehub", "acme/reports/report.pdf", "acme/archive/report.pdf").Return(nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(f *domain.File) bool {
			return f.Key.String() == "acme/archive/report.pdf"
		})).Return(nil)

		svc := newFileService(mStore, mRepo, pub)
		got, err := svc.Move(ctx, "user-1", f.ID, "acme/archive", "")

		assert.NoError(t, err)
		assert.Equal(t, "acme/archive", got.Path)
		assert.Contains(t, pub.names(), "file.moved")
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("same destination is a no-op", func(t *testing.T) {
		f := newUploadedFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		// nil storage proves no store call happens.
		svc := newFileService(nil, mRepo, nil)
		got, err := svc.Move(ctx, "user-1", f.ID, "acme/reports", "report.pdf")

		assert.NoError(t, err)
		assert.Equal(t, "acme/reports/report.pdf", got.Key.String())
	})

	t.Run("pending file cannot move", func(t *testing.T) {
		f := newPendingFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		svc := newFileService(nil, mRepo, nil)
		_, err := svc.Move(ctx, "user-1", f.ID, "elsewhere", "")

		var stateErr *domain.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, domain.StatusPending, stateErr.Current)
	})

	t.Run("store failure leaves record untouched", func(t *testing.T) {
		f := newUploadedFile(t)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)
		mStore.On("MoveObject", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("store fail"))

		svc := newFileService(mStore, mRepo, nil)
		_, err := svc.Move(ctx, "user-1", f.ID, "acme/archive", "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "move object: store fail")
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestFileService_Rename(t *testing.T) {
	ctx := context.Background()
	f := newUploadedFile(t)

	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockFileRepository)
	pub := &capturingPublisher{}
	mRepo.On("FindByID", ctx, f.ID).Return(f, nil)
	mStore.On("MoveObject", ctx, "filehub", "acme/reports/report.pdf", "acme/reports/final.pdf").Return(nil)
	mRepo.On("Update", ctx, mock.Anything).Return(nil)

	svc := newFileService(mStore, mRepo, pub)
	got, err := svc.Rename(ctx, "user-1", f.ID, "final.pdf")

	assert.NoError(t, err)
	assert.Equal(t, "final.pdf", got.Filename)
	assert.Equal(t, []string{"file.renamed"}, pub.names())
}

func TestFileService_SetVisibility(t *testing.T) {
	ctx := context.Background()

	t.Run("makes public and persists", func(t *testing.T) {
		f := newUploadedFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		pub := &capturingPublisher{}
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)
		mRepo.On("Update", ctx, mock.Anything).Return(nil)

		svc := newFileService(nil, mRepo, pub)
		got, err := svc.SetVisibility(ctx, "user-1", f.ID, true)

		assert.NoError(t, err)
		assert.True(t, got.IsPublic)
		assert.Equal(t, []string{"file.visibility_changed"}, pub.names())
	})

	t.Run("no-op skips persistence", func(t *testing.T) {
		f := newUploadedFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		svc := newFileService(nil, mRepo, nil)
		_, err := svc.SetVisibility(ctx, "user-1", f.ID, false)

		assert.NoError(t, err)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestFileService_Copy(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		src := newUploadedFile(t)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		pub := &capturingPublisher{}
		mRepo.On("FindByID", ctx, src.ID).Return(src, nil)
		mRepo.On("Create", ctx, mock.MatchedBy(func(f *domain.File) bool {
			return f.Status == domain.StatusCopying && f.SourceFileID == src.ID
		})).Return(nil)
		mStore.On("CopyObject", ctx, "filehub", "acme/reports/report.pdf", "acme/backup/report.pdf").
			Return("aabbccdd", nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(f *domain.File) bool {
			return f.Status == domain.StatusUploaded && f.ETag.String() == "aabbccdd"
		})).Return(nil)

		svc := newFileService(mStore, mRepo, pub)
		dst, err := svc.Copy(ctx, "user-1", src.ID, "acme/backup", "")

		assert.NoError(t, err)
		assert.Equal(t, domain.StatusUploaded, dst.Status)
		assert.NotEqual(t, src.ID, dst.ID)
		assert.Contains(t, pub.names(), "file.copy_initiated")
		assert.Contains(t, pub.names(), "file.copy_completed")
	})

	t.Run("store copy failure fails the new file", func(t *testing.T) {
		src := newUploadedFile(t)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, src.ID).Return(src, nil)
		mRepo.On("Create", ctx, mock.Anything).Return(nil)
		mStore.On("CopyObject", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("copy fail"))
		mRepo.On("Update", ctx, mock.MatchedBy(func(f *domain.File) bool {
			return f.Status == domain.StatusFailed
		})).Return(nil)

		svc := newFileService(mStore, mRepo, nil)
		_, err := svc.Copy(ctx, "user-1", src.ID, "acme/backup", "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "copy object: copy fail")
		mRepo.AssertExpectations(t)
	})

	t.Run("source must be uploaded", func(t *testing.T) {
		src := newPendingFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, src.ID).Return(src, nil)

		svc := newFileService(nil, mRepo, nil)
		_, err := svc.Copy(ctx, "user-1", src.ID, "acme/backup", "")

		var stateErr *domain.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("store first then tombstone", func(t *testing.T) {
		f := newUploadedFile(t)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		pub := &capturingPublisher{}
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)
		mStore.On("DeleteObject", ctx, "filehub", "acme/reports/report.pdf").Return(nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(f *domain.File) bool {
			return f.Status == domain.StatusDeleted
		})).Return(nil)

		svc := newFileService(mStore, mRepo, pub)
		err := svc.Delete(ctx, "user-1", f.ID)

		assert.NoError(t, err)
		assert.Contains(t, pub.names(), "file.deleted")
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("store failure keeps the record", func(t *testing.T) {
		f := newUploadedFile(t)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)
		mStore.On("DeleteObject", ctx, mock.Anything, mock.Anything).Return(errors.New("store fail"))

		svc := newFileService(mStore, mRepo, nil)
		err := svc.Delete(ctx, "user-1", f.ID)

		assert.Error(t, err)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("only the owner may delete", func(t *testing.T) {
		f := newUploadedFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		svc := newFileService(nil, mRepo, nil)
		err := svc.Delete(ctx, "user-2", f.ID)

		var denied *AccessDeniedError
		assert.ErrorAs(t, err, &denied)
	})
}

func TestFileService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns for readable file", func(t *testing.T) {
		f := newUploadedFile(t)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)
		mStore.On("PresignGet", ctx, "filehub", "acme/reports/report.pdf", 15*time.Minute).
			Return("https://signed-get", nil)

		svc := newFileService(mStore, mRepo, nil)
		url, err := svc.Download(ctx, "user-1", f.ID)

		assert.NoError(t, err)
		assert.Equal(t, "https://signed-get", url)
	})

	t.Run("file still uploading", func(t *testing.T) {
		f := newUploadingFile(t)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindByID", ctx, f.ID).Return(f, nil)

		svc := newFileService(nil, mRepo, nil)
		_, err := svc.Download(ctx, "user-1", f.ID)

		var stateErr *domain.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}
