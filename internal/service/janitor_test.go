package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"filehub/internal/domain"
	repoMocks "filehub/internal/repository/mocks"
	"filehub/internal/storage"
	storeMocks "filehub/internal/storage/mocks"
)

func TestUploadJanitor_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("fails over expired uploads", func(t *testing.T) {
		stale := *newUploadingFile(t)

		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		pub := &capturingPublisher{}
		mRepo.On("FindExpiredUploads", ctx, 24*time.Hour).Return([]domain.File{stale}, nil)
		mStore.On("AbortMultipartUpload", ctx, "filehub", "acme/reports/report.pdf", "upload-123").Return(nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(f *domain.File) bool {
			return f.Status == domain.StatusFailed
		})).Return(nil)

		j := NewUploadJanitor(mStore, mRepo, pub, time.Minute, 24*time.Hour)
		swept, err := j.Sweep(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Contains(t, pub.names(), "file.upload_failed")
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("session already gone still fails the file", func(t *testing.T) {
		stale := *newUploadingFile(t)

		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindExpiredUploads", ctx, mock.Anything).Return([]domain.File{stale}, nil)
		mStore.On("AbortMultipartUpload", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ErrUploadNotFound)
		mRepo.On("Update", ctx, mock.Anything).Return(nil)

		j := NewUploadJanitor(mStore, mRepo, NopEventPublisher{}, time.Minute, 24*time.Hour)
		swept, err := j.Sweep(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, swept)
	})

	t.Run("abort failure skips the file but continues", func(t *testing.T) {
		bad := *newUploadingFile(t)
		good := *newUploadingFile(t)

		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindExpiredUploads", ctx, mock.Anything).Return([]domain.File{bad, good}, nil)
		mStore.On("AbortMultipartUpload", ctx, bad.Bucket, bad.Key.String(), bad.UploadID.String()).
			Return(errors.New("store down")).Once()
		mStore.On("AbortMultipartUpload", ctx, good.Bucket, good.Key.String(), good.UploadID.String()).
			Return(nil).Once()
		mRepo.On("Update", ctx, mock.Anything).Return(nil).Once()

		j := NewUploadJanitor(mStore, mRepo, NopEventPublisher{}, time.Minute, 24*time.Hour)
		swept, err := j.Sweep(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, swept)
		mRepo.AssertExpectations(t)
	})

	t.Run("query failure aborts the sweep", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		mRepo.On("FindExpiredUploads", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		j := NewUploadJanitor(nil, mRepo, NopEventPublisher{}, time.Minute, 24*time.Hour)
		swept, err := j.Sweep(ctx)

		assert.Error(t, err)
		assert.Zero(t, swept)
	})
}

func TestUploadJanitor_StartStop(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	mRepo.On("FindExpiredUploads", mock.Anything, mock.Anything).Return([]domain.File{}, nil).Maybe()

	j := NewUploadJanitor(nil, mRepo, NopEventPublisher{}, 10*time.Millisecond, time.Hour)
	j.Start()
	time.Sleep(35 * time.Millisecond)
	j.Stop()
}
