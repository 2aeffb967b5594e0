package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filehub/internal/domain"
	"filehub/internal/service"
	"filehub/internal/storage"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) RequestUpload(ctx context.Context, p service.RequestUploadParams) (*service.UploadSession, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadSession), args.Error(1)
}

func (m *MockUploadService) PresignPart(ctx context.Context, fileID string, partNumber int, declaredSize int64) (storage.PresignedPartURL, error) {
	args := m.Called(ctx, fileID, partNumber, declaredSize)
	return args.Get(0).(storage.PresignedPartURL), args.Error(1)
}

func (m *MockUploadService) Status(ctx context.Context, fileID string) (storage.UploadStatus, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).(storage.UploadStatus), args.Error(1)
}

func (m *MockUploadService) Complete(ctx context.Context, fileID string, parts []storage.CompletedPart) (*domain.File, error) {
	args := m.Called(ctx, fileID, parts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockUploadService) Abort(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}
