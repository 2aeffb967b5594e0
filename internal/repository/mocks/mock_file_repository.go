package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"filehub/internal/domain"
	"filehub/internal/repository"
)

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Create(ctx context.Context, f *domain.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id string) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileRepository) List(ctx context.Context, q repository.FileQuery) (*repository.PageResult[domain.File], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.File]), args.Error(1)
}

func (m *MockFileRepository) Update(ctx context.Context, f *domain.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFileRepository) UpdateStatus(ctx context.Context, id string, status domain.FileStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockFileRepository) UpdateUploadID(ctx context.Context, id, uploadID string) error {
	args := m.Called(ctx, id, uploadID)
	return args.Error(0)
}

func (m *MockFileRepository) UpdateETag(ctx context.Context, id, etag string) error {
	args := m.Called(ctx, id, etag)
	return args.Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) FindExpiredUploads(ctx context.Context, olderThan time.Duration) ([]domain.File, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.File), args.Error(1)
}

func (m *MockFileRepository) GetUserUsedBytes(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFileRepository) GetUserActiveUploadsCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
