package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filehub/internal/domain"
	"filehub/internal/service"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Get(ctx context.Context, actorID, id string) (*domain.File, error) {
	args := m.Called(ctx, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, actorID string, status domain.FileStatus, limit, offset int) (*service.FileListResult, error) {
	args := m.Called(ctx, actorID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Move(ctx context.Context, actorID, id, newPath, newFilename string) (*domain.File, error) {
	args := m.Called(ctx, actorID, id, newPath, newFilename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileService) Rename(ctx context.Context, actorID, id, newFilename string) (*domain.File, error) {
	args := m.Called(ctx, actorID, id, newFilename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileService) SetVisibility(ctx context.Context, actorID, id string, public bool) (*domain.File, error) {
	args := m.Called(ctx, actorID, id, public)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileService) Copy(ctx context.Context, actorID, id, destPath, destFilename string) (*domain.File, error) {
	args := m.Called(ctx, actorID, id, destPath, destFilename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, actorID, id string) error {
	args := m.Called(ctx, actorID, id)
	return args.Error(0)
}

func (m *MockFileService) Download(ctx context.Context, actorID, id string) (string, error) {
	args := m.Called(ctx, actorID, id)
	return args.String(0), args.Error(1)
}
