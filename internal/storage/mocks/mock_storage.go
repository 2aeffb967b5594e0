package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"filehub/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) EnsureBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockStorage) InitiateMultipartUpload(ctx context.Context, p storage.InitiateUploadParams) (storage.InitiateUploadResult, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(storage.InitiateUploadResult), args.Error(1)
}

func (m *MockStorage) PresignUploadPart(ctx context.Context, p storage.PresignPartParams) (storage.PresignedPartURL, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(storage.PresignedPartURL), args.Error(1)
}

func (m *MockStorage) CompleteMultipartUpload(ctx context.Context, p storage.CompleteUploadParams) (storage.CompleteUploadResult, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(storage.CompleteUploadResult), args.Error(1)
}

func (m *MockStorage) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	args := m.Called(ctx, bucket, key, uploadID)
	return args.Error(0)
}

func (m *MockStorage) ListUploadParts(ctx context.Context, bucket, key, uploadID string) ([]storage.PartInfo, error) {
	args := m.Called(ctx, bucket, key, uploadID)
	if parts, ok := args.Get(0).([]storage.PartInfo); ok {
		return parts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) GetUploadStatus(ctx context.Context, bucket, key, uploadID string, maxBytes int64) (storage.UploadStatus, error) {
	args := m.Called(ctx, bucket, key, uploadID, maxBytes)
	return args.Get(0).(storage.UploadStatus), args.Error(1)
}

func (m *MockStorage) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetObjectMetadata(ctx context.Context, bucket, key string) (storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) (string, error) {
	args := m.Called(ctx, bucket, srcKey, dstKey)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) MoveObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	args := m.Called(ctx, bucket, srcKey, dstKey)
	return args.Error(0)
}

func (m *MockStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockStorage) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	args := m.Called(ctx, bucket, keys)
	return args.Error(0)
}

func (m *MockStorage) CreateFolder(ctx context.Context, bucket, prefix string) error {
	args := m.Called(ctx, bucket, prefix)
	return args.Error(0)
}

func (m *MockStorage) FolderExists(ctx context.Context, bucket, prefix string) (bool, error) {
	args := m.Called(ctx, bucket, prefix)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) DeleteFolder(ctx context.Context, bucket, prefix string) (int, error) {
	args := m.Called(ctx, bucket, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) ListByPrefix(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, prefix)
	if infos, ok := args.Get(0).([]storage.ObjectInfo); ok {
		return infos, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiry)
	return args.String(0), args.Error(1)
}
