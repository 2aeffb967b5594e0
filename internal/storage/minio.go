package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"filehub/internal/config"
)

// storeAPI is the slice of the MinIO client the adapter depends on. It exists
// so the orchestration and capacity logic can be exercised against a fake
// store in tests; *minio.Core satisfies it directly.
type storeAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	NewMultipartUpload(ctx context.Context, bucket, object string, opts minio.PutObjectOptions) (string, error)
	ListObjectParts(ctx context.Context, bucket, object, uploadID string, partNumberMarker, maxParts int) (minio.ListObjectPartsResult, error)
	CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string, parts []minio.CompletePart, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error
	PresignHeader(ctx context.Context, method, bucket, object string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	RemoveObjects(ctx context.Context, bucket string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// coreStore adapts *minio.Core to storeAPI. Core shadows CopyObject,
// ListObjects, and PutObject with low-level signatures, so these forward to
// the high-level versions on the embedded Client that the interface expects.
type coreStore struct {
	*minio.Core
}

func (c coreStore) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	return c.Client.CopyObject(ctx, dst, src)
}

func (c coreStore) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return c.Client.ListObjects(ctx, bucket, opts)
}

func (c coreStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return c.Client.PutObject(ctx, bucket, object, reader, size, opts)
}

// minioStorage implements Storage against an S3-compatible backend (MinIO,
// AWS S3, etc.). It is safe for concurrent use by multiple goroutines and
// keeps no per-session state: the store is the single source of truth for
// which bytes exist.
type minioStorage struct {
	store storeAPI
}

// NewMinIO creates the storage adapter and ensures the default bucket exists.
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	core, err := minio.NewCore(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{store: coreStore{core}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.EnsureBucket(ctx, cfg.Bucket); err != nil {
		return nil, err
	}
	return ms, nil
}

// EnsureBucket creates the bucket if absent. Two callers racing to create the
// same bucket is normal; the store's already-owned responses are treated as
// success.
func (m *minioStorage) EnsureBucket(ctx context.Context, bucket string) error {
	if err := ValidateBucketName(bucket); err != nil {
		return err
	}
	exists, err := m.store.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.store.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	return nil
}

func (m *minioStorage) InitiateMultipartUpload(ctx context.Context, p InitiateUploadParams) (InitiateUploadResult, error) {
	if err := validateBucketAndKey(p.Bucket, p.Key); err != nil {
		return InitiateUploadResult{}, err
	}
	if p.MaxBytes <= 0 {
		return InitiateUploadResult{}, &ValidationError{Field: "max bytes", Reason: "must be positive"}
	}
	if err := m.EnsureBucket(ctx, p.Bucket); err != nil {
		return InitiateUploadResult{}, err
	}

	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// max-bytes lands in the session metadata for traceability only; the
	// store does not enforce it.
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"max-bytes": strconv.FormatInt(p.MaxBytes, 10),
			"public":    strconv.FormatBool(p.IsPublic),
		},
	}
	uploadID, err := m.store.NewMultipartUpload(ctx, p.Bucket, p.Key, opts)
	if err != nil {
		return InitiateUploadResult{}, fmt.Errorf("initiate multipart upload %s/%s: %w", p.Bucket, p.Key, err)
	}
	return InitiateUploadResult{UploadID: uploadID}, nil
}

// PresignUploadPart signs a URL for one part PUT. Before signing it re-reads
// the session's part listing and rejects any part that would push the session
// over MaxBytes, aborting the session so a misbehaving client cannot keep
// probing. The URL is signed with a fixed Content-Length equal to the
// declared size, so the actual PUT cannot smuggle more bytes than declared.
func (m *minioStorage) PresignUploadPart(ctx context.Context, p PresignPartParams) (PresignedPartURL, error) {
	if err := validateBucketAndKey(p.Bucket, p.Key); err != nil {
		return PresignedPartURL{}, err
	}
	if err := ValidatePartNumber(p.PartNumber); err != nil {
		return PresignedPartURL{}, err
	}
	if err := ValidateExpiry(p.ExpirySeconds); err != nil {
		return PresignedPartURL{}, err
	}
	if p.DeclaredSizeBytes <= 0 {
		return PresignedPartURL{}, &ValidationError{Field: "part size", Reason: "must be positive"}
	}
	if p.DeclaredSizeBytes < MinPartSize {
		// Only the last part may be under the store's 5 MiB minimum and we
		// cannot know in advance which part is last, so warn instead of reject.
		logWarn("declared part size below store minimum", map[string]any{
			"bucket":      p.Bucket,
			"key":         p.Key,
			"upload_id":   truncateID(p.UploadID),
			"part_number": p.PartNumber,
			"declared":    p.DeclaredSizeBytes,
			"minimum":     MinPartSize,
		})
	}

	parts, err := m.listAllParts(ctx, p.Bucket, p.Key, p.UploadID)
	if err != nil {
		return PresignedPartURL{}, err
	}
	uploaded := totalPartBytes(parts)
	if uploaded+p.DeclaredSizeBytes > p.MaxBytes {
		m.abortBestEffort(ctx, p.Bucket, p.Key, p.UploadID, "capacity violation at signing")
		return PresignedPartURL{}, &CapacityError{
			UploadedBytes: uploaded,
			DeclaredBytes: p.DeclaredSizeBytes,
			MaxBytes:      p.MaxBytes,
		}
	}

	expiry := time.Duration(p.ExpirySeconds) * time.Second
	reqParams := url.Values{
		"uploadId":   {p.UploadID},
		"partNumber": {strconv.Itoa(p.PartNumber)},
	}
	signedHeaders := http.Header{
		"Content-Length": {strconv.FormatInt(p.DeclaredSizeBytes, 10)},
	}
	u, err := m.store.PresignHeader(ctx, http.MethodPut, p.Bucket, p.Key, expiry, reqParams, signedHeaders)
	if err != nil {
		return PresignedPartURL{}, fmt.Errorf("presign part %d for %s/%s upload %s: %w",
			p.PartNumber, p.Bucket, p.Key, truncateID(p.UploadID), err)
	}
	return PresignedPartURL{
		URL:        u.String(),
		PartNumber: p.PartNumber,
		ExpiresAt:  time.Now().UTC().Add(expiry),
	}, nil
}

// CompleteMultipartUpload is the authoritative capacity gate. The total is
// re-derived from the store's own part listing, never from client-supplied
// sizes: individually-valid part signings followed by tampering cannot
// produce an oversized object.
func (m *minioStorage) CompleteMultipartUpload(ctx context.Context, p CompleteUploadParams) (CompleteUploadResult, error) {
	if err := validateBucketAndKey(p.Bucket, p.Key); err != nil {
		return CompleteUploadResult{}, err
	}
	if err := ValidateCompletedParts(p.Parts); err != nil {
		return CompleteUploadResult{}, err
	}

	parts, err := m.listAllParts(ctx, p.Bucket, p.Key, p.UploadID)
	if err != nil {
		return CompleteUploadResult{}, err
	}
	total := totalPartBytes(parts)
	if total > p.MaxBytes {
		m.abortBestEffort(ctx, p.Bucket, p.Key, p.UploadID, "capacity violation at completion")
		return CompleteUploadResult{}, &CapacityError{UploadedBytes: total, MaxBytes: p.MaxBytes}
	}

	completion := make([]minio.CompletePart, 0, len(p.Parts))
	for _, part := range sortedByPartNumber(p.Parts) {
		completion = append(completion, minio.CompletePart{
			PartNumber: part.PartNumber,
			ETag:       part.ETag,
		})
	}
	info, err := m.store.CompleteMultipartUpload(ctx, p.Bucket, p.Key, p.UploadID, completion, minio.PutObjectOptions{})
	if err != nil {
		return CompleteUploadResult{}, fmt.Errorf("complete multipart upload %s/%s upload %s: %w",
			p.Bucket, p.Key, truncateID(p.UploadID), err)
	}
	return CompleteUploadResult{ETag: info.ETag, Size: total}, nil
}

func (m *minioStorage) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	if err := validateBucketAndKey(bucket, key); err != nil {
		return err
	}
	if err := m.store.AbortMultipartUpload(ctx, bucket, key, uploadID); err != nil {
		return fmt.Errorf("abort multipart upload %s/%s upload %s: %w", bucket, key, truncateID(uploadID), err)
	}
	return nil
}

func (m *minioStorage) ListUploadParts(ctx context.Context, bucket, key, uploadID string) ([]PartInfo, error) {
	if err := validateBucketAndKey(bucket, key); err != nil {
		return nil, err
	}
	return m.listAllParts(ctx, bucket, key, uploadID)
}

func (m *minioStorage) GetUploadStatus(ctx context.Context, bucket, key, uploadID string, maxBytes int64) (UploadStatus, error) {
	if err := validateBucketAndKey(bucket, key); err != nil {
		return UploadStatus{}, err
	}
	parts, err := m.listAllParts(ctx, bucket, key, uploadID)
	if err != nil {
		return UploadStatus{}, err
	}

	uploaded := totalPartBytes(parts)
	remaining := maxBytes - uploaded
	if remaining < 0 {
		remaining = 0
	}
	return UploadStatus{
		Parts:          parts,
		UploadedBytes:  uploaded,
		RemainingBytes: remaining,
		NextPartNumber: firstFreePartNumber(parts),
		CanComplete:    len(parts) > 0 && uploaded <= maxBytes,
	}, nil
}

func (m *minioStorage) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validateBucketAndKey(bucket, key); err != nil {
		return false, err
	}
	_, err := m.store.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket":
			return false, nil
		}
		return false, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func (m *minioStorage) GetObjectMetadata(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	if err := validateBucketAndKey(bucket, key); err != nil {
		return ObjectInfo{}, err
	}
	st, err := m.store.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     map[string]string(st.UserMetadata),
	}, nil
}

func (m *minioStorage) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) (string, error) {
	if err := validateBucketAndKey(bucket, srcKey); err != nil {
		return "", err
	}
	if err := ValidateObjectKey(dstKey); err != nil {
		return "", err
	}
	info, err := m.store.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: bucket, Object: srcKey},
	)
	if err != nil {
		return "", fmt.Errorf("copy object %s/%s -> %s: %w", bucket, srcKey, dstKey, err)
	}
	return info.ETag, nil
}

// MoveObject is copy+delete; the store has no native move. A failed delete
// leaves the source behind rather than risking the destination.
func (m *minioStorage) MoveObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	if _, err := m.CopyObject(ctx, bucket, srcKey, dstKey); err != nil {
		return err
	}
	return m.DeleteObject(ctx, bucket, srcKey)
}

func (m *minioStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := validateBucketAndKey(bucket, key); err != nil {
		return err
	}
	if err := m.store.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (m *minioStorage) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	if err := ValidateBucketName(bucket); err != nil {
		return err
	}
	for _, key := range keys {
		if err := ValidateObjectKey(key); err != nil {
			return err
		}
	}

	for start := 0; start < len(keys); start += DeleteBatchSize {
		end := start + DeleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		objectsCh := make(chan minio.ObjectInfo, len(batch))
		for _, key := range batch {
			objectsCh <- minio.ObjectInfo{Key: key}
		}
		close(objectsCh)

		for rmErr := range m.store.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
			if rmErr.Err != nil {
				return fmt.Errorf("delete object %s/%s: %w", bucket, rmErr.ObjectName, rmErr.Err)
			}
		}
	}
	return nil
}

func (m *minioStorage) CreateFolder(ctx context.Context, bucket, prefix string) error {
	marker, err := folderMarker(bucket, prefix)
	if err != nil {
		return err
	}
	_, err = m.store.PutObject(ctx, bucket, marker, bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("create folder %s/%s: %w", bucket, prefix, err)
	}
	return nil
}

func (m *minioStorage) FolderExists(ctx context.Context, bucket, prefix string) (bool, error) {
	marker, err := folderMarker(bucket, prefix)
	if err != nil {
		return false, err
	}
	if _, err := m.store.StatObject(ctx, bucket, marker, minio.StatObjectOptions{}); err == nil {
		return true, nil
	}
	// No marker; any object under the prefix still counts as the folder.
	ch := m.store.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: marker, Recursive: true})
	for obj := range ch {
		if obj.Err != nil {
			return false, fmt.Errorf("list prefix %s/%s: %w", bucket, prefix, obj.Err)
		}
		return true, nil
	}
	return false, nil
}

// DeleteFolder removes every object under the prefix, marker included, and
// returns the number of objects deleted. Listed keys stream straight into the
// batch-delete call.
func (m *minioStorage) DeleteFolder(ctx context.Context, bucket, prefix string) (int, error) {
	marker, err := folderMarker(bucket, prefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	objectsCh := make(chan minio.ObjectInfo)
	listErrCh := make(chan error, 1)
	go func() {
		defer close(objectsCh)
		for obj := range m.store.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: marker, Recursive: true}) {
			if obj.Err != nil {
				listErrCh <- obj.Err
				return
			}
			deleted++
			objectsCh <- obj
		}
		listErrCh <- nil
	}()

	for rmErr := range m.store.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil {
			return 0, fmt.Errorf("delete object %s/%s: %w", bucket, rmErr.ObjectName, rmErr.Err)
		}
	}
	if err := <-listErrCh; err != nil {
		return 0, fmt.Errorf("list prefix %s/%s: %w", bucket, prefix, err)
	}
	return deleted, nil
}

func (m *minioStorage) ListByPrefix(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if err := ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := ValidateObjectKey(prefix); err != nil {
		return nil, err
	}

	var out []ObjectInfo
	for obj := range m.store.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list prefix %s/%s: %w", bucket, prefix, obj.Err)
		}
		out = append(out, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

func (m *minioStorage) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if err := validateBucketAndKey(bucket, key); err != nil {
		return "", err
	}
	u, err := m.store.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

// listAllParts paginates over the store's part listing and accumulates every
// part. The store's 10,000-part ceiling is the only bound.
func (m *minioStorage) listAllParts(ctx context.Context, bucket, key, uploadID string) ([]PartInfo, error) {
	var parts []PartInfo
	marker := 0
	for {
		res, err := m.store.ListObjectParts(ctx, bucket, key, uploadID, marker, 1000)
		if err != nil {
			if minio.ToErrorResponse(err).Code == "NoSuchUpload" {
				return nil, fmt.Errorf("%w: %s/%s upload %s", ErrUploadNotFound, bucket, key, truncateID(uploadID))
			}
			return nil, fmt.Errorf("list parts %s/%s upload %s: %w", bucket, key, truncateID(uploadID), err)
		}
		for _, p := range res.ObjectParts {
			parts = append(parts, PartInfo{
				PartNumber:   p.PartNumber,
				Size:         p.Size,
				ETag:         p.ETag,
				LastModified: p.LastModified,
			})
		}
		if !res.IsTruncated {
			return parts, nil
		}
		marker = res.NextPartNumberMarker
	}
}

// abortBestEffort cleans up a session after a capacity violation. An abort
// failure is logged and swallowed so it never masks the violation itself.
func (m *minioStorage) abortBestEffort(ctx context.Context, bucket, key, uploadID, reason string) {
	if err := m.store.AbortMultipartUpload(ctx, bucket, key, uploadID); err != nil {
		logWarn("best-effort abort failed", map[string]any{
			"bucket":    bucket,
			"key":       key,
			"upload_id": truncateID(uploadID),
			"reason":    reason,
			"error":     err.Error(),
		})
	}
}

func folderMarker(bucket, prefix string) (string, error) {
	if err := ValidateBucketName(bucket); err != nil {
		return "", err
	}
	if err := ValidateObjectKey(prefix); err != nil {
		return "", err
	}
	return prefix + "/", nil
}

func totalPartBytes(parts []PartInfo) int64 {
	var total int64
	for _, p := range parts {
		total += p.Size
	}
	return total
}

// firstFreePartNumber finds the lowest unused part number: the first gap in
// the sequence, or N+1 when the parts are contiguous from 1.
func firstFreePartNumber(parts []PartInfo) int {
	used := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		used[p.PartNumber] = struct{}{}
	}
	for n := 1; n <= len(parts)+1; n++ {
		if _, ok := used[n]; !ok {
			return n
		}
	}
	return len(parts) + 1
}

// The store requires completion parts in ascending part-number order.
func sortedByPartNumber(parts []CompletedPart) []CompletedPart {
	out := make([]CompletedPart, len(parts))
	copy(out, parts)
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out
}

func truncateID(uploadID string) string {
	if len(uploadID) <= 12 {
		return uploadID
	}
	return uploadID[:12] + "..."
}

// logWarn writes one JSON warning line, matching the service's log format.
func logWarn(msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "warn",
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
