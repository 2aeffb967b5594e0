package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
)

// fakeStore is an in-memory storeAPI used to exercise the orchestration and
// capacity logic without a running backend.
type fakeStore struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]minio.ObjectInfo // "bucket/key"
	uploads map[string]*fakeUpload      // uploadID

	nextUploadID int
	pageSize     int // parts per ListObjectParts page; 0 = all

	makeBucketErr error
	failAbort     bool
	abortCalls    int
}

type fakeUpload struct {
	bucket   string
	key      string
	metadata map[string]string
	parts    map[int]minio.ObjectPart
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		buckets: map[string]bool{},
		objects: map[string]minio.ObjectInfo{},
		uploads: map[string]*fakeUpload{},
	}
}

func (f *fakeStore) addPart(uploadID string, partNumber int, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up := f.uploads[uploadID]
	up.parts[partNumber] = minio.ObjectPart{
		PartNumber:   partNumber,
		Size:         size,
		ETag:         fmt.Sprintf("etag-%d", partNumber),
		LastModified: time.Now().UTC(),
	}
}

func (f *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[bucket], nil
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.makeBucketErr != nil {
		return f.makeBucketErr
	}
	f.buckets[bucket] = true
	return nil
}

func (f *fakeStore) NewMultipartUpload(_ context.Context, bucket, key string, opts minio.PutObjectOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUploadID++
	id := fmt.Sprintf("upload-%d", f.nextUploadID)
	f.uploads[id] = &fakeUpload{
		bucket:   bucket,
		key:      key,
		metadata: opts.UserMetadata,
		parts:    map[int]minio.ObjectPart{},
	}
	return id, nil
}

func (f *fakeStore) ListObjectParts(_ context.Context, _, _, uploadID string, partNumberMarker, _ int) (minio.ListObjectPartsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.uploads[uploadID]
	if !ok {
		return minio.ListObjectPartsResult{}, minio.ErrorResponse{Code: "NoSuchUpload", Message: "upload not found"}
	}

	var all []minio.ObjectPart
	for _, p := range up.parts {
		if p.PartNumber > partNumberMarker {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PartNumber < all[j].PartNumber })

	res := minio.ListObjectPartsResult{ObjectParts: all}
	if f.pageSize > 0 && len(all) > f.pageSize {
		res.ObjectParts = all[:f.pageSize]
		res.IsTruncated = true
		res.NextPartNumberMarker = all[f.pageSize-1].PartNumber
	}
	return res, nil
}

func (f *fakeStore) CompleteMultipartUpload(_ context.Context, bucket, key, uploadID string, parts []minio.CompletePart, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.uploads[uploadID]
	if !ok {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchUpload", Message: "upload not found"}
	}
	var total int64
	for _, p := range parts {
		stored, ok := up.parts[p.PartNumber]
		if !ok {
			return minio.UploadInfo{}, minio.ErrorResponse{Code: "InvalidPart", Message: "part not uploaded"}
		}
		total += stored.Size
	}
	etag := fmt.Sprintf("final-%d", len(parts))
	f.objects[bucket+"/"+key] = minio.ObjectInfo{Key: key, Size: total, ETag: etag}
	delete(f.uploads, uploadID)
	return minio.UploadInfo{Bucket: bucket, Key: key, ETag: etag, Size: total}, nil
}

func (f *fakeStore) AbortMultipartUpload(_ context.Context, _, _, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abortCalls++
	if f.failAbort {
		return fmt.Errorf("abort refused")
	}
	if _, ok := f.uploads[uploadID]; !ok {
		return minio.ErrorResponse{Code: "NoSuchUpload", Message: "upload not found"}
	}
	delete(f.uploads, uploadID)
	return nil
}

func (f *fakeStore) PresignHeader(_ context.Context, method, bucket, key string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error) {
	q := url.Values{}
	for k, vs := range reqParams {
		q[k] = vs
	}
	for k, vs := range extraHeaders {
		q.Set("X-Amz-SignedHeaders", strings.ToLower(k))
		q.Set("signed-"+strings.ToLower(k), vs[0])
	}
	q.Set("X-Amz-Expires", fmt.Sprintf("%d", int(expires.Seconds())))
	return &url.URL{
		Scheme:   "https",
		Host:     "store.local",
		Path:     "/" + bucket + "/" + key,
		RawQuery: q.Encode(),
	}, nil
}

func (f *fakeStore) PresignedGetObject(_ context.Context, bucket, key string, expires time.Duration, _ url.Values) (*url.URL, error) {
	return &url.URL{Scheme: "https", Host: "store.local", Path: "/" + bucket + "/" + key}, nil
}

func (f *fakeStore) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[bucket+"/"+key]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Message: "object not found"}
	}
	return obj, nil
}

func (f *fakeStore) CopyObject(_ context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[src.Bucket+"/"+src.Object]
	if !ok {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Message: "object not found"}
	}
	copied := obj
	copied.Key = dst.Object
	f.objects[dst.Bucket+"/"+dst.Object] = copied
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, ETag: obj.ETag, Size: obj.Size}, nil
}

func (f *fakeStore) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeStore) RemoveObjects(_ context.Context, bucket string, objectsCh <-chan minio.ObjectInfo, _ minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	errCh := make(chan minio.RemoveObjectError)
	go func() {
		defer close(errCh)
		for obj := range objectsCh {
			f.mu.Lock()
			delete(f.objects, bucket+"/"+obj.Key)
			f.mu.Unlock()
		}
	}()
	return errCh
}

func (f *fakeStore) ListObjects(_ context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		f.mu.Lock()
		var keys []string
		for id, obj := range f.objects {
			if strings.HasPrefix(id, bucket+"/") && strings.HasPrefix(obj.Key, opts.Prefix) {
				keys = append(keys, obj.Key)
			}
		}
		objs := make([]minio.ObjectInfo, 0, len(keys))
		sort.Strings(keys)
		for _, k := range keys {
			objs = append(objs, f.objects[bucket+"/"+k])
		}
		f.mu.Unlock()
		for _, obj := range objs {
			ch <- obj
		}
	}()
	return ch
}

func (f *fakeStore) PutObject(_ context.Context, bucket, key string, _ io.Reader, size int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = minio.ObjectInfo{Key: key, Size: size}
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}
