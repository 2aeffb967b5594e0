package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filehub/internal/config"
	"filehub/internal/domain"
	"filehub/internal/repository"
	"filehub/internal/storage"
)

// RequestUploadParams carries the client's declaration of the file it intends
// to upload. No bytes move at this stage.
type RequestUploadParams struct {
	Filename   string   `json:"filename"`
	Path       string   `json:"path"`
	MimeType   string   `json:"mime_type"`
	Size       int64    `json:"size"`
	UserID     string   `json:"user_id"`
	IsPublic   bool     `json:"is_public"`
	TargetApps []string `json:"target_apps,omitempty"`
}

// UploadSession is returned once a multipart session is open and the file is
// UPLOADING.
type UploadSession struct {
	File     *domain.File `json:"file"`
	UploadID string       `json:"upload_id"`
}

// UploadService drives the multipart upload lifecycle: request, per-part
// presigning, progress, completion and abort. Per-user quota is enforced here,
// before any store session exists; the per-session byte ceiling is enforced by
// the storage layer against the declared file size.
type UploadService interface {
	// RequestUpload checks quota, creates the file, opens a multipart session
	// and returns it with the file in UPLOADING.
	RequestUpload(ctx context.Context, p RequestUploadParams) (*UploadSession, error)

	// PresignPart returns a time-limited URL for uploading one part. The URL
	// is bound to the declared part size.
	PresignPart(ctx context.Context, fileID string, partNumber int, declaredSize int64) (storage.PresignedPartURL, error)

	// Status reports uploaded parts, byte totals and the next free part number.
	Status(ctx context.Context, fileID string) (storage.UploadStatus, error)

	// Complete stitches the parts into the final object and moves the file to
	// UPLOADED.
	Complete(ctx context.Context, fileID string, parts []storage.CompletedPart) (*domain.File, error)

	// Abort discards the session and marks the file CANCELED.
	Abort(ctx context.Context, fileID string) error
}

type uploadService struct {
	store  storage.Storage
	repo   repository.FileRepository
	events EventPublisher
	quota  config.QuotaConfig
	bucket string
}

// NewUploadService constructs an UploadService.
func NewUploadService(store storage.Storage, repo repository.FileRepository, events EventPublisher, quota config.QuotaConfig, bucket string) UploadService {
	return &uploadService{store: store, repo: repo, events: events, quota: quota, bucket: bucket}
}

func (s *uploadService) RequestUpload(ctx context.Context, p RequestUploadParams) (*UploadSession, error) {
	if err := s.checkQuota(ctx, p.UserID, p.Size); err != nil {
		return nil, err
	}

	f, err := domain.NewFileForUpload(domain.NewFileParams{
		Filename:   p.Filename,
		Path:       p.Path,
		MimeType:   p.MimeType,
		Size:       p.Size,
		Bucket:     s.bucket,
		UserID:     p.UserID,
		IsPublic:   p.IsPublic,
		TargetApps: p.TargetApps,
	})
	if err != nil {
		return nil, err
	}

	res, err := s.store.InitiateMultipartUpload(ctx, storage.InitiateUploadParams{
		Bucket:      f.Bucket,
		Key:         f.Key.String(),
		ContentType: f.MimeType,
		MaxBytes:    f.Size.Bytes(),
		IsPublic:    f.IsPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("initiate multipart session: %w", err)
	}

	uploadID, err := domain.NewUploadID(res.UploadID)
	if err != nil {
		return nil, fmt.Errorf("store returned unusable upload id: %w", err)
	}
	if err := f.InitiateUpload(uploadID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		// Rollback: discard the store session so it cannot accept bytes for a
		// file the database never heard of.
		if abortErr := s.store.AbortMultipartUpload(ctx, f.Bucket, f.Key.String(), uploadID.String()); abortErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback abort failed: %v", err, abortErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.events.Publish(ctx, f.PullEvents()...)
	return &UploadSession{File: f, UploadID: uploadID.String()}, nil
}

func (s *uploadService) PresignPart(ctx context.Context, fileID string, partNumber int, declaredSize int64) (storage.PresignedPartURL, error) {
	f, err := s.loadFile(ctx, fileID)
	if err != nil {
		return storage.PresignedPartURL{}, err
	}
	if f.Status != domain.StatusUploading {
		return storage.PresignedPartURL{}, &domain.InvalidStateError{
			Op: "presign part", Current: f.Status, Required: domain.StatusUploading,
		}
	}

	url, err := s.store.PresignUploadPart(ctx, storage.PresignPartParams{
		Bucket:            f.Bucket,
		Key:               f.Key.String(),
		UploadID:          f.UploadID.String(),
		PartNumber:        partNumber,
		ExpirySeconds:     s.quota.PresignExpirySec,
		DeclaredSizeBytes: declaredSize,
		MaxBytes:          f.Size.Bytes(),
	})
	if err != nil {
		var capErr *storage.CapacityError
		if errors.As(err, &capErr) {
			// The storage layer has already aborted the session.
			s.markFailed(ctx, f, capErr.Error())
		}
		return storage.PresignedPartURL{}, err
	}
	return url, nil
}

func (s *uploadService) Status(ctx context.Context, fileID string) (storage.UploadStatus, error) {
	f, err := s.loadFile(ctx, fileID)
	if err != nil {
		return storage.UploadStatus{}, err
	}
	if f.Status != domain.StatusUploading {
		return storage.UploadStatus{}, &domain.InvalidStateError{
			Op: "upload status", Current: f.Status, Required: domain.StatusUploading,
		}
	}
	return s.store.GetUploadStatus(ctx, f.Bucket, f.Key.String(), f.UploadID.String(), f.Size.Bytes())
}

func (s *uploadService) Complete(ctx context.Context, fileID string, parts []storage.CompletedPart) (*domain.File, error) {
	f, err := s.loadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f.Status != domain.StatusUploading {
		return nil, &domain.InvalidStateError{
			Op: "complete upload", Current: f.Status, Required: domain.StatusUploading,
		}
	}

	res, err := s.store.CompleteMultipartUpload(ctx, storage.CompleteUploadParams{
		Bucket:   f.Bucket,
		Key:      f.Key.String(),
		UploadID: f.UploadID.String(),
		Parts:    parts,
		MaxBytes: f.Size.Bytes(),
	})
	if err != nil {
		var capErr *storage.CapacityError
		if errors.As(err, &capErr) {
			s.markFailed(ctx, f, capErr.Error())
		}
		return nil, err
	}

	var etag domain.ETag
	if res.ETag != "" {
		etag, err = domain.NewETag(res.ETag)
		if err != nil {
			return nil, fmt.Errorf("store returned unusable etag: %w", err)
		}
	}
	if err := f.CompleteUpload(etag); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("persist completed upload: %w", err)
	}
	s.events.Publish(ctx, f.PullEvents()...)
	return f, nil
}

func (s *uploadService) Abort(ctx context.Context, fileID string) error {
	f, err := s.loadFile(ctx, fileID)
	if err != nil {
		return err
	}
	if f.Status == domain.StatusUploading && !f.UploadID.IsZero() {
		err := s.store.AbortMultipartUpload(ctx, f.Bucket, f.Key.String(), f.UploadID.String())
		if err != nil && !errors.Is(err, storage.ErrUploadNotFound) {
			return fmt.Errorf("abort multipart session: %w", err)
		}
	}
	if err := f.CancelUpload(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return fmt.Errorf("persist canceled upload: %w", err)
	}
	s.events.Publish(ctx, f.PullEvents()...)
	return nil
}

// checkQuota enforces the per-user limits before anything is created. A file
// with no owner is only subject to the single-file ceiling.
func (s *uploadService) checkQuota(ctx context.Context, userID string, size int64) error {
	if s.quota.MaxFileBytes > 0 && size > s.quota.MaxFileBytes {
		return &QuotaError{Kind: "file_size", Limit: s.quota.MaxFileBytes, Requested: size}
	}
	if userID == "" {
		return nil
	}

	used, err := s.repo.GetUserUsedBytes(ctx, userID)
	if err != nil {
		return fmt.Errorf("query user used bytes: %w", err)
	}
	if s.quota.MaxUserBytes > 0 && used+size > s.quota.MaxUserBytes {
		return &QuotaError{Kind: "user_bytes", Limit: s.quota.MaxUserBytes, Used: used, Requested: size}
	}

	active, err := s.repo.GetUserActiveUploadsCount(ctx, userID)
	if err != nil {
		return fmt.Errorf("query active uploads: %w", err)
	}
	if s.quota.MaxActiveUploads > 0 && active >= s.quota.MaxActiveUploads {
		return &QuotaError{Kind: "active_uploads", Limit: int64(s.quota.MaxActiveUploads), Used: int64(active), Requested: 1}
	}
	return nil
}

func (s *uploadService) loadFile(ctx context.Context, id string) (*domain.File, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// markFailed moves the file to FAILED after a capacity breach. Best-effort:
// the capacity error is what the caller needs to see, not a secondary
// persistence failure.
func (s *uploadService) markFailed(ctx context.Context, f *domain.File, reason string) {
	if err := f.FailUpload(reason); err != nil {
		return
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return
	}
	s.events.Publish(ctx, f.PullEvents()...)
}
