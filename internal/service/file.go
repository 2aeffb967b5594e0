package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filehub/internal/domain"
	"filehub/internal/repository"
	"filehub/internal/storage"
)

// FileListResult is the service-level DTO for paginated files.
type FileListResult struct {
	Items []domain.File `json:"data"`
	Total int           `json:"total"`
}

// FileService covers the operations on files that already exist: lookup,
// listing, relocation, visibility, server-side copy, deletion and download.
// Every file-addressed operation goes through the access policy.
type FileService interface {
	// Get returns a file the actor is allowed to see.
	Get(ctx context.Context, actorID, id string) (*domain.File, error)

	// List returns the actor's files, optionally filtered by status.
	List(ctx context.Context, actorID string, status domain.FileStatus, limit, offset int) (*FileListResult, error)

	// Move relocates the file to a new path; an empty newFilename keeps the
	// current name. The stored object is moved first, then the record.
	Move(ctx context.Context, actorID, id, newPath, newFilename string) (*domain.File, error)

	// Rename changes only the filename component of the key.
	Rename(ctx context.Context, actorID, id, newFilename string) (*domain.File, error)

	// SetVisibility flips the application-level public flag.
	SetVisibility(ctx context.Context, actorID, id string, public bool) (*domain.File, error)

	// Copy duplicates the object server-side into a new file owned by the
	// actor. The new file passes through COPYING, never UPLOADING.
	Copy(ctx context.Context, actorID, id, destPath, destFilename string) (*domain.File, error)

	// Delete removes the object from the store, then tombstones the record.
	Delete(ctx context.Context, actorID, id string) error

	// Download returns a presigned GET URL for the object.
	Download(ctx context.Context, actorID, id string) (string, error)
}

type fileService struct {
	store         storage.Storage
	repo          repository.FileRepository
	policy        AccessPolicy
	events        EventPublisher
	presignExpiry time.Duration
}

// NewFileService constructs a FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, policy AccessPolicy, events EventPublisher, presignExpiry time.Duration) FileService {
	return &fileService{store: store, repo: repo, policy: policy, events: events, presignExpiry: presignExpiry}
}

func (s *fileService) Get(ctx context.Context, actorID, id string) (*domain.File, error) {
	return s.loadForRead(ctx, actorID, id, "get")
}

func (s *fileService) List(ctx context.Context, actorID string, status domain.FileStatus, limit, offset int) (*FileListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.FileQuery{
		UserID: actorID,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) Move(ctx context.Context, actorID, id, newPath, newFilename string) (*domain.File, error) {
	f, err := s.loadForWrite(ctx, actorID, id, "move")
	if err != nil {
		return nil, err
	}

	oldKey := f.Key
	if err := f.Move(newPath, newFilename); err != nil {
		return nil, err
	}
	if f.Key == oldKey {
		return f, nil
	}

	if err := s.store.MoveObject(ctx, f.Bucket, oldKey.String(), f.Key.String()); err != nil {
		return nil, fmt.Errorf("move object: %w", err)
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("persist move: %w", err)
	}
	s.events.Publish(ctx, f.PullEvents()...)
	return f, nil
}

func (s *fileService) Rename(ctx context.Context, actorID, id, newFilename string) (*domain.File, error) {
	f, err := s.loadForWrite(ctx, actorID, id, "rename")
	if err != nil {
		return nil, err
	}

	oldKey := f.Key
	if err := f.Rename(newFilename); err != nil {
		return nil, err
	}
	if f.Key == oldKey {
		return f, nil
	}

	if err := s.store.MoveObject(ctx, f.Bucket, oldKey.String(), f.Key.String()); err != nil {
		return nil, fmt.Errorf("move object: %w", err)
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("persist rename: %w", err)
	}
	s.events.Publish(ctx, f.PullEvents()...)
	return f, nil
}

func (s *fileService) SetVisibility(ctx context.Context, actorID, id string, public bool) (*domain.File, error) {
	f, err := s.loadForWrite(ctx, actorID, id, "set visibility")
	if err != nil {
		return nil, err
	}

	if public {
		f.MakePublic()
	} else {
		f.MakePrivate()
	}
	evts := f.PullEvents()
	if len(evts) == 0 {
		// Already in the requested state.
		return f, nil
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("persist visibility: %w", err)
	}
	s.events.Publish(ctx, evts...)
	return f, nil
}

func (s *fileService) Copy(ctx context.Context, actorID, id, destPath, destFilename string) (*domain.File, error) {
	src, err := s.loadForRead(ctx, actorID, id, "copy")
	if err != nil {
		return nil, err
	}
	if src.Status != domain.StatusUploaded {
		return nil, &domain.InvalidStateError{Op: "copy", Current: src.Status, Required: domain.StatusUploaded}
	}
	if destFilename == "" {
		destFilename = src.Filename
	}

	dst, err := domain.NewFileForCopy(domain.NewFileParams{
		Filename:   destFilename,
		Path:       destPath,
		MimeType:   src.MimeType,
		Size:       src.Size.Bytes(),
		Bucket:     src.Bucket,
		UserID:     actorID,
		TargetApps: src.TargetApps,
	}, src.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, dst); err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	s.events.Publish(ctx, dst.PullEvents()...)

	etagStr, err := s.store.CopyObject(ctx, src.Bucket, src.Key.String(), dst.Key.String())
	if err != nil {
		s.markCopyFailed(ctx, dst, err.Error())
		return nil, fmt.Errorf("copy object: %w", err)
	}

	var etag domain.ETag
	if etagStr != "" {
		etag, err = domain.NewETag(etagStr)
		if err != nil {
			return nil, fmt.Errorf("store returned unusable etag: %w", err)
		}
	}
	if err := dst.CompleteCopy(etag); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, dst); err != nil {
		return nil, fmt.Errorf("persist copy: %w", err)
	}
	s.events.Publish(ctx, dst.PullEvents()...)
	return dst, nil
}

func (s *fileService) Delete(ctx context.Context, actorID, id string) error {
	f, err := s.loadForWrite(ctx, actorID, id, "delete")
	if err != nil {
		return err
	}
	if !f.CanBeDeleted() {
		return &domain.InvalidStateError{Op: "delete", Current: f.Status, Required: domain.StatusUploaded}
	}

	// Store first; if this fails the record still points at a live object.
	if err := s.store.DeleteObject(ctx, f.Bucket, f.Key.String()); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if err := f.MarkDeleted(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return fmt.Errorf("persist delete: %w", err)
	}
	s.events.Publish(ctx, f.PullEvents()...)
	return nil
}

func (s *fileService) Download(ctx context.Context, actorID, id string) (string, error) {
	f, err := s.loadForRead(ctx, actorID, id, "download")
	if err != nil {
		return "", err
	}
	if f.Status != domain.StatusUploaded {
		return "", &domain.InvalidStateError{Op: "download", Current: f.Status, Required: domain.StatusUploaded}
	}
	url, err := s.store.PresignGet(ctx, f.Bucket, f.Key.String(), s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

func (s *fileService) loadForRead(ctx context.Context, actorID, id, op string) (*domain.File, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok, reason := s.policy.CanRead(actorID, f); !ok {
		return nil, &AccessDeniedError{Op: op, Reason: reason}
	}
	return f, nil
}

func (s *fileService) loadForWrite(ctx context.Context, actorID, id, op string) (*domain.File, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok, reason := s.policy.CanWrite(actorID, f); !ok {
		return nil, &AccessDeniedError{Op: op, Reason: reason}
	}
	return f, nil
}

func (s *fileService) load(ctx context.Context, id string) (*domain.File, error) {
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

func (s *fileService) markCopyFailed(ctx context.Context, f *domain.File, reason string) {
	if err := f.FailUpload(reason); err != nil {
		return
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return
	}
	s.events.Publish(ctx, f.PullEvents()...)
}
