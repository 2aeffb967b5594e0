package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"filehub/internal/repository"
	"filehub/internal/storage"
)

// UploadJanitor periodically sweeps UPLOADING files whose session has sat
// idle past the configured age, aborts their store sessions and marks them
// FAILED. Clients that want the file must request a fresh upload.
type UploadJanitor struct {
	store    storage.Storage
	repo     repository.FileRepository
	events   EventPublisher
	interval time.Duration
	maxAge   time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewUploadJanitor constructs a janitor. Start must be called to begin
// sweeping.
func NewUploadJanitor(store storage.Storage, repo repository.FileRepository, events EventPublisher, interval, maxAge time.Duration) *UploadJanitor {
	return &UploadJanitor{
		store:    store,
		repo:     repo,
		events:   events,
		interval: interval,
		maxAge:   maxAge,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (j *UploadJanitor) Start() {
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-j.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), j.interval)
				swept, err := j.Sweep(ctx)
				cancel()
				if err != nil {
					logLine("error", "stale upload sweep failed", map[string]any{"error": err.Error()})
				} else if swept > 0 {
					logLine("info", "stale uploads swept", map[string]any{"count": swept})
				}
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (j *UploadJanitor) Stop() {
	close(j.stop)
	<-j.done
}

// Sweep runs one pass and returns how many files it failed over. A file that
// cannot be processed is skipped; the rest of the batch still runs.
func (j *UploadJanitor) Sweep(ctx context.Context) (int, error) {
	expired, err := j.repo.FindExpiredUploads(ctx, j.maxAge)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range expired {
		f := &expired[i]
		if !f.UploadID.IsZero() {
			err := j.store.AbortMultipartUpload(ctx, f.Bucket, f.Key.String(), f.UploadID.String())
			if err != nil && !errors.Is(err, storage.ErrUploadNotFound) {
				logLine("warn", "abort stale session failed", map[string]any{
					"file_id": f.ID, "error": err.Error(),
				})
				continue
			}
		}
		if err := f.FailUpload("upload session expired"); err != nil {
			continue
		}
		if err := j.repo.Update(ctx, f); err != nil {
			logLine("warn", "persist stale upload failure", map[string]any{
				"file_id": f.ID, "error": err.Error(),
			})
			continue
		}
		j.events.Publish(ctx, f.PullEvents()...)
		swept++
	}
	return swept, nil
}

func logLine(level, msg string, fields map[string]any) {
	entry := map[string]any{"level": level, "msg": msg}
	for k, v := range fields {
		entry[k] = v
	}
	b, _ := json.Marshal(entry)
	log.Println(string(b))
}
