package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"filehub/internal/domain"
	"filehub/internal/service"
	"filehub/internal/storage"
)

// actorID identifies the caller. An upstream gateway is trusted to have
// authenticated the user; an empty value means an anonymous/system caller.
func actorID(c *fiber.Ctx) string {
	return c.Get("X-User-ID")
}

// HealthCheck reports readiness: the database must answer a ping.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

type requestUploadBody struct {
	Filename   string   `json:"filename"`
	Path       string   `json:"path"`
	MimeType   string   `json:"mime_type"`
	Size       int64    `json:"size"`
	IsPublic   bool     `json:"is_public"`
	TargetApps []string `json:"target_apps"`
}

// RequestUpload opens a multipart upload session for a declared file.
func RequestUpload(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body requestUploadBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if body.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "FILENAME_REQUIRED", "filename is required")
		}
		if body.Size <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SIZE", "size must be positive")
		}
		if body.MimeType == "" {
			body.MimeType = "application/octet-stream"
		}

		sess, err := uploadSvc.RequestUpload(c.UserContext(), service.RequestUploadParams{
			Filename:   body.Filename,
			Path:       body.Path,
			MimeType:   body.MimeType,
			Size:       body.Size,
			UserID:     actorID(c),
			IsPublic:   body.IsPublic,
			TargetApps: body.TargetApps,
		})
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

type presignPartBody struct {
	PartNumber int   `json:"part_number"`
	Size       int64 `json:"size"`
}

// PresignPart returns a time-limited URL for uploading one part.
func PresignPart(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body presignPartBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		url, err := uploadSvc.PresignPart(c.UserContext(), id, body.PartNumber, body.Size)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(url)
	}
}

// UploadStatus reports parts uploaded so far and the next free part number.
func UploadStatus(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		status, err := uploadSvc.Status(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(status)
	}
}

type completeUploadBody struct {
	Parts []storage.CompletedPart `json:"parts"`
}

// CompleteUpload stitches the uploaded parts into the final object.
func CompleteUpload(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body completeUploadBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		f, err := uploadSvc.Complete(c.UserContext(), id, body.Parts)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// AbortUpload discards the session and cancels the file.
func AbortUpload(uploadSvc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := uploadSvc.Abort(c.UserContext(), id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListFiles returns the caller's files with limit/offset pagination.
func ListFiles(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		var status domain.FileStatus
		if raw := c.Query("status"); raw != "" {
			status, err = domain.ParseFileStatus(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "invalid status filter")
			}
		}

		res, err := fileSvc.List(c.UserContext(), actorID(c), status, limit, offset)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetFile returns a single file the caller may see.
func GetFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := fileSvc.Get(c.UserContext(), actorID(c), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// DeleteFile removes the object and tombstones the record.
func DeleteFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := fileSvc.Delete(c.UserContext(), actorID(c), id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type moveFileBody struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// MoveFile relocates the file; filename is optional.
func MoveFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body moveFileBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		f, err := fileSvc.Move(c.UserContext(), actorID(c), id, body.Path, body.Filename)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(f)
	}
}

type renameFileBody struct {
	Filename string `json:"filename"`
}

// RenameFile changes only the filename component of the key.
func RenameFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body renameFileBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if body.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "FILENAME_REQUIRED", "filename is required")
		}

		f, err := fileSvc.Rename(c.UserContext(), actorID(c), id, body.Filename)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(f)
	}
}

type visibilityBody struct {
	IsPublic bool `json:"is_public"`
}

// SetVisibility flips the application-level public flag.
func SetVisibility(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body visibilityBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		f, err := fileSvc.SetVisibility(c.UserContext(), actorID(c), id, body.IsPublic)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// CopyFile duplicates the object server-side into a new file.
func CopyFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body moveFileBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if body.Path == "" {
			return writeError(c, fiber.StatusBadRequest, "PATH_REQUIRED", "destination path is required")
		}

		f, err := fileSvc.Copy(c.UserContext(), actorID(c), id, body.Path, body.Filename)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// DownloadFile returns a presigned GET URL for the object.
func DownloadFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := fileSvc.Download(c.UserContext(), actorID(c), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

func fileID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
