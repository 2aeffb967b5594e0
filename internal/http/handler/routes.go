package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"filehub/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay minimal: parse, delegate, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, uploadSvc service.UploadService, fileSvc service.FileService) {
	// Health endpoint checks DB connectivity; healthz is a bare liveness probe.
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Multipart upload lifecycle.
	uploads := app.Group("/files/uploads")
	uploads.Post("/", RequestUpload(uploadSvc))
	uploads.Post("/:id/parts", PresignPart(uploadSvc))
	uploads.Get("/:id", UploadStatus(uploadSvc))
	uploads.Post("/:id/complete", CompleteUpload(uploadSvc))
	uploads.Delete("/:id", AbortUpload(uploadSvc))

	// File operations.
	files := app.Group("/files")
	files.Get("/", ListFiles(fileSvc))
	files.Get("/:id", GetFile(fileSvc))
	files.Delete("/:id", DeleteFile(fileSvc))
	files.Post("/:id/move", MoveFile(fileSvc))
	files.Post("/:id/rename", RenameFile(fileSvc))
	files.Put("/:id/visibility", SetVisibility(fileSvc))
	files.Post("/:id/copy", CopyFile(fileSvc))
	files.Get("/:id/download", DownloadFile(fileSvc))
}
