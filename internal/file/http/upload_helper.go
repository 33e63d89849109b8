package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-backend/internal/file"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
)

// FileUploadConfig defines the configuration for generic file uploads
type FileUploadConfig struct {
	FormFieldName string                                         // The name of the form field containing the file (default: "file")
	MaxSizeBytes  int64                                          // The maximum file size in bytes (0 = no limit)
	AllowedTypes  []string                                       // The list of allowed MIME types (empty = allow all)
	ResizeImage   bool                                           // Re-encode as JPEG bounded to 1000x1000
	AfterUpload   func(ctx context.Context, fileID string) error // Called after successful file upload (optional)
}

// HandleFileUpload is a generic reusable handler for file uploads.
// If the AfterUpload hook fails the stored file is removed again.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", err)
		return
	}

	f, err := h.fileService.Upload(c.Request.Context(), file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		ResizeImage:  config.ResizeImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(c.Request.Context(), f.ID); err != nil {
			if delErr := h.fileService.Delete(c.Request.Context(), f.ID); delErr != nil {
				zerolog.Ctx(c.Request.Context()).Warn().Err(delErr).Str("file_id", f.ID).Msg("upload rollback failed")
			}
			response.Error(c, err)
			return
		}
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}

	c.JSON(http.StatusOK, FileUploadResponse{
		Message:      "file uploaded successfully",
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
	})
}

// DeleteQuietly removes a file that is no longer referenced, logging failures.
func (h *Handler) DeleteQuietly(ctx context.Context, fileID string) {
	if err := h.fileService.Delete(ctx, fileID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file_id", fileID).Msg("failed to delete replaced file")
	}
}
