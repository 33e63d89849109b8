package file

import (
	"mime/multipart"
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("file not found")
	ErrNoThumbnail     = apperror.NotFound("thumbnail not available for this file")
	ErrTooLarge        = apperror.InvalidArgument("file is too large")
	ErrUnsupportedType = apperror.InvalidArgument("file type is not allowed")
	ErrNotAnImage      = apperror.InvalidArgument("file is not a readable image")
)

// File is an uploaded blob and its metadata.
type File struct {
	ID            string
	UserID        *string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// UploadInput describes one upload and the constraints it must satisfy.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       string
	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // empty = any type
	// ResizeImage re-encodes the upload as a JPEG bounded to 1000x1000.
	ResizeImage bool
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
