package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/storage"
)

const (
	thumbnailSize = 200
	resizeBound   = 1000
)

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	header := in.FileHeader
	if in.MaxSizeBytes > 0 && header.Size > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, contentType) {
		return nil, ErrUnsupportedType
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Uploads are small images; buffer once for resize, thumbnail and save.
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	fileID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := header.Filename

	if in.ResizeImage {
		resized, err := s.imgProc.Fit(bytes.NewReader(content), resizeBound, resizeBound)
		if err != nil {
			return nil, ErrNotAnImage
		}
		content = resized.Bytes()
		contentType = "image/jpeg"
		ext = ".jpg"
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
	}

	// Shard by the first two id characters: upload/ab/<id>.ext
	shard := fileID[:2]
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)
	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumbnailPath = s.saveThumbnail(ctx, shard, fileID, content)
	}

	f := &File{
		ID:            fileID,
		Filename:      filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
	}
	if in.UserID != "" {
		f.UserID = &in.UserID
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeBlobs(ctx, f)
		return nil, err
	}
	return f, nil
}

// saveThumbnail never fails the upload; a missing thumbnail is served as 404.
func (s *service) saveThumbnail(ctx context.Context, shard, fileID string, content []byte) *string {
	thumb, err := s.imgProc.Fit(bytes.NewReader(content), thumbnailSize, thumbnailSize)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file_id", fileID).Msg("thumbnail generation failed")
		return nil
	}
	path := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
	if err := s.storage.Save(ctx, path, thumb); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file_id", fileID).Msg("thumbnail save failed")
		return nil
	}
	return &path
}

func (s *service) removeBlobs(ctx context.Context, f *File) {
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file_id", f.ID).Msg("failed to delete stored file")
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("file_id", f.ID).Msg("failed to delete stored thumbnail")
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, f)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}
	return stream, f, nil
}
