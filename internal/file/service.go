package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/storage"
)

const (
	thumbnailWidth  = 200
	thumbnailHeight = 200
)

// UploadInput describes one upload. MaxSizeBytes of 0 means no limit and an
// empty AllowedTypes accepts every content type.
type UploadInput struct {
	Filename     string
	Content      io.Reader
	Owner        string
	MaxSizeBytes int64
	AllowedTypes []string
}

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
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, store storage.Storage, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		log:     log,
		now:     time.Now,
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	src := in.Content
	if in.MaxSizeBytes > 0 {
		src = io.LimitReader(src, in.MaxSizeBytes+1)
	}
	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if len(fileBytes) == 0 {
		return nil, ErrEmpty
	}
	if in.MaxSizeBytes > 0 && int64(len(fileBytes)) > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	// The declared type of a multipart part is client controlled, so sniff it.
	contentType := http.DetectContentType(fileBytes)
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, baseType(contentType)) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	fileID := uuid.NewString()
	shard := fileID[:2]
	ext := strings.ToLower(filepath.Ext(in.Filename))
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	log := logger.FromContext(ctx, s.log)
	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		if thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(fileBytes), thumbnailWidth, thumbnailHeight); err != nil {
			log.Warn("thumbnail generation failed", "operation", "file.upload", "file_id", fileID, "error", err)
		} else {
			tPath := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
			if err := s.storage.Save(ctx, tPath, thumb); err != nil {
				log.Warn("thumbnail save failed", "operation", "file.upload", "file_id", fileID, "error", err)
			} else {
				thumbnailPath = &tPath
			}
		}
	}

	f := &File{
		ID:            fileID,
		Owner:         in.Owner,
		Filename:      filepath.Base(in.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(fileBytes)),
		CreatedAt:     s.now().UTC(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeBlobs(ctx, f)
		return nil, err
	}

	log.Info("file uploaded", "operation", "file.upload", "file_id", f.ID, "owner", f.Owner, "size", f.Size)
	return f, nil
}

func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

func (s *service) removeBlobs(ctx context.Context, f *File) {
	log := logger.FromContext(ctx, s.log)
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		log.Warn("failed to remove stored file", "file_id", f.ID, "error", err)
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			log.Warn("failed to remove stored thumbnail", "file_id", f.ID, "error", err)
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
