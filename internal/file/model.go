package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "file not found")
	ErrNoThumbnail     = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrEmpty           = apperror.New(http.StatusBadRequest, "file is empty")
	ErrTooLarge        = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrUnsupportedType = apperror.New(http.StatusUnsupportedMediaType, "file type is not allowed")
)

// File is the metadata of an uploaded blob. Content lives in storage.
type File struct {
	ID            string
	Owner         string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public path for a file.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public path for a file's thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
