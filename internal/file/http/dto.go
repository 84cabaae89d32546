package http

import "github.com/nekogravitycat/resource-share-backend/internal/file"

// UploadResponse describes a stored upload. ThumbnailURL is null for files
// that are not images.
type UploadResponse struct {
	FileID       string  `json:"file_id"`
	Filename     string  `json:"filename"`
	ContentType  string  `json:"content_type"`
	Size         int64   `json:"size"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

func NewUploadResponse(f *file.File) UploadResponse {
	resp := UploadResponse{
		FileID:      f.ID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		URL:         file.FileURL(f.ID),
	}
	if f.ThumbnailPath != nil {
		thumb := file.ThumbnailURL(f.ID)
		resp.ThumbnailURL = &thumb
	}
	return resp
}
