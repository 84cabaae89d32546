package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/file"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/response"
)

// ImageTypes are the content types accepted for pictures.
var ImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// FileUploadConfig configures HandleFileUpload.
type FileUploadConfig struct {
	FormFieldName string                                         // Form field holding the file (default: "file")
	MaxSizeBytes  int64                                          // 0 = no limit
	AllowedTypes  []string                                       // Empty = allow all
	AfterUpload   func(ctx context.Context, fileID string) error // Attaches the file to an entity (optional)
}

// HandleFileUpload stores the uploaded file and runs the AfterUpload hook.
// The stored file is removed again when the hook fails.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", nil)
		return
	}
	if config.MaxSizeBytes > 0 && fileHeader.Size > config.MaxSizeBytes {
		response.Error(c, file.ErrTooLarge)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	f, err := h.fileService.Upload(ctx, file.UploadInput{
		Filename:     fileHeader.Filename,
		Content:      src,
		Owner:        auth.CurrentUser(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(ctx, f.ID); err != nil {
			if delErr := h.fileService.Delete(ctx, f.ID); delErr != nil {
				logger.FromContext(ctx, nil).Warn("rollback of uploaded file failed", "file_id", f.ID, "error", delErr)
			}
			response.Error(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, NewUploadResponse(f))
}
