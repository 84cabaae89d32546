package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/booking"
	fileHttp "github.com/nekogravitycat/resource-share-backend/internal/file/http"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/response"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

// MaxImageSize bounds resource picture uploads.
const MaxImageSize = 5 << 20

type Handler struct {
	service     resource.Service
	workflow    booking.Workflow
	fileHandler *fileHttp.Handler
}

func NewHandler(service resource.Service, workflow booking.Workflow, fileHandler *fileHttp.Handler) *Handler {
	return &Handler{
		service:     service,
		workflow:    workflow,
		fileHandler: fileHandler,
	}
}

// List returns a page of resources filtered by owner, tag or name.
func (h *Handler) List(c *gin.Context) {
	var req ListResourcesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	filter := resource.Filter{
		Owner:     req.Owner,
		Tag:       req.Tag,
		NameQuery: req.Query,
		SortBy:    req.SortBy,
		SortOrder: req.NormalizedSortOrder("DESC"),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(response.Map(items, NewResourceResponse), req.Page, req.PageSize, total))
}

// Create registers a new resource owned by the caller.
func (h *Handler) Create(c *gin.Context) {
	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	start, err := timeofday.Parse(req.StartTime)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := timeofday.Parse(req.EndTime)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), resource.CreateRequest{
		Name:  req.Name,
		Start: start,
		End:   end,
		Tags:  req.Tags,
		Owner: auth.CurrentUser(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResourceResponse(res))
}

// Update edits a resource. Only the owner may do so.
func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid resource id", err)
		return
	}

	var body UpdateResourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := resource.UpdateRequest{Name: body.Name}
	if body.StartTime != nil {
		t, err := timeofday.Parse(*body.StartTime)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.Start = &t
	}
	if body.EndTime != nil {
		t, err := timeofday.Parse(*body.EndTime)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.End = &t
	}
	if body.Tags != nil {
		req.Tags = []string(*body.Tags)
		if req.Tags == nil {
			req.Tags = []string{}
		}
	}

	res, err := h.workflow.EditResource(c.Request.Context(), uri.ID, auth.CurrentUser(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResourceResponse(res))
}

// UploadImage stores a picture and attaches it to the resource.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid resource id", err)
		return
	}

	user := auth.CurrentUser(c)
	res, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := auth.AssertOwner(res.Owner, user); err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, fileHttp.FileUploadConfig{
		FormFieldName: "image",
		MaxSizeBytes:  MaxImageSize,
		AllowedTypes:  fileHttp.ImageTypes,
		AfterUpload: func(ctx context.Context, fileID string) error {
			_, err := h.service.SetImage(ctx, uri.ID, fileID, user)
			return err
		},
	})
}
