package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	bookingHttp "github.com/nekogravitycat/resource-share-backend/internal/booking/http"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/response"
	resHttp "github.com/nekogravitycat/resource-share-backend/internal/resource/http"
	"github.com/nekogravitycat/resource-share-backend/internal/view"
)

type Handler struct {
	views   *view.Service
	baseURL string
}

// NewHandler builds the read-model handlers. baseURL prefixes links in feeds.
func NewHandler(views *view.Service, baseURL string) *Handler {
	return &Handler{views: views, baseURL: baseURL}
}

func (h *Handler) Dashboard(c *gin.Context) {
	v, err := h.views.Dashboard(c.Request.Context(), auth.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		AllResources:         response.Map(v.AllResources, resHttp.NewResourceResponse),
		MyResources:          response.Map(v.MyResources, resHttp.NewResourceResponse),
		MyActiveReservations: response.Map(v.MyActiveReservations, bookingHttp.NewReservationResponse),
	})
}

func (h *Handler) ResourceDetail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid resource id", err)
		return
	}

	v, err := h.views.ResourceDetail(c.Request.Context(), uri.ID, auth.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResourceDetailResponse{
		Resource:                resHttp.NewResourceResponse(v.Resource),
		IsEditableByCurrentUser: v.IsEditableByCurrentUser,
		UpcomingReservations:    response.Map(v.UpcomingReservations, bookingHttp.NewReservationResponse),
	})
}

// ResourceFeed renders the reservations of a resource as RSS.
func (h *Handler) ResourceFeed(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid resource id", err)
		return
	}

	v, err := h.views.ResourceFeed(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.XML(http.StatusOK, v.RSS(h.baseURL))
}

func (h *Handler) TagSearch(c *gin.Context) {
	v, err := h.views.TagSearch(c.Request.Context(), c.Param("tag"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, TagSearchResponse{
		TagName: v.TagName,
		Matches: response.Map(v.Matches, resHttp.NewResourceResponse),
	})
}

// Search finds resources by name substring (type=name&q=) or by a free
// interval (type=time&start=HH:MM&duration=minutes).
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	v, err := h.views.Search(c.Request.Context(), view.SearchQuery{
		Type:            req.Type,
		Query:           req.Query,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := SearchResponse{
		Type:    v.Type,
		Query:   v.Query,
		Matches: response.Map(v.Matches, resHttp.NewResourceResponse),
	}
	if v.Start != nil && v.End != nil {
		start, end := v.Start.String(), v.End.String()
		resp.StartTime, resp.EndTime = &start, &end
	}
	c.JSON(http.StatusOK, resp)
}
