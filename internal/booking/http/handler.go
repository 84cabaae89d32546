package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/booking"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/response"
	"github.com/nekogravitycat/resource-share-backend/internal/reservation"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
	"github.com/nekogravitycat/resource-share-backend/internal/view"
)

type Handler struct {
	workflow     booking.Workflow
	reservations reservation.Service
	views        *view.Service
}

func NewHandler(workflow booking.Workflow, reservations reservation.Service, views *view.Service) *Handler {
	return &Handler{
		workflow:     workflow,
		reservations: reservations,
		views:        views,
	}
}

// ListMine returns the caller's reservations ordered by start time.
func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.reservations.ListOwnedBy(c.Request.Context(), auth.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Map(items, NewReservationResponse))
}

// Create books a resource for the caller.
func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	start, err := timeofday.Parse(body.StartTime)
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.workflow.BookResource(c.Request.Context(), booking.BookRequest{
		ResourceID:      body.ResourceID,
		Owner:           auth.CurrentUser(c),
		Start:           start,
		DurationMinutes: body.DurationMinutes,
		Notes:           body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(r))
}

// Get returns one reservation and whether the caller may delete it.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid reservation id", err)
		return
	}

	v, err := h.views.ReservationDetail(c.Request.Context(), uri.ID, auth.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ReservationDetailResponse{
		Reservation:             NewReservationResponse(v.Reservation),
		IsEditableByCurrentUser: v.IsEditableByCurrentUser,
	})
}

// Delete cancels a reservation. Only its owner may do so.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid reservation id", err)
		return
	}

	if err := h.workflow.DeleteReservation(c.Request.Context(), uri.ID, auth.CurrentUser(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
