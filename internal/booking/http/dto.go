package http

import (
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/reservation"
	resHttp "github.com/nekogravitycat/resource-share-backend/internal/resource/http"
)

type ReservationResponse struct {
	ID              string              `json:"id"`
	Resource        resHttp.ResourceTag `json:"resource"`
	Owner           string              `json:"owner"`
	StartTime       string              `json:"start_time"`
	EndTime         string              `json:"end_time"`
	DurationMinutes int                 `json:"duration_minutes"`
	Notes           string              `json:"notes"`
	CreatedAt       time.Time           `json:"created_at"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		Resource:        resHttp.ResourceTag{ID: r.ResourceID, Name: r.ResourceName},
		Owner:           r.Owner,
		StartTime:       r.Interval.Start.String(),
		EndTime:         r.Interval.End.String(),
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
	}
}

type ReservationDetailResponse struct {
	Reservation             ReservationResponse `json:"reservation"`
	IsEditableByCurrentUser bool                `json:"is_editable_by_current_user"`
}

// CreateReservationRequest books a resource for DurationMinutes starting at
// StartTime ("HH:MM").
type CreateReservationRequest struct {
	ResourceID      string `json:"resource_id" binding:"required,uuid"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes" binding:"max=1000"`
}
