package http

import (
	bookingHttp "github.com/nekogravitycat/resource-share-backend/internal/booking/http"
	resHttp "github.com/nekogravitycat/resource-share-backend/internal/resource/http"
)

type DashboardResponse struct {
	AllResources         []resHttp.ResourceResponse        `json:"all_resources"`
	MyResources          []resHttp.ResourceResponse        `json:"my_resources"`
	MyActiveReservations []bookingHttp.ReservationResponse `json:"my_active_reservations"`
}

type ResourceDetailResponse struct {
	Resource                resHttp.ResourceResponse          `json:"resource"`
	IsEditableByCurrentUser bool                              `json:"is_editable_by_current_user"`
	UpcomingReservations    []bookingHttp.ReservationResponse `json:"upcoming_reservations"`
}

type TagSearchResponse struct {
	TagName string                     `json:"tag_name"`
	Matches []resHttp.ResourceResponse `json:"matches"`
}

type SearchResponse struct {
	Type      string                     `json:"type"`
	Query     string                     `json:"query,omitempty"`
	StartTime *string                    `json:"start_time,omitempty"`
	EndTime   *string                    `json:"end_time,omitempty"`
	Matches   []resHttp.ResourceResponse `json:"matches"`
}

// SearchRequest is the query string of GET /search.
type SearchRequest struct {
	Type            string `form:"type" binding:"required"`
	Query           string `form:"q"`
	Start           string `form:"start"`
	DurationMinutes int    `form:"duration"`
}
