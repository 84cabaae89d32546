package http

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/file"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
)

// ResourceTag is the short form of a resource embedded in other responses.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ResourceResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Owner            string    `json:"owner"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	Tags             []string  `json:"tags"`
	ImageURL         *string   `json:"image_url"`
	ThumbnailURL     *string   `json:"thumbnail_url"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	ReservationCount int       `json:"reservation_count"`
	HasBeenReserved  bool      `json:"has_been_reserved"`
}

func NewResourceResponse(r *resource.Resource) ResourceResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := ResourceResponse{
		ID:               r.ID,
		Name:             r.Name,
		Owner:            r.Owner,
		StartTime:        r.Window.Start.String(),
		EndTime:          r.Window.End.String(),
		DurationMinutes:  r.DurationMinutes,
		Tags:             tags,
		CreatedAt:        r.CreatedAt,
		LastActivityAt:   r.LastActivityAt,
		ReservationCount: r.ReservationCount,
		HasBeenReserved:  r.HasBeenReserved,
	}
	if r.ImageID != nil {
		img, thumb := file.FileURL(*r.ImageID), file.ThumbnailURL(*r.ImageID)
		resp.ImageURL, resp.ThumbnailURL = &img, &thumb
	}
	return resp
}

// TagList accepts either a JSON array of tags or one string of tags
// separated by commas or semicolons.
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = resource.NormalizeTags(list)
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.New("tags must be a string or a list of strings")
	}
	*t = resource.ParseTags(raw)
	return nil
}

type CreateResourceRequest struct {
	Name      string  `json:"name" binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Tags      TagList `json:"tags"`
}

// UpdateResourceRequest holds the editable fields. Omitted fields keep their value.
type UpdateResourceRequest struct {
	Name      *string  `json:"name"`
	StartTime *string  `json:"start_time"`
	EndTime   *string  `json:"end_time"`
	Tags      *TagList `json:"tags"`
}

type ListResourcesRequest struct {
	request.ListParams
	Owner  string `form:"owner"`
	Tag    string `form:"tag"`
	Query  string `form:"q"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=created_at last_activity_at name"`
}
