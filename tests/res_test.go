package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/response"
	resHttp "github.com/nekogravitycat/resource-share-backend/internal/resource/http"
	viewHttp "github.com/nekogravitycat/resource-share-backend/internal/view/http"
)

func createResource(t *testing.T, token, name, start, end string, tags any) resHttp.ResourceResponse {
	t.Helper()
	payload := map[string]any{"name": name, "start_time": start, "end_time": end}
	if tags != nil {
		payload["tags"] = tags
	}
	w := executeRequest("POST", "/v1/resources", payload, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[resHttp.ResourceResponse](t, w)
}

func TestResourceCRUDAndPermissions(t *testing.T) {
	setupApp(t)

	owner := createTestUser(t, "owner@res.com", "password123")
	stranger := createTestUser(t, "stranger@res.com", "password123")
	ownerToken := generateToken(owner)
	strangerToken := generateToken(stranger)

	var resourceID string

	t.Run("Create Resource: Success", func(t *testing.T) {
		res := createResource(t, ownerToken, "  Lab Printer ", "09:00", "17:30", "lab; 3d-printer, lab")
		assert.Equal(t, "Lab Printer", res.Name)
		assert.Equal(t, "owner@res.com", res.Owner)
		assert.Equal(t, "09:00", res.StartTime)
		assert.Equal(t, "17:30", res.EndTime)
		assert.Equal(t, 510, res.DurationMinutes)
		assert.Equal(t, []string{"3d-printer", "lab"}, res.Tags)
		assert.Zero(t, res.ReservationCount)
		assert.False(t, res.HasBeenReserved)
		assert.Nil(t, res.ImageURL)
		resourceID = res.ID
	})

	t.Run("Create Resource: Tags as List", func(t *testing.T) {
		res := createResource(t, strangerToken, "Desk", "08:00", "12:00", []string{"quiet", " desk "})
		assert.Equal(t, []string{"desk", "quiet"}, res.Tags)
	})

	t.Run("Create Resource: Unauthorized (No Token)", func(t *testing.T) {
		payload := resHttp.CreateResourceRequest{Name: "X", StartTime: "09:00", EndTime: "10:00"}
		w := executeRequest("POST", "/v1/resources", payload, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Create Resource: Validation Failures", func(t *testing.T) {
		cases := []struct {
			name    string
			payload map[string]any
		}{
			{"bad hour", map[string]any{"name": "X", "start_time": "25:00", "end_time": "26:00"}},
			{"bad format", map[string]any{"name": "X", "start_time": "9am", "end_time": "10:00"}},
			{"end before start", map[string]any{"name": "X", "start_time": "10:00", "end_time": "09:00"}},
			{"empty window", map[string]any{"name": "X", "start_time": "10:00", "end_time": "10:00"}},
			{"blank name", map[string]any{"name": "   ", "start_time": "09:00", "end_time": "10:00"}},
			{"missing name", map[string]any{"start_time": "09:00", "end_time": "10:00"}},
			{"tags wrong type", map[string]any{"name": "X", "start_time": "09:00", "end_time": "10:00", "tags": 42}},
		}
		for _, tc := range cases {
			w := executeRequest("POST", "/v1/resources", tc.payload, ownerToken)
			assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
		}
	})

	t.Run("Get Resource Detail", func(t *testing.T) {
		w := executeRequest("GET", "/v1/resources/"+resourceID, nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[viewHttp.ResourceDetailResponse](t, w)
		assert.Equal(t, resourceID, detail.Resource.ID)
		assert.True(t, detail.IsEditableByCurrentUser)

		w = executeRequest("GET", "/v1/resources/"+resourceID, nil, strangerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decode[viewHttp.ResourceDetailResponse](t, w).IsEditableByCurrentUser)

		w = executeRequest("GET", "/v1/resources/"+resourceID, nil, "")
		require.Equal(t, http.StatusOK, w.Code, "anonymous visitors can read")
		assert.False(t, decode[viewHttp.ResourceDetailResponse](t, w).IsEditableByCurrentUser)
	})

	t.Run("Get Resource: Not Found and Invalid ID", func(t *testing.T) {
		w := executeRequest("GET", "/v1/resources/00000000-0000-0000-0000-000000000000", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = executeRequest("GET", "/v1/resources/not-a-uuid", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update Resource: Forbidden for Non-Owner", func(t *testing.T) {
		name := "Hijacked"
		w := executeRequest("PATCH", "/v1/resources/"+resourceID, resHttp.UpdateResourceRequest{Name: &name}, strangerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = executeRequest("GET", "/v1/resources/"+resourceID, nil, "")
		assert.Equal(t, "Lab Printer", decode[viewHttp.ResourceDetailResponse](t, w).Resource.Name)
	})

	t.Run("Update Resource: Owner Edits Window and Tags", func(t *testing.T) {
		payload := map[string]any{"name": "Printer", "end_time": "18:00", "tags": "lab"}
		w := executeRequest("PATCH", "/v1/resources/"+resourceID, payload, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		res := decode[resHttp.ResourceResponse](t, w)
		assert.Equal(t, "Printer", res.Name)
		assert.Equal(t, "09:00", res.StartTime)
		assert.Equal(t, "18:00", res.EndTime)
		assert.Equal(t, 540, res.DurationMinutes)
		assert.Equal(t, []string{"lab"}, res.Tags)
	})

	t.Run("Update Resource: Invalid Window Rejected", func(t *testing.T) {
		payload := map[string]any{"start_time": "19:00"}
		w := executeRequest("PATCH", "/v1/resources/"+resourceID, payload, ownerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List Resources: Filters", func(t *testing.T) {
		w := executeRequest("GET", "/v1/resources", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		all := decode[response.PageResponse[resHttp.ResourceResponse]](t, w)
		assert.Equal(t, 2, all.Total)

		w = executeRequest("GET", "/v1/resources?tag=lab", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		byTag := decode[response.PageResponse[resHttp.ResourceResponse]](t, w)
		require.Equal(t, 1, byTag.Total)
		assert.Equal(t, resourceID, byTag.Items[0].ID)

		w = executeRequest("GET", fmt.Sprintf("/v1/resources?owner=%s", "stranger@res.com"), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		byOwner := decode[response.PageResponse[resHttp.ResourceResponse]](t, w)
		require.Equal(t, 1, byOwner.Total)
		assert.Equal(t, "Desk", byOwner.Items[0].Name)

		w = executeRequest("GET", "/v1/resources?q=PRINT", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[response.PageResponse[resHttp.ResourceResponse]](t, w).Total)

		w = executeRequest("GET", "/v1/resources?sort_by=popularity", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
