package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/nekogravitycat/resource-share-backend/internal/booking/http"
	viewHttp "github.com/nekogravitycat/resource-share-backend/internal/view/http"
)

func TestReservationLifecycle(t *testing.T) {
	setupApp(t)

	owner := createTestUser(t, "owner@book.com", "password123")
	booker := createTestUser(t, "booker@book.com", "password123")
	ownerToken := generateToken(owner)
	bookerToken := generateToken(booker)

	room := createResource(t, ownerToken, "Meeting Room", "09:00", "17:00", nil)

	reservationCount := func(t *testing.T) (int, bool) {
		t.Helper()
		w := executeRequest("GET", "/v1/resources/"+room.ID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[viewHttp.ResourceDetailResponse](t, w).Resource
		return res.ReservationCount, res.HasBeenReserved
	}

	var reservationID string

	t.Run("Book: Success", func(t *testing.T) {
		payload := bookingHttp.CreateReservationRequest{
			ResourceID:      room.ID,
			StartTime:       "10:00",
			DurationMinutes: 90,
			Notes:           "  planning  ",
		}
		w := executeRequest("POST", "/v1/reservations", payload, bookerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		r := decode[bookingHttp.ReservationResponse](t, w)
		assert.Equal(t, "booker@book.com", r.Owner)
		assert.Equal(t, "10:00", r.StartTime)
		assert.Equal(t, "11:30", r.EndTime)
		assert.Equal(t, 90, r.DurationMinutes)
		assert.Equal(t, "planning", r.Notes)
		assert.Equal(t, room.ID, r.Resource.ID)
		assert.Equal(t, "Meeting Room", r.Resource.Name)
		reservationID = r.ID

		count, reserved := reservationCount(t)
		assert.Equal(t, 1, count)
		assert.True(t, reserved)
	})

	t.Run("Book: Rejections", func(t *testing.T) {
		cases := []struct {
			name    string
			payload bookingHttp.CreateReservationRequest
			token   string
			want    int
		}{
			{"no token", bookingHttp.CreateReservationRequest{ResourceID: room.ID, StartTime: "10:00", DurationMinutes: 30}, "", http.StatusUnauthorized},
			{"zero duration", bookingHttp.CreateReservationRequest{ResourceID: room.ID, StartTime: "10:00"}, bookerToken, http.StatusBadRequest},
			{"past window end", bookingHttp.CreateReservationRequest{ResourceID: room.ID, StartTime: "16:30", DurationMinutes: 60}, bookerToken, http.StatusBadRequest},
			{"before window start", bookingHttp.CreateReservationRequest{ResourceID: room.ID, StartTime: "08:00", DurationMinutes: 60}, bookerToken, http.StatusBadRequest},
			{"past midnight", bookingHttp.CreateReservationRequest{ResourceID: room.ID, StartTime: "23:00", DurationMinutes: 120}, bookerToken, http.StatusBadRequest},
			{"bad start", bookingHttp.CreateReservationRequest{ResourceID: room.ID, StartTime: "10h", DurationMinutes: 30}, bookerToken, http.StatusBadRequest},
			{"unknown resource", bookingHttp.CreateReservationRequest{ResourceID: "00000000-0000-0000-0000-000000000000", StartTime: "10:00", DurationMinutes: 30}, bookerToken, http.StatusNotFound},
		}
		for _, tc := range cases {
			w := executeRequest("POST", "/v1/reservations", tc.payload, tc.token)
			assert.Equal(t, tc.want, w.Code, tc.name)
		}

		count, _ := reservationCount(t)
		assert.Equal(t, 1, count, "rejected bookings leave the counter alone")
	})

	t.Run("Book: Overlap Accepted by Default", func(t *testing.T) {
		payload := bookingHttp.CreateReservationRequest{ResourceID: room.ID, StartTime: "10:30", DurationMinutes: 30}
		w := executeRequest("POST", "/v1/reservations", payload, ownerToken)
		require.Equal(t, http.StatusCreated, w.Code)

		count, _ := reservationCount(t)
		assert.Equal(t, 2, count)
	})

	t.Run("Get Reservation Detail", func(t *testing.T) {
		w := executeRequest("GET", "/v1/reservations/"+reservationID, nil, bookerToken)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[bookingHttp.ReservationDetailResponse](t, w)
		assert.Equal(t, reservationID, detail.Reservation.ID)
		assert.True(t, detail.IsEditableByCurrentUser)

		w = executeRequest("GET", "/v1/reservations/"+reservationID, nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decode[bookingHttp.ReservationDetailResponse](t, w).IsEditableByCurrentUser,
			"owning the resource does not make the reservation editable")
	})

	t.Run("List My Reservations", func(t *testing.T) {
		w := executeRequest("GET", "/v1/reservations", nil, bookerToken)
		require.Equal(t, http.StatusOK, w.Code)
		mine := decode[[]bookingHttp.ReservationResponse](t, w)
		require.Len(t, mine, 1)
		assert.Equal(t, reservationID, mine[0].ID)
	})

	t.Run("Rename Cascades to Reservations", func(t *testing.T) {
		payload := map[string]any{"name": "Board Room"}
		w := executeRequest("PATCH", "/v1/resources/"+room.ID, payload, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)

		w = executeRequest("GET", "/v1/reservations/"+reservationID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Board Room", decode[bookingHttp.ReservationDetailResponse](t, w).Reservation.Resource.Name)
	})

	t.Run("Edit: Window Must Keep Reservations", func(t *testing.T) {
		payload := map[string]any{"name": "Tiny Room", "end_time": "10:30"}
		w := executeRequest("PATCH", "/v1/resources/"+room.ID, payload, ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		w = executeRequest("GET", "/v1/reservations/"+reservationID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Board Room", decode[bookingHttp.ReservationDetailResponse](t, w).Reservation.Resource.Name)
	})

	t.Run("Delete: Forbidden for Non-Owner", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/reservations/"+reservationID, nil, ownerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		count, _ := reservationCount(t)
		assert.Equal(t, 2, count)
	})

	t.Run("Delete: Owner Cancels", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/reservations/"+reservationID, nil, bookerToken)
		assert.Equal(t, http.StatusNoContent, w.Code)

		count, reserved := reservationCount(t)
		assert.Equal(t, 1, count)
		assert.True(t, reserved, "the resource stays marked as reserved")

		w = executeRequest("GET", "/v1/reservations/"+reservationID, nil, bookerToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = executeRequest("DELETE", "/v1/reservations/"+reservationID, nil, bookerToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
