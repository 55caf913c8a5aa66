package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/green-tasty/preorder-gateway/internal/api/handlers"
	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/reservation"
	"github.com/green-tasty/preorder-gateway/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openTestFlow(t *testing.T, handler *handlers.BookingHandler, body string) reservation.View {
	t.Helper()

	req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/flows", strings.NewReader(body), nil)
	rec := httptest.NewRecorder()

	handler.OpenFlow().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeAPIResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)

	id, _ := data["id"].(string)
	state, _ := data["state"].(string)
	selectedTime, _ := data["selectedTime"].(string)
	nextTime, _ := data["nextTime"].(string)
	guests, _ := data["numberOfGuests"].(float64)

	return reservation.View{
		ID:           id,
		State:        reservation.State(state),
		SelectedTime: selectedTime,
		NextTime:     nextTime,
		Guests:       int(guests),
	}
}

const openBody = `{
	"slot": "12:15",
	"locationId": "loc-1",
	"locationAddress": "14 Kanavska St",
	"numberOfGuests": 2,
	"table": {"date": "2025-07-04", "capacity": "4", "tableNumber": "3", "locationId": "loc-1"}
}`

func TestBookingHandler_Slots(t *testing.T) {

	t.Run("Success - lists the first-shift start times in order", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/slots", nil, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Slots().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeAPIResponse(t, rec)
		data := resp.Data.(map[string]any)
		slots, ok := data["slots"].([]any)
		require.True(t, ok)
		require.Len(t, slots, 7)
		assert.Equal(t, "10:30", slots[0])
		assert.Equal(t, "21:00", slots[6])
	})
}

func TestBookingHandler_OpenFlow(t *testing.T) {

	t.Run("Success - derives the slot end from the second shift", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)

		// Act
		view := openTestFlow(t, handler, openBody)

		// Assert
		assert.Equal(t, reservation.StateSlotChosen, view.State)
		assert.Equal(t, "12:15", view.SelectedTime)
		assert.Equal(t, "13:45", view.NextTime)
		assert.Equal(t, 2, view.Guests)
	})

	t.Run("Failure - second dialog for the same table conflicts", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		openTestFlow(t, handler, openBody)

		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/flows", strings.NewReader(openBody), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.OpenFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Failure - edit mode without a reservation", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)

		body := `{"locationId": "loc-1", "editMode": true}`
		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/flows", strings.NewReader(body), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.OpenFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookingHandler_UpdateFlow(t *testing.T) {

	t.Run("Success - guest stepper honors the table capacity", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		view := openTestFlow(t, handler, openBody)
		params := map[string]string{"id": view.ID}

		// Act - capacity is 4, so three increments from 2 only land twice
		for range 3 {
			rec := httptest.NewRecorder()
			req := testutils.CreateTestRequest(http.MethodPatch, "/api/v1/flows/"+view.ID,
				strings.NewReader(`{"action":"incrementGuests"}`), params)
			handler.UpdateFlow().ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/flows/"+view.ID, nil, params)
		handler.GetFlow().ServeHTTP(rec, req)

		// Assert
		resp := decodeAPIResponse(t, rec)
		data := resp.Data.(map[string]any)
		assert.Equal(t, float64(4), data["numberOfGuests"])
	})

	t.Run("Success - setTime re-derives the end time", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		view := openTestFlow(t, handler, openBody)

		req := testutils.CreateTestRequest(http.MethodPatch, "/api/v1/flows/"+view.ID,
			strings.NewReader(`{"action":"setTime","time":"17:30"}`), map[string]string{"id": view.ID})
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeAPIResponse(t, rec)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "17:30", data["selectedTime"])
		assert.Equal(t, "19:00", data["nextTime"])
	})

	t.Run("Failure - unknown action", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		view := openTestFlow(t, handler, openBody)

		req := testutils.CreateTestRequest(http.MethodPatch, "/api/v1/flows/"+view.ID,
			strings.NewReader(`{"action":"teleport"}`), map[string]string{"id": view.ID})
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Failure - unknown flow id", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)

		req := testutils.CreateTestRequest(http.MethodPatch, "/api/v1/flows/nope",
			strings.NewReader(`{"action":"incrementGuests"}`), map[string]string{"id": "nope"})
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBookingHandler_SubmitFlow(t *testing.T) {

	t.Run("Success - confirms a client booking", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		backend.On("CreateClientBooking", mock.Anything, mock.AnythingOfType("*models.ClientBookingRequest")).
			Return(&models.Reservation{ID: "rsv-1", Date: "2025-07-04", TimeFrom: "12:15", TimeTo: "13:45", GuestsNumber: "2"}, nil)

		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		view := openTestFlow(t, handler, openBody)

		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/flows/"+view.ID+"/submit", nil,
			map[string]string{"id": view.ID})
		rec := httptest.NewRecorder()

		// Act
		handler.SubmitFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeAPIResponse(t, rec)
		data := resp.Data.(map[string]any)
		assert.Equal(t, string(reservation.StateConfirmed), data["state"])
		backend.AssertExpectations(t)
	})

	t.Run("Failure - slot taken keeps the dialog open", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		backend.On("CreateClientBooking", mock.Anything, mock.AnythingOfType("*models.ClientBookingRequest")).
			Return(nil, mockBusinessErr("Table already booked for this slot"))

		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		view := openTestFlow(t, handler, openBody)

		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/flows/"+view.ID+"/submit", nil,
			map[string]string{"id": view.ID})
		rec := httptest.NewRecorder()

		// Act
		handler.SubmitFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)

		getRec := httptest.NewRecorder()
		handler.GetFlow().ServeHTTP(getRec, testutils.CreateTestRequest(http.MethodGet, "/api/v1/flows/"+view.ID, nil,
			map[string]string{"id": view.ID}))

		resp := decodeAPIResponse(t, getRec)
		data := resp.Data.(map[string]any)
		assert.Equal(t, string(reservation.StateSlotChosen), data["state"])
	})
}

func TestBookingHandler_QRAndCancel(t *testing.T) {

	confirm := func(t *testing.T, handler *handlers.BookingHandler, backend *mockBackend) string {
		t.Helper()

		backend.On("CreateClientBooking", mock.Anything, mock.AnythingOfType("*models.ClientBookingRequest")).
			Return(&models.Reservation{ID: "rsv-1", Date: "2025-07-04", TimeFrom: "12:15", TimeTo: "13:45", GuestsNumber: "2"}, nil)

		view := openTestFlow(t, handler, openBody)

		rec := httptest.NewRecorder()
		handler.SubmitFlow().ServeHTTP(rec, testutils.CreateTestRequest(http.MethodPost, "/api/v1/flows/"+view.ID+"/submit", nil,
			map[string]string{"id": view.ID}))
		require.Equal(t, http.StatusOK, rec.Code)

		return view.ID
	}

	t.Run("Success - QR code for a confirmed reservation", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		id := confirm(t, handler, backend)

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/flows/"+id+"/qr", nil, map[string]string{"id": id})
		rec := httptest.NewRecorder()

		// Act
		handler.FlowQR().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Body.Bytes())
	})

	t.Run("Failure - QR before confirmation", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		view := openTestFlow(t, handler, openBody)

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/flows/"+view.ID+"/qr", nil,
			map[string]string{"id": view.ID})
		rec := httptest.NewRecorder()

		// Act
		handler.FlowQR().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Success - cancel closes the dialog", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		id := confirm(t, handler, backend)

		backend.On("CancelReservation", mock.Anything, "rsv-1").Return(nil)

		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/flows/"+id+"/cancel", nil, map[string]string{"id": id})
		rec := httptest.NewRecorder()

		// Act
		handler.CancelFlowReservation().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeAPIResponse(t, rec)
		data := resp.Data.(map[string]any)
		assert.Equal(t, string(reservation.StateClosed), data["state"])
		backend.AssertExpectations(t)
	})

	t.Run("Success - direct reservation cancel", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		backend.On("CancelReservation", mock.Anything, "rsv-7").Return(nil)

		req := testutils.CreateTestRequest(http.MethodDelete, "/api/v1/reservations/rsv-7", nil,
			map[string]string{"id": "rsv-7"})
		rec := httptest.NewRecorder()

		// Act
		handler.CancelReservation().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		backend.AssertExpectations(t)
	})
}

func TestBookingHandler_CloseFlow(t *testing.T) {

	t.Run("Success - closing frees the table for a new dialog", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)
		view := openTestFlow(t, handler, openBody)

		req := testutils.CreateTestRequest(http.MethodDelete, "/api/v1/flows/"+view.ID, nil,
			map[string]string{"id": view.ID})
		rec := httptest.NewRecorder()

		// Act
		handler.CloseFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		// the same table can be opened again
		openTestFlow(t, handler, openBody)
	})

	t.Run("Failure - unknown flow", func(t *testing.T) {
		// Arrange
		backend := new(mockBackend)
		handler := handlers.NewBookingHandler(reservation.NewManager(backend), backend)

		req := testutils.CreateTestRequest(http.MethodDelete, "/api/v1/flows/nope", nil, map[string]string{"id": "nope"})
		rec := httptest.NewRecorder()

		// Act
		handler.CloseFlow().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
