package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/green-tasty/preorder-gateway/internal/api/middleware"
	"github.com/green-tasty/preorder-gateway/internal/client"
	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/reservation"
	"github.com/green-tasty/preorder-gateway/internal/utils"
	"github.com/green-tasty/preorder-gateway/internal/utils/response"
	qrcode "github.com/skip2/go-qrcode"
)

type BookingHandler struct {
	manager   *reservation.Manager
	api       client.Client
	validator *validator.Validate
}

func NewBookingHandler(manager *reservation.Manager, api client.Client) *BookingHandler {
	return &BookingHandler{
		manager:   manager,
		api:       api,
		validator: validator.New(),
	}
}

type openFlowRequest struct {
	Slot            string              `json:"slot"`
	Table           models.Table        `json:"table"`
	LocationID      string              `json:"locationId" validate:"required"`
	LocationAddress string              `json:"locationAddress"`
	Guests          int                 `json:"numberOfGuests"`
	EditMode        bool                `json:"editMode"`
	Reservation     *models.Reservation `json:"reservation,omitempty"`

	Waiter        bool   `json:"waiter"`
	ClientType    string `json:"clientType,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty" validate:"omitempty,email"`
}

type updateFlowRequest struct {
	Action string `json:"action" validate:"required,oneof=incrementGuests decrementGuests setTime"`
	Time   string `json:"time,omitempty"`
}

// Slots lists the selectable start times the slot dropdown renders.
func (h *BookingHandler) Slots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, map[string][]string{"slots": reservation.FirstShiftSlots()})
	}
}

// OpenFlow mounts a booking dialog for a chosen slot, or an edit dialog when
// editMode carries an existing reservation.
func (h *BookingHandler) OpenFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req openFlowRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if req.EditMode && req.Reservation == nil {
			response.Error(w, apperrors.AddValidationError("reservation", "required in edit mode"))

			return
		}

		flow, err := h.manager.Open(reservation.OpenParams{
			Slot:            req.Slot,
			Table:           req.Table,
			LocationID:      req.LocationID,
			LocationAddress: req.LocationAddress,
			Guests:          req.Guests,
			EditMode:        req.EditMode,
			Reservation:     req.Reservation,
			Waiter:          req.Waiter,
			ClientType:      req.ClientType,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
		})
		if err != nil {
			logger.Warn("Booking dialog open rejected", "error", err.Error())
			response.Error(w, err)

			return
		}

		logger.Info("Booking dialog opened", "flowId", flow.ID(), "editMode", req.EditMode)

		response.Success(w, http.StatusCreated, flow.View())
	}
}

func (h *BookingHandler) GetFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		flow, ok := h.flow(w, r)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, flow.View())
	}
}

// UpdateFlow applies one dialog action: guest stepper or a new start time.
func (h *BookingHandler) UpdateFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		flow, ok := h.flow(w, r)
		if !ok {
			return
		}

		var req updateFlowRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		var view reservation.View

		switch req.Action {
		case "incrementGuests":
			view = flow.IncrementGuests()
		case "decrementGuests":
			view = flow.DecrementGuests()
		case "setTime":
			if req.Time == "" {
				response.Error(w, apperrors.AddValidationError("time", "required for setTime"))

				return
			}

			view = flow.SetTime(req.Time)
		}

		response.Success(w, http.StatusOK, view)
	}
}

func (h *BookingHandler) SubmitFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		flow, ok := h.flow(w, r)
		if !ok {
			return
		}

		view, err := flow.Submit(r.Context())
		if err != nil {
			logger.Warn("Reservation submit rejected", "flowId", flow.ID(), "error", err.Error())
			response.Error(w, err)

			return
		}

		logger.Info("Reservation confirmed", "flowId", flow.ID())

		response.Success(w, http.StatusOK, view)
	}
}

func (h *BookingHandler) ReeditFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		flow, ok := h.flow(w, r)
		if !ok {
			return
		}

		view, err := flow.Reedit()
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// CancelFlowReservation cancels the flow's confirmed reservation upstream.
func (h *BookingHandler) CancelFlowReservation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		flow, ok := h.flow(w, r)
		if !ok {
			return
		}

		view, err := flow.CancelReservation(r.Context())
		if err != nil {
			logger.Warn("Reservation cancel failed", "flowId", flow.ID(), "error", err.Error())
			response.Error(w, err)

			return
		}

		logger.Info("Reservation cancelled", "flowId", flow.ID())

		response.Success(w, http.StatusOK, view)
	}
}

func (h *BookingHandler) CloseFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id := r.PathValue("id")
		if id == "" {
			response.Error(w, apperrors.BadRequestError("Flow ID is required"))

			return
		}

		if !h.manager.Close(id) {
			response.Error(w, apperrors.NotFoundError("Booking dialog not found"))

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"id": id, "state": string(reservation.StateClosed)})
	}
}

// FlowQR renders the confirmed reservation as a QR code PNG, for showing at
// the door.
func (h *BookingHandler) FlowQR() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		flow, ok := h.flow(w, r)
		if !ok {
			return
		}

		view := flow.View()

		if view.State != reservation.StateConfirmed || view.Reservation == nil {
			response.Error(w, apperrors.ConflictError("No confirmed reservation for this dialog"))

			return
		}

		res := view.Reservation

		payload := fmt.Sprintf("reservation:%s;date:%s;from:%s;to:%s;guests:%s",
			res.ID, res.Date, res.TimeFrom, res.TimeTo, res.GuestsNumber)

		png, err := qrcode.Encode(payload, qrcode.Medium, 256)
		if err != nil {
			response.Error(w, apperrors.InternalError("Failed to render QR code").WithError(err))

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

// CancelReservation cancels a reservation by id directly, outside any open
// dialog (the reservations list page).
func (h *BookingHandler) CancelReservation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id := r.PathValue("id")
		if id == "" {
			response.Error(w, apperrors.BadRequestError("Reservation ID is required"))

			return
		}

		if err := h.api.CancelReservation(r.Context(), id); err != nil {
			logger.Warn("Reservation cancel failed", "reservationId", id, "error", err.Error())
			response.Error(w, err)

			return
		}

		logger.Info("Reservation cancelled", "reservationId", id)

		response.Success(w, http.StatusOK, map[string]string{"id": id, "status": "CANCELLED"})
	}
}

func (h *BookingHandler) flow(w http.ResponseWriter, r *http.Request) (*reservation.Flow, bool) {

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, apperrors.BadRequestError("Flow ID is required"))

		return nil, false
	}

	flow, ok := h.manager.Get(id)
	if !ok {
		response.Error(w, apperrors.NotFoundError("Booking dialog not found"))

		return nil, false
	}

	return flow, true
}
