package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/green-tasty/preorder-gateway/internal/api/middleware"
	"github.com/green-tasty/preorder-gateway/internal/cart"
	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/metrics"
	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/utils"
	"github.com/green-tasty/preorder-gateway/internal/utils/response"
)

type CartHandler struct {
	store     *cart.Store
	validator *validator.Validate
}

func NewCartHandler(store *cart.Store) *CartHandler {
	return &CartHandler{
		store:     store,
		validator: validator.New(),
	}
}

// cartView groups the items the way the cart page renders them:
// unsubmitted first, then submitted, then edit-in-progress.
type cartView struct {
	Items       []models.CartItem `json:"items"`
	Unsubmitted []models.CartItem `json:"unsubmitted"`
	Submitted   []models.CartItem `json:"submitted"`
	Editing     []models.CartItem `json:"editing"`
	Status      models.CartStatus `json:"status"`
	Error       string            `json:"error,omitempty"`
}

func (h *CartHandler) view() cartView {
	return cartView{
		Items:       h.store.Items(),
		Unsubmitted: h.store.ItemsByState(models.StateUnsubmitted),
		Submitted:   h.store.ItemsByState(models.StateSubmitted),
		Editing:     h.store.ItemsByState(models.StateEditInProgress),
		Status:      h.store.Status(),
		Error:       h.store.Err(),
	}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, h.view())
	}
}

// RefreshCart pulls the backend cart into the store.
func (h *CartHandler) RefreshCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if err := h.store.Fetch(r.Context()); err != nil {
			logger.Error("Cart fetch failed", "error", err.Error())
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, h.view())
	}
}

func (h *CartHandler) AddDish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.AddDishRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if req.Dish.DishID == "" {
			response.Error(w, apperrors.AddValidationError("dish.dishId", "must not be empty"))

			return
		}

		h.store.AddToCart(req.ReservationID, req.Dish)

		response.Success(w, http.StatusOK, h.view())
	}
}

func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		reservationID := r.PathValue("reservationId")
		if reservationID == "" {
			response.Error(w, apperrors.BadRequestError("Reservation ID is required"))

			return
		}

		var req models.UpdateCartItemRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		h.store.UpdateItem(reservationID, req)

		response.Success(w, http.StatusOK, h.view())
	}
}

func (h *CartHandler) RemoveDish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		reservationID := r.PathValue("reservationId")
		dishID := r.PathValue("dishId")

		if reservationID == "" || dishID == "" {
			response.Error(w, apperrors.BadRequestError("Reservation ID and dish ID are required"))

			return
		}

		h.store.RemoveDish(reservationID, dishID)

		response.Success(w, http.StatusOK, h.view())
	}
}

// SubmitItem sends the reservation's pre-order to the backend. The optimistic
// transition and rollback live in the store.
func (h *CartHandler) SubmitItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		reservationID := r.PathValue("reservationId")
		if reservationID == "" {
			response.Error(w, apperrors.BadRequestError("Reservation ID is required"))

			return
		}

		item, err := h.store.Submit(r.Context(), reservationID)
		if err != nil {
			metrics.ObserveCartSubmit("failure")
			logger.Warn("Pre-order submit failed", "reservationId", reservationID, "error", err.Error())
			response.Error(w, err)

			return
		}

		metrics.ObserveCartSubmit("success")
		logger.Info("Pre-order submitted", "reservationId", reservationID)

		response.Success(w, http.StatusOK, item)
	}
}

func (h *CartHandler) StartEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		reservationID := r.PathValue("reservationId")
		if reservationID == "" {
			response.Error(w, apperrors.BadRequestError("Reservation ID is required"))

			return
		}

		h.store.StartEditing(reservationID)

		response.Success(w, http.StatusOK, h.view())
	}
}

func (h *CartHandler) CancelEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		reservationID := r.PathValue("reservationId")
		if reservationID == "" {
			response.Error(w, apperrors.BadRequestError("Reservation ID is required"))

			return
		}

		h.store.CancelEditing(reservationID)

		response.Success(w, http.StatusOK, h.view())
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		h.store.Clear()

		response.Success(w, http.StatusOK, h.view())
	}
}
