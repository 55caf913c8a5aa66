package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/green-tasty/preorder-gateway/internal/api/middleware"
	"github.com/green-tasty/preorder-gateway/internal/cart"
	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/session"
	"github.com/green-tasty/preorder-gateway/internal/utils"
	"github.com/green-tasty/preorder-gateway/internal/utils/response"
)

type SessionHandler struct {
	session   *session.Store
	store     *cart.Store
	validator *validator.Validate
}

func NewSessionHandler(sess *session.Store, store *cart.Store) *SessionHandler {
	return &SessionHandler{
		session:   sess,
		store:     store,
		validator: validator.New(),
	}
}

type setTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type sessionView struct {
	LoggedIn bool `json:"loggedIn"`
}

func (h *SessionHandler) GetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, sessionView{LoggedIn: h.session.LoggedIn(r.Context())})
	}
}

// SetToken stores the bearer token issued by the backend's sign-in.
func (h *SessionHandler) SetToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req setTokenRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.session.SetToken(r.Context(), req.Token); err != nil {
			logger.Error("Failed to store auth token", "error", err.Error())
			response.Error(w, apperrors.StorageError("Failed to store auth token").WithError(err))

			return
		}

		logger.Info("Session token stored")

		response.Success(w, http.StatusOK, sessionView{LoggedIn: h.session.LoggedIn(r.Context())})
	}
}

// Logout drops the token and empties the local cart.
func (h *SessionHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if err := h.session.Clear(r.Context()); err != nil {
			logger.Error("Failed to clear auth token", "error", err.Error())
			response.Error(w, apperrors.StorageError("Failed to clear auth token").WithError(err))

			return
		}

		h.store.Clear()

		logger.Info("Session cleared")

		response.Success(w, http.StatusOK, sessionView{LoggedIn: false})
	}
}
