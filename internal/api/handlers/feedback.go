package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/green-tasty/preorder-gateway/internal/api/middleware"
	"github.com/green-tasty/preorder-gateway/internal/client"
	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/utils"
	"github.com/green-tasty/preorder-gateway/internal/utils/response"
	"github.com/microcosm-cc/bluemonday"
)

type FeedbackHandler struct {
	api       client.Client
	validator *validator.Validate
	sanitizer *bluemonday.Policy
}

func NewFeedbackHandler(api client.Client) *FeedbackHandler {
	return &FeedbackHandler{
		api:       api,
		validator: validator.New(),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// SubmitFeedback forwards cuisine and service ratings for a finished
// reservation. Free-text comments are stripped of any markup first.
func (h *FeedbackHandler) SubmitFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.FeedbackRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		req.CuisineComment = strings.TrimSpace(h.sanitizer.Sanitize(req.CuisineComment))
		req.ServiceComment = strings.TrimSpace(h.sanitizer.Sanitize(req.ServiceComment))

		if err := h.api.SubmitFeedback(r.Context(), &req); err != nil {
			logger.Warn("Feedback submit failed", "reservationId", req.ReservationID, "error", err.Error())
			response.Error(w, err)

			return
		}

		logger.Info("Feedback submitted", "reservationId", req.ReservationID)

		response.Success(w, http.StatusCreated, map[string]string{"reservationId": req.ReservationID, "status": "SUBMITTED"})
	}
}
