package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is the restaurant backend API. All booking, reservation and cart
// business logic lives behind it; this process only calls.
type Client interface {
	GetCart(ctx context.Context) ([]models.CartItem, error)
	PutCart(ctx context.Context, item models.CartItem) (*models.CartItem, error)
	CreateClientBooking(ctx context.Context, req *models.ClientBookingRequest) (*models.Reservation, error)
	CreateWaiterBooking(ctx context.Context, req *models.WaiterBookingRequest) (*models.Reservation, error)
	EditReservation(ctx context.Context, id string, req *models.EditReservationRequest) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id string) error
	SubmitFeedback(ctx context.Context, req *models.FeedbackRequest) error
}

type httpClient struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

func New(baseURL string, httpc *http.Client, sess *session.Store) Client {

	if httpc == nil {
		httpc = &http.Client{}
	}

	if httpc.Transport == nil {
		httpc.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpc,
		session: sess,
	}
}

// upstreamError is the structured error body the backend answers with on
// non-2xx responses.
type upstreamError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {

	token, ok := c.session.Token(ctx)
	if !ok {
		// blocked client-side before any network call is made
		return apperrors.UnauthorizedError("Login to book the table")
	}

	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.InternalError("Failed to encode request body").WithError(err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperrors.InternalError("Failed to build request").WithError(err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Upstream request failed", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return apperrors.UpstreamError("Backend is unreachable").WithError(err)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.UpstreamError("Failed to read backend response").WithError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return apperrors.UpstreamError("Failed to decode backend response").WithError(err)
		}
	}

	return nil
}

// decodeError extracts the structured error field when the backend sent one;
// everything else is a transport-level failure.
func decodeError(statusCode int, body []byte) error {

	var ue upstreamError

	if err := json.Unmarshal(body, &ue); err == nil {
		message := ue.Message
		if message == "" {
			message = ue.Error
		}

		if message != "" {
			if statusCode == http.StatusUnauthorized {
				return apperrors.UnauthorizedError(message)
			}

			return apperrors.BusinessError(message)
		}
	}

	return apperrors.UpstreamError(fmt.Sprintf("Backend returned status %d", statusCode))
}

func (c *httpClient) GetCart(ctx context.Context) ([]models.CartItem, error) {

	var resp models.CartResponse

	if err := c.do(ctx, http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, err
	}

	return resp.Content, nil
}

func (c *httpClient) PutCart(ctx context.Context, item models.CartItem) (*models.CartItem, error) {

	// the backend only accepts submitted pre-orders
	item.State = models.StateSubmitted

	var persisted models.CartItem

	if err := c.do(ctx, http.MethodPut, "/cart", item, &persisted); err != nil {
		return nil, err
	}

	return &persisted, nil
}

func (c *httpClient) CreateClientBooking(ctx context.Context, req *models.ClientBookingRequest) (*models.Reservation, error) {

	var reservation models.Reservation

	if err := c.do(ctx, http.MethodPost, "/bookings/client", req, &reservation); err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (c *httpClient) CreateWaiterBooking(ctx context.Context, req *models.WaiterBookingRequest) (*models.Reservation, error) {

	var reservation models.Reservation

	if err := c.do(ctx, http.MethodPost, "/bookings/waiter", req, &reservation); err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (c *httpClient) EditReservation(ctx context.Context, id string, req *models.EditReservationRequest) (*models.Reservation, error) {

	var reservation models.Reservation

	if err := c.do(ctx, http.MethodPatch, "/reservations/"+id, req, &reservation); err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (c *httpClient) CancelReservation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reservations/"+id, nil, nil)
}

func (c *httpClient) SubmitFeedback(ctx context.Context, req *models.FeedbackRequest) error {
	return c.do(ctx, http.MethodPost, "/feedback", req, nil)
}
