package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/utils/response"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) GetCart(ctx context.Context) ([]models.CartItem, error) {
	args := m.Called(ctx)

	if items, ok := args.Get(0).([]models.CartItem); ok {
		return items, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockBackend) PutCart(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	args := m.Called(ctx, item)

	if persisted, ok := args.Get(0).(*models.CartItem); ok {
		return persisted, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockBackend) CreateClientBooking(ctx context.Context, req *models.ClientBookingRequest) (*models.Reservation, error) {
	args := m.Called(ctx, req)

	if reservation, ok := args.Get(0).(*models.Reservation); ok {
		return reservation, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockBackend) CreateWaiterBooking(ctx context.Context, req *models.WaiterBookingRequest) (*models.Reservation, error) {
	args := m.Called(ctx, req)

	if reservation, ok := args.Get(0).(*models.Reservation); ok {
		return reservation, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockBackend) EditReservation(ctx context.Context, id string, req *models.EditReservationRequest) (*models.Reservation, error) {
	args := m.Called(ctx, id, req)

	if reservation, ok := args.Get(0).(*models.Reservation); ok {
		return reservation, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockBackend) CancelReservation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) SubmitFeedback(ctx context.Context, req *models.FeedbackRequest) error {
	return m.Called(ctx, req).Error(0)
}

func mockBusinessErr(message string) error {
	return apperrors.BusinessError(message)
}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var resp response.APIResponse

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}
