package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	billingapp "github.com/eventhub/backend/internal/application/billing"
	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/interfaces/http/dto"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockInvoiceUseCase struct {
	mock.Mock
}

func (m *MockInvoiceUseCase) GetOrCreate(ctx context.Context, eventID string, requester planning.Requester) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, eventID, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceUseCase) Get(ctx context.Context, id uuid.UUID, requester planning.Requester) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceUseCase) List(ctx context.Context, req billingapp.ListInvoicesRequest, requester planning.Requester) (*shared.Paginated[billingapp.InvoiceResponse], error) {
	args := m.Called(ctx, req, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billingapp.InvoiceResponse]), args.Error(1)
}

func (m *MockInvoiceUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status string, requester planning.Requester) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, id, status, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceUseCase) Delete(ctx context.Context, id uuid.UUID, requester planning.Requester) error {
	return m.Called(ctx, id, requester).Error(0)
}

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) Initiate(ctx context.Context, invoiceID uuid.UUID, req billingapp.InitiatePaymentRequest, requester planning.Requester) (*billingapp.InitiatePaymentResponse, error) {
	args := m.Called(ctx, invoiceID, req, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InitiatePaymentResponse), args.Error(1)
}

func (m *MockPaymentUseCase) GetStatus(ctx context.Context, transactionID string, requester planning.Requester) (*billingapp.PaymentResponse, error) {
	args := m.Called(ctx, transactionID, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.PaymentResponse), args.Error(1)
}

type MockCallbackProcessor struct {
	mock.Mock
}

func (m *MockCallbackProcessor) ProcessCallback(ctx context.Context, gatewayType billing.GatewayType, payload []byte) (*billingapp.CallbackResult, error) {
	args := m.Called(ctx, gatewayType, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.CallbackResult), args.Error(1)
}

// asRequester simulates the JWT middleware for the given requester
func asRequester(r planning.Requester) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, r.ID)
		c.Set(middleware.JWTRequesterKey, r)
		c.Next()
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
