package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	billingapp "github.com/eventhub/backend/internal/application/billing"
	"github.com/eventhub/backend/internal/domain/billing"
)

func newPaymentRouter(uc PaymentUseCase) *gin.Engine {
	h := NewPaymentHandler(uc)
	router := gin.New()
	router.Use(asRequester(testUser))
	router.POST("/invoices/:id/payments", h.InitiatePayment)
	router.GET("/payments/:transactionId", h.GetPaymentStatus)
	return router
}

func TestPaymentHandler_InitiatePayment(t *testing.T) {
	invoiceID := uuid.New()
	created := &billingapp.InitiatePaymentResponse{
		RedirectURL:   "https://test-payment.momo.vn/pay/abc",
		PaymentID:     uuid.New(),
		TransactionID: "EVH1780000000000000001",
		Gateway:       "MOMO",
		Amount:        decimal.NewFromInt(1000000),
	}

	t.Run("client ip comes from the connection", func(t *testing.T) {
		uc := new(MockPaymentUseCase)
		want := billingapp.InitiatePaymentRequest{Gateway: "MOMO", ReturnURL: "https://app.eventhub.vn/done", ClientIP: "192.0.2.10"}
		uc.On("Initiate", mock.Anything, invoiceID, want, testUser).Return(created, nil)

		req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID.String()+"/payments",
			strings.NewReader(`{"gateway":"MOMO","return_url":"https://app.eventhub.vn/done","ClientIP":"6.6.6.6"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.10:51000"
		w := httptest.NewRecorder()
		newPaymentRouter(uc).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]interface{})
		assert.Equal(t, created.RedirectURL, data["redirect_url"])
		assert.Equal(t, created.TransactionID, data["transaction_id"])
		uc.AssertExpectations(t)
	})

	t.Run("empty body uses the default gateway", func(t *testing.T) {
		uc := new(MockPaymentUseCase)
		uc.On("Initiate", mock.Anything, invoiceID, mock.MatchedBy(func(r billingapp.InitiatePaymentRequest) bool {
			return r.Gateway == "" && r.ClientIP != ""
		}), testUser).Return(created, nil)

		w := httptest.NewRecorder()
		newPaymentRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID.String()+"/payments", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown gateway fails validation", func(t *testing.T) {
		uc := new(MockPaymentUseCase)
		req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID.String()+"/payments", strings.NewReader(`{"gateway":"PAYPAL"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		newPaymentRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service errors", func(t *testing.T) {
		tests := []struct {
			err        error
			wantStatus int
			wantCode   string
		}{
			{billing.ErrAlreadyPaid, http.StatusConflict, "ALREADY_PAID"},
			{billing.ErrInvalidAmount, http.StatusUnprocessableEntity, "INVALID_AMOUNT"},
			{billing.ErrGatewayUnavailable, http.StatusBadGateway, "GATEWAY_UNAVAILABLE"},
			{billing.ErrGatewayRejected, http.StatusBadGateway, "GATEWAY_REJECTED"},
			{billing.ErrInvoiceNotFound, http.StatusNotFound, "NOT_FOUND"},
		}
		for _, tt := range tests {
			uc := new(MockPaymentUseCase)
			uc.On("Initiate", mock.Anything, invoiceID, mock.Anything, testUser).Return(nil, tt.err)

			w := httptest.NewRecorder()
			newPaymentRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID.String()+"/payments", nil))
			assert.Equal(t, tt.wantStatus, w.Code, tt.wantCode)
			assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)
		}
	})
}

func TestPaymentHandler_GetPaymentStatus(t *testing.T) {
	uc := new(MockPaymentUseCase)
	uc.On("GetStatus", mock.Anything, "EVH1", testUser).Return(&billingapp.PaymentResponse{
		TransactionID: "EVH1",
		Method:        "VNPAY",
		Status:        "Completed",
		Amount:        decimal.NewFromInt(250000),
	}, nil)
	uc.On("GetStatus", mock.Anything, "EVH404", testUser).Return(nil, billing.ErrPaymentNotFound)
	router := newPaymentRouter(uc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/EVH1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Completed", decodeResponse(t, w).Data.(map[string]interface{})["status"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/EVH404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
