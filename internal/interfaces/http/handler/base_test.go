package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invoice not found", billing.ErrInvoiceNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"event not found", planning.ErrEventNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"missing catalog service", billing.NewReferenceNotFoundError("service", "svc-1"), http.StatusUnprocessableEntity, "REFERENCE_NOT_FOUND"},
		{"forbidden", planning.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"already paid", billing.ErrAlreadyPaid, http.StatusConflict, "ALREADY_PAID"},
		{"invalid status", billing.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
		{"invalid amount", billing.ErrInvalidAmount, http.StatusUnprocessableEntity, "INVALID_AMOUNT"},
		{"gateway unavailable", billing.ErrGatewayUnavailable, http.StatusBadGateway, "GATEWAY_UNAVAILABLE"},
		{"gateway not supported", billing.ErrGatewayNotRegistered, http.StatusBadRequest, "GATEWAY_NOT_SUPPORTED"},
		{"has payments", billing.ErrInvoiceHasPayments, http.StatusConflict, "INVOICE_HAS_PAYMENTS"},
		{"wrapped domain error", fmt.Errorf("loading: %w", billing.ErrPaymentNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"lock contention", fmt.Errorf("invoice:event:e1: %w", shared.ErrLockNotAcquired), http.StatusServiceUnavailable, "LOCK_TIMEOUT"},
		{"unknown", errors.New("pq: connection reset by peer"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.RequestID())
			router.GET("/x", func(c *gin.Context) {
				(&BaseHandler{}).HandleError(c, tt.err)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.Error.RequestID)
			if tt.wantCode == "INTERNAL_ERROR" {
				assert.NotContains(t, resp.Error.Message, "pq:", "driver details stay in the logs")
			}
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	(&BaseHandler{}).HandleError(c, nil)
	assert.False(t, c.Writer.Written())
}

func TestBaseHandler_ParseUUIDParam(t *testing.T) {
	router := gin.New()
	router.GET("/invoices/:id", func(c *gin.Context) {
		id, ok := (&BaseHandler{}).ParseUUIDParam(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decodeResponse(t, w).Error.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/7f0c0f2e-3a1b-4c9d-9e8f-1a2b3c4d5e6f", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7f0c0f2e-3a1b-4c9d-9e8f-1a2b3c4d5e6f", w.Body.String())
}
