package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingapp "github.com/eventhub/backend/internal/application/billing"
	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/infrastructure/auth"
	"github.com/eventhub/backend/internal/infrastructure/config"
	"github.com/eventhub/backend/internal/interfaces/http/handler"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())

	var order []string
	r.Use(func(c *gin.Context) { order = append(order, "router"); c.Next() })

	group := NewDomainGroup("events", "/events").Use(func(c *gin.Context) {
		order = append(order, "group")
		c.Next()
	})
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	group.Group("nested", "/nested").DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/events/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, []string{"router", "group"}, order)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v2/events/nested/7", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("invoices", "/invoices")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("", ok).POST("", ok).PUT("/:id", ok).DELETE("/:id", ok).Handle(http.MethodPatch, "/:id", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, "invoices", g.Name())
	assert.Equal(t, "/invoices", g.Prefix())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/invoices"},
		{http.MethodPost, "/api/v1/invoices"},
		{http.MethodPut, "/api/v1/invoices/1"},
		{http.MethodDelete, "/api/v1/invoices/1"},
		{http.MethodPatch, "/api/v1/invoices/1"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, tc.method)
		assert.Equal(t, tc.method, w.Body.String())
	}
}

type stubInvoices struct{}

func (stubInvoices) GetOrCreate(_ context.Context, eventID string, _ planning.Requester) (*billingapp.InvoiceResponse, error) {
	return &billingapp.InvoiceResponse{EventID: eventID, Status: "Pending"}, nil
}

func (stubInvoices) Get(context.Context, uuid.UUID, planning.Requester) (*billingapp.InvoiceResponse, error) {
	return nil, billing.ErrInvoiceNotFound
}

func (stubInvoices) List(context.Context, billingapp.ListInvoicesRequest, planning.Requester) (*shared.Paginated[billingapp.InvoiceResponse], error) {
	page := shared.NewPaginated([]billingapp.InvoiceResponse{}, 0, 1, 20)
	return &page, nil
}

func (stubInvoices) UpdateStatus(context.Context, uuid.UUID, string, planning.Requester) (*billingapp.InvoiceResponse, error) {
	return nil, billing.ErrInvoiceNotFound
}

func (stubInvoices) Delete(context.Context, uuid.UUID, planning.Requester) error {
	return nil
}

type stubCallbacks struct{}

func (stubCallbacks) ProcessCallback(_ context.Context, gatewayType billing.GatewayType, _ []byte) (*billingapp.CallbackResult, error) {
	return &billingapp.CallbackResult{
		Outcome:         billing.CallbackOutcomeProcessed,
		GatewayResponse: []byte(`{"gateway":"` + gatewayType.String() + `"}`),
		ContentType:     "application/json",
	}, nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "router-test-secret", AccessTokenExpiration: time.Hour})
	engine := New(Config{
		HTTP:       config.HTTPConfig{MaxBodySize: 1 << 20},
		Swagger:    config.SwaggerConfig{Enabled: false},
		JWTService: jwtService,
		Handlers: Handlers{
			Invoices:  handler.NewInvoiceHandler(stubInvoices{}),
			Callbacks: handler.NewPaymentCallbackHandler(stubCallbacks{}),
			System:    handler.NewSystemHandler("EventHub", "test", nil),
		},
	})
	return engine, jwtService
}

func bearer(t *testing.T, svc *auth.JWTService, role planning.Role) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken("user-1", role)
	require.NoError(t, err)
	return middleware.BearerPrefix + token
}

func TestNew_Routes(t *testing.T) {
	engine, jwtService := newTestEngine(t)

	tests := []struct {
		name       string
		method     string
		path       string
		role       planning.Role
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"invoice requires auth", http.MethodGet, "/api/v1/events/e1/invoice", "", http.StatusUnauthorized},
		{"invoice for user", http.MethodGet, "/api/v1/events/e1/invoice", planning.RoleUser, http.StatusOK},
		{"invoice by id", http.MethodGet, "/api/v1/invoices/" + uuid.NewString(), planning.RoleUser, http.StatusNotFound},
		{"list needs admin", http.MethodGet, "/api/v1/invoices", planning.RoleUser, http.StatusForbidden},
		{"list for admin", http.MethodGet, "/api/v1/invoices", planning.RoleAdmin, http.StatusOK},
		{"delete needs admin", http.MethodDelete, "/api/v1/invoices/" + uuid.NewString(), planning.RoleUser, http.StatusForbidden},
		{"delete for admin", http.MethodDelete, "/api/v1/invoices/" + uuid.NewString(), planning.RoleAdmin, http.StatusNoContent},
		{"momo callback is public", http.MethodPost, "/api/v1/payments/callback/momo", "", http.StatusOK},
		{"vnpay callback get", http.MethodGet, "/api/v1/payments/callback/vnpay?vnp_TxnRef=EVH1", "", http.StatusOK},
		{"vnpay callback post", http.MethodPost, "/api/v1/payments/callback/vnpay?vnp_TxnRef=EVH1", "", http.StatusOK},
		{"swagger disabled", http.MethodGet, "/swagger/index.html", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/v1/nothing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set(middleware.AuthHeaderKey, bearer(t, jwtService, tt.role))
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestNew_CallbackBodyIsGatewayShaped(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback/momo", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MOMO", body["gateway"])
}
