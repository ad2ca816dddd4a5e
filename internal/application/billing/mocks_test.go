package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
)

// =============================================================================
// Repository mocks
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByEventID(ctx context.Context, eventID string) (*billing.Invoice, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) CountByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SaveOutcome(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) error {
	return m.Called(ctx, payment, invoice).Error(0)
}

type MockCallbackLogRepository struct {
	mock.Mock
}

func (m *MockCallbackLogRepository) Record(ctx context.Context, log *billing.CallbackLog) error {
	return m.Called(ctx, log).Error(0)
}

// =============================================================================
// Reader mocks
// =============================================================================

type MockEventReader struct {
	mock.Mock
}

func (m *MockEventReader) FindByID(ctx context.Context, id string) (*planning.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.Event), args.Error(1)
}

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) FindByIDs(ctx context.Context, ids []string) (map[string]*planning.CatalogService, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*planning.CatalogService), args.Error(1)
}

// =============================================================================
// Gateway mock
// =============================================================================

type MockPaymentGateway struct {
	mock.Mock
	gatewayType billing.GatewayType
}

func newMockGateway(t billing.GatewayType) *MockPaymentGateway {
	return &MockPaymentGateway{gatewayType: t}
}

func (m *MockPaymentGateway) GatewayType() billing.GatewayType {
	return m.gatewayType
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req *billing.CreatePaymentRequest) (*billing.CreatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CreatePaymentResponse), args.Error(1)
}

func (m *MockPaymentGateway) VerifyCallback(ctx context.Context, payload []byte) (*billing.GatewayCallback, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.GatewayCallback), args.Error(1)
}

func (m *MockPaymentGateway) GenerateCallbackResponse(callback *billing.GatewayCallback, outcome billing.CallbackOutcome, message string) []byte {
	return []byte(`{"outcome":"` + string(outcome) + `"}`)
}

func (m *MockPaymentGateway) CallbackContentType() string {
	return "application/json"
}

// =============================================================================
// Helpers
// =============================================================================

type fixedTransactionIDs struct {
	mu   sync.Mutex
	next int
}

func (f *fixedTransactionIDs) NextTransactionID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return fmt.Sprintf("EVH%d", f.next)
}

// localLocker is a process-local KeyedLocker for tests
type localLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
	keys  []string
}

func newLocalLocker() *localLocker {
	return &localLocker{locks: make(map[string]chan struct{})}
}

func (l *localLocker) Acquire(ctx context.Context, key string, _, wait time.Duration) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.keys = append(l.keys, key)
	l.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, shared.ErrLockNotAcquired
	}
	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}

func (l *localLocker) Close() error { return nil }

func (l *localLocker) acquiredKeys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.keys...)
}

func sampleEvent(owner string, public bool) *planning.Event {
	return &planning.Event{
		ID:        "evt-1",
		Name:      "Wedding",
		CreatedBy: owner,
		IsPublic:  public,
		Services: []planning.ServiceLine{
			{ServiceID: "svc-a", Quantity: 2},
			{ServiceID: "svc-b", Quantity: 1},
		},
	}
}

func sampleCatalog() map[string]*planning.CatalogService {
	return map[string]*planning.CatalogService{
		"svc-a": {ID: "svc-a", Name: "Catering", Price: decimal.NewFromInt(100)},
		"svc-b": {ID: "svc-b", Name: "Flowers", Price: decimal.NewFromInt(50)},
	}
}

func sampleInvoice() *billing.Invoice {
	inv, err := billing.NewInvoice("evt-1", []billing.InvoiceLine{
		{ServiceID: "svc-a", ServiceName: "Catering", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{ServiceID: "svc-b", ServiceName: "Flowers", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	})
	if err != nil {
		panic(err)
	}
	return inv
}

var (
	owner    = planning.Requester{ID: "user-1", Role: planning.RoleUser}
	stranger = planning.Requester{ID: "user-2", Role: planning.RoleUser}
	admin    = planning.Requester{ID: "admin-1", Role: planning.RoleAdmin}
)
