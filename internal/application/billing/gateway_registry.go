package billing

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/shared"
)

// GatewayRegistry holds the configured payment gateways by type
type GatewayRegistry struct {
	mu             sync.RWMutex
	gateways       map[billing.GatewayType]billing.PaymentGateway
	defaultGateway billing.GatewayType
}

// NewGatewayRegistry creates a registry with defaultGateway used when a caller names none
func NewGatewayRegistry(defaultGateway billing.GatewayType, gateways ...billing.PaymentGateway) *GatewayRegistry {
	r := &GatewayRegistry{
		gateways:       make(map[billing.GatewayType]billing.PaymentGateway, len(gateways)),
		defaultGateway: defaultGateway,
	}
	for _, gw := range gateways {
		r.Register(gw)
	}
	return r
}

// Register adds or replaces a gateway
func (r *GatewayRegistry) Register(gateway billing.PaymentGateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[gateway.GatewayType()] = gateway
}

// Get returns the gateway for a given type
func (r *GatewayRegistry) Get(gatewayType billing.GatewayType) (billing.PaymentGateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gw, ok := r.gateways[gatewayType]
	if !ok {
		return nil, shared.Wrap(billing.ErrGatewayNotRegistered, fmt.Sprintf("payment gateway %q is not configured", gatewayType))
	}
	return gw, nil
}

// Resolve returns the named gateway, or the default one when name is empty
func (r *GatewayRegistry) Resolve(name string) (billing.PaymentGateway, error) {
	if strings.TrimSpace(name) == "" {
		return r.Get(r.defaultGateway)
	}
	gatewayType, err := billing.ParseGatewayType(name)
	if err != nil {
		return nil, err
	}
	return r.Get(gatewayType)
}

// Types lists the registered gateway types in a stable order
func (r *GatewayRegistry) Types() []billing.GatewayType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]billing.GatewayType, 0, len(r.gateways))
	for t := range r.gateways {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
