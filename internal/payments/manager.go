package payments

import (
	"context"
	"sort"
)

type Manager struct {
	gateways map[string]PaymentGatewayAdapter
}

func NewManager(adapters ...PaymentGatewayAdapter) *Manager {
	m := &Manager{gateways: make(map[string]PaymentGatewayAdapter)}
	for _, a := range adapters {
		m.Register(a)
	}
	return m
}

func (m *Manager) Register(gateway PaymentGatewayAdapter) {
	m.gateways[gateway.Name()] = gateway
}

func (m *Manager) Gateway(name string) (PaymentGatewayAdapter, error) {
	gateway, ok := m.gateways[name]
	if !ok {
		return nil, validationf("unsupported gateway: %s", name)
	}
	return gateway, nil
}

// Names lists registered gateways in a stable order.
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.gateways))
	for name := range m.gateways {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) CreateOrder(ctx context.Context, gateway string, req OrderRequest) (OrderRef, error) {
	g, err := m.Gateway(gateway)
	if err != nil {
		return OrderRef{}, err
	}
	return g.CreateOrder(ctx, req)
}

func (m *Manager) Verify(ctx context.Context, gateway string, req VerifyRequest) (VerificationResult, error) {
	g, err := m.Gateway(gateway)
	if err != nil {
		return VerificationResult{Gateway: gateway}, err
	}
	return g.Verify(ctx, req)
}
