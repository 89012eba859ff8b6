package payments

import (
	"context"
	"fmt"
	"sort"
)

type PaymentManager struct {
	gateways map[string]PaymentGateway
}

func NewPaymentManager() *PaymentManager {
	return &PaymentManager{gateways: make(map[string]PaymentGateway)}
}

func (m *PaymentManager) RegisterGateway(name string, gateway PaymentGateway) {
	m.gateways[name] = gateway
}

func (m *PaymentManager) Gateway(method string) (PaymentGateway, error) {
	gateway, ok := m.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotRegistered, method)
	}
	return gateway, nil
}

// Methods lists registered gateway names in sorted order.
func (m *PaymentManager) Methods() []string {
	out := make([]string, 0, len(m.gateways))
	for name := range m.gateways {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *PaymentManager) InitiatePayment(ctx context.Context, method string, req PaymentRequest) (PaymentResponse, error) {
	gateway, err := m.Gateway(method)
	if err != nil {
		return PaymentResponse{}, err
	}
	return gateway.InitiatePayment(ctx, req)
}

func (m *PaymentManager) ConfirmPayment(ctx context.Context, method string, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	gateway, err := m.Gateway(method)
	if err != nil {
		return PaymentVerifyResponse{}, err
	}
	return gateway.ConfirmPayment(ctx, req)
}

func (m *PaymentManager) VerifyPayment(ctx context.Context, method string, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	gateway, err := m.Gateway(method)
	if err != nil {
		return PaymentVerifyResponse{}, err
	}
	return gateway.VerifyPayment(ctx, req)
}
