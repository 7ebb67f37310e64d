package payments

import "context"

// PaymentGatewayAdapter defines a common interface for all payment providers.
// Adding a gateway means adding an adapter; the verification contract does not change.
type PaymentGatewayAdapter interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (OrderRef, error)
	Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error)
}
