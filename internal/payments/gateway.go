package payments

import "context"

// PaymentGateway defines a common interface for all payment providers
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error)
	// ConfirmPayment completes a payment the buyer approved: confirm for a
	// card intent, capture for a wallet order.
	ConfirmPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error)
	// VerifyPayment re-reads the payment from the provider; it never moves money.
	VerifyPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error)
}
