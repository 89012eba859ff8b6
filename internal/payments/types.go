package payments

import "errors"

const (
	MethodStripe = "stripe"
	MethodPayPal = "paypal"
)

var ErrGatewayNotRegistered = errors.New("payment gateway not registered")

type PaymentRequest struct {
	Reference   string // package id
	AmountMinor int64  // cents
	Currency    string
	Description string
}

type PaymentResponse struct {
	ProviderRef  string // stripe intent id or paypal order id
	ClientSecret string // stripe only
	ApproveURL   string // paypal only
	Status       string
}

type PaymentVerifyRequest struct {
	ProviderRef   string
	PaymentMethod string // stripe payment method id used on confirm
}

type PaymentVerifyResponse struct {
	Success     bool
	State       string
	Terminal    bool
	ProviderRef string
	AmountMinor int64
	Currency    string
	Reference   string // package id carried by the provider, when it has one
	Raw         any

	// paypal only: status of the order's first capture, empty when none
	CaptureStatus string
}
