package checkout

import (
	"context"
	"errors"
	"fmt"
)

type State string

const (
	Idle          State = "idle"
	IntentCreated State = "intent_created"
	Collecting    State = "collecting"
	Confirming    State = "confirming"
	Verifying     State = "verifying"
	Succeeded     State = "succeeded"
	Failed        State = "failed"
)

type Method string

const (
	Card   Method = "stripe"
	Wallet Method = "paypal"
)

var (
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrInvalidPackage    = errors.New("package needs an id and a positive price")
	ErrMissingUser       = errors.New("checkout needs a signed-in user")
	ErrNotSettled        = errors.New("payment was not completed")
)

// Package is what the buyer picked on the checkout page.
type Package struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Credits float64 `json:"xce_amount"`
}

// Intent is the provider-side handle created for one attempt.
type Intent struct {
	PaymentID    string `json:"paymentId"`
	ClientSecret string `json:"clientSecret,omitempty"`
	ApproveURL   string `json:"approveUrl,omitempty"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Confirmation is the provider's answer to a confirm or capture.
type Confirmation struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

// Settled reports whether the provider status lets checkout move on to
// verification: "succeeded" for cards, "COMPLETED" for wallet captures.
func (c Confirmation) Settled() bool {
	return c.Status == "succeeded" || c.Status == "COMPLETED"
}

type VerifyRequest struct {
	PaymentID string `json:"paymentId"`
	UserID    string `json:"userId"`
	PackageID string `json:"packageId"`
}

type Receipt struct {
	PaymentID string `json:"paymentId"`
	PackageID string `json:"packageId"`
	Credits   int64  `json:"credits"`
	Reference string `json:"reference,omitempty"`
}

// Provider is one payment method as seen by the coordinator.
type Provider interface {
	Method() Method
	CreateIntent(ctx context.Context, pkg Package, amount int64) (*Intent, error)
	Confirm(ctx context.Context, intent Intent, paymentMethod string) (*Confirmation, error)
}

// Verifier is the server-side check that credits the ledger.
type Verifier interface {
	Verify(ctx context.Context, method Method, req VerifyRequest) (*Receipt, error)
}

// PaymentProviderError is any failure talking to the card or wallet provider.
type PaymentProviderError struct {
	Method Method
	Stage  string
	Err    error
}

func (e *PaymentProviderError) Error() string {
	return fmt.Sprintf("%s payment failed during %s: %v", e.Method, e.Stage, e.Err)
}

func (e *PaymentProviderError) Unwrap() error { return e.Err }

// VerificationError means the provider took the payment but crediting
// failed. Money may have moved, so the message points the user at support.
type VerificationError struct {
	PaymentID string
	Err       error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("payment %s was received but credits could not be added, please contact support: %v", e.PaymentID, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }
