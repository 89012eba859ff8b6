package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeAdapter struct {
	api *client.API
}

// NewStripeAdapter builds the adapter on a stripe-go client. backends may be
// nil to talk to api.stripe.com.
func NewStripeAdapter(secretKey string, backends *stripe.Backends) *StripeAdapter {
	return &StripeAdapter{api: client.New(secretKey, backends)}
}

func (s *StripeAdapter) InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	if req.AmountMinor <= 0 {
		return PaymentResponse{}, fmt.Errorf("stripe intent amount must be positive, got %d", req.AmountMinor)
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.AddMetadata("package_id", req.Reference)
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("stripe create intent: %w", err)
	}

	return PaymentResponse{
		ProviderRef:  pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (s *StripeAdapter) ConfirmPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	id := strings.TrimSpace(req.ProviderRef)
	if id == "" {
		return PaymentVerifyResponse{}, fmt.Errorf("stripe confirm requires a payment intent id")
	}

	params := &stripe.PaymentIntentConfirmParams{}
	if req.PaymentMethod != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethod)
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Confirm(id, params)
	if err != nil {
		return PaymentVerifyResponse{}, fmt.Errorf("stripe confirm intent: %w", err)
	}
	return intentResponse(pi), nil
}

func (s *StripeAdapter) VerifyPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	id := strings.TrimSpace(req.ProviderRef)
	if id == "" {
		return PaymentVerifyResponse{}, fmt.Errorf("stripe verify requires a payment intent id")
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return PaymentVerifyResponse{}, fmt.Errorf("stripe retrieve intent: %w", err)
	}
	return intentResponse(pi), nil
}

// Only "succeeded" counts; processing and requires_* are not terminal.
func intentResponse(pi *stripe.PaymentIntent) PaymentVerifyResponse {
	state := string(pi.Status)

	terminal := false
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusCanceled:
		terminal = true
	}

	return PaymentVerifyResponse{
		Success:     pi.Status == stripe.PaymentIntentStatusSucceeded,
		State:       state,
		Terminal:    terminal,
		ProviderRef: pi.ID,
		AmountMinor: pi.Amount,
		Currency:    string(pi.Currency),
		Reference:   pi.Metadata["package_id"],
		Raw:         pi,
	}
}
