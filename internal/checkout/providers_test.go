package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"celflicks/internal/domain/ledger"
	"celflicks/internal/payments"
	"celflicks/internal/purchases"
)

type memLedger struct {
	credited map[string]int64
	amounts  []int64
}

func (m *memLedger) GetPackage(ctx context.Context, id string) (*ledger.Package, error) {
	if id != "p1" {
		return nil, ledger.ErrPackageNotFound
	}
	return &ledger.Package{ID: "p1", Name: "Starter", PriceUSD: 4.99, XCEAmount: 500}, nil
}

func (m *memLedger) ListPackages(ctx context.Context) ([]ledger.Package, error) { return nil, nil }

func (m *memLedger) RecordStripePayment(ctx context.Context, p *ledger.StripePayment) (*ledger.StripePayment, error) {
	m.amounts = append(m.amounts, p.Amount)
	return p, nil
}

func (m *memLedger) SetStripePaymentStatus(ctx context.Context, intentID, status string) error {
	return nil
}

func (m *memLedger) CompletePurchase(ctx context.Context, userID, packageID, paymentID string, amount int64) (int64, error) {
	m.credited[paymentID] = amount
	return 7, nil
}

func (m *memLedger) Balance(ctx context.Context, userID string) (*ledger.Wallet, error) {
	return &ledger.Wallet{UserID: userID}, nil
}

type settledGateway struct {
	requested []int64
}

func (g *settledGateway) InitiatePayment(ctx context.Context, req payments.PaymentRequest) (payments.PaymentResponse, error) {
	g.requested = append(g.requested, req.AmountMinor)
	return payments.PaymentResponse{ProviderRef: "pi_9", ClientSecret: "pi_9_secret"}, nil
}

func (g *settledGateway) ConfirmPayment(ctx context.Context, req payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	return payments.PaymentVerifyResponse{Success: true, State: "succeeded", ProviderRef: req.ProviderRef}, nil
}

func (g *settledGateway) VerifyPayment(ctx context.Context, req payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	return payments.PaymentVerifyResponse{Success: true, State: "succeeded", ProviderRef: req.ProviderRef, Reference: "p1", AmountMinor: 499, Currency: "usd"}, nil
}

func TestCardCheckoutThroughPurchaseFlow(t *testing.T) {
	l := &memLedger{credited: map[string]int64{}}
	gw := &settledGateway{}
	m := payments.NewPaymentManager()
	m.RegisterGateway(payments.MethodStripe, gw)

	svc, err := purchases.NewService(l, m, nil, "salt", nil)
	if err != nil {
		t.Fatal(err)
	}

	a := NewAttempt(CardProvider(svc), NewLedgerVerifier(svc), nil)
	if _, err := a.Begin(context.Background(), p1, "user-1"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := a.Collect(); err != nil {
		t.Fatal(err)
	}
	receipt, err := a.Submit(context.Background(), "pm_card_visa")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if gw.requested[0] != 499 || l.amounts[0] != 499 {
		t.Errorf("intent amount = %v / recorded %v, want 499", gw.requested, l.amounts)
	}
	if l.credited["pi_9"] != 500 || receipt.Credits != 500 {
		t.Errorf("ledger credit = %d, receipt = %d, want 500", l.credited["pi_9"], receipt.Credits)
	}
	if receipt.Reference == "" {
		t.Error("receipt should carry a reference")
	}
}

// pendingCapture is a wallet whose order completes before its capture does.
type pendingCapture struct {
	capture  string
	verified int
}

func (g *pendingCapture) InitiatePayment(ctx context.Context, req payments.PaymentRequest) (payments.PaymentResponse, error) {
	return payments.PaymentResponse{ProviderRef: "ORDER-1", ApproveURL: "https://paypal.test/approve"}, nil
}

func (g *pendingCapture) ConfirmPayment(ctx context.Context, req payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	return payments.PaymentVerifyResponse{State: "COMPLETED", CaptureStatus: g.capture, ProviderRef: req.ProviderRef}, nil
}

func (g *pendingCapture) VerifyPayment(ctx context.Context, req payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	g.verified++
	return payments.PaymentVerifyResponse{State: "COMPLETED", CaptureStatus: g.capture, ProviderRef: req.ProviderRef}, nil
}

func TestWalletUnsettledCaptureFailsAtConfirmation(t *testing.T) {
	tests := []struct {
		capture string
		status  string
	}{
		{"PENDING", "CAPTURE_PENDING"},
		{"DECLINED", "CAPTURE_DECLINED"},
		{"", "CAPTURE_MISSING"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			l := &memLedger{credited: map[string]int64{}}
			gw := &pendingCapture{capture: tt.capture}
			m := payments.NewPaymentManager()
			m.RegisterGateway(payments.MethodPayPal, gw)
			svc, err := purchases.NewService(l, m, nil, "salt", nil)
			if err != nil {
				t.Fatal(err)
			}

			a := NewAttempt(WalletProvider(svc), NewLedgerVerifier(svc), nil)
			if _, err := a.Begin(context.Background(), p1, "user-1"); err != nil {
				t.Fatalf("Begin() error = %v", err)
			}
			_ = a.Collect()

			_, err = a.Submit(context.Background(), "")
			var pe *PaymentProviderError
			if !errors.As(err, &pe) || !errors.Is(err, ErrNotSettled) {
				t.Fatalf("Submit() error = %v, want unsettled *PaymentProviderError", err)
			}
			if !strings.Contains(err.Error(), tt.status) {
				t.Errorf("error %q does not name %s", err, tt.status)
			}
			if gw.verified != 0 || len(l.credited) != 0 {
				t.Error("an unsettled capture must not reach verification")
			}
		})
	}
}
