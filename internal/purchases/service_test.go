package purchases

import (
	"context"
	"errors"
	"sync"
	"testing"

	"celflicks/internal/domain/ledger"
	"celflicks/internal/payments"
)

type fakeLedger struct {
	mu        sync.Mutex
	packages  map[string]ledger.Package
	recorded  []ledger.StripePayment
	statuses  map[string]string
	credited  map[string]int64 // payment id -> credits
	balances  map[string]int64
	recordErr error
	creditErr error
	nextID    int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		packages: map[string]ledger.Package{
			"p1": {ID: "p1", Name: "Starter", PriceUSD: 4.99, XCEAmount: 500},
			"p2": {ID: "p2", Name: "Odd", PriceUSD: 9.99, XCEAmount: 1000.75},
		},
		statuses: map[string]string{},
		credited: map[string]int64{},
		balances: map[string]int64{},
	}
}

func (f *fakeLedger) GetPackage(ctx context.Context, id string) (*ledger.Package, error) {
	p, ok := f.packages[id]
	if !ok {
		return nil, ledger.ErrPackageNotFound
	}
	return &p, nil
}

func (f *fakeLedger) ListPackages(ctx context.Context) ([]ledger.Package, error) {
	out := []ledger.Package{}
	for _, p := range f.packages {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeLedger) RecordStripePayment(ctx context.Context, p *ledger.StripePayment) (*ledger.StripePayment, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.recorded = append(f.recorded, *p)
	return p, nil
}

func (f *fakeLedger) SetStripePaymentStatus(ctx context.Context, intentID, status string) error {
	f.statuses[intentID] = status
	return nil
}

func (f *fakeLedger) CompletePurchase(ctx context.Context, userID, packageID, paymentID string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditErr != nil {
		return 0, f.creditErr
	}
	if _, dup := f.credited[paymentID]; dup {
		return 0, ledger.ErrDuplicatePayment
	}
	f.credited[paymentID] = amount
	f.balances[userID] += amount
	f.nextID++
	return f.nextID, nil
}

func (f *fakeLedger) Balance(ctx context.Context, userID string) (*ledger.Wallet, error) {
	return &ledger.Wallet{UserID: userID, Balance: f.balances[userID]}, nil
}

type fakeGateway struct {
	initiated []payments.PaymentRequest
	verify    payments.PaymentVerifyResponse
	verifyErr error
}

func (g *fakeGateway) InitiatePayment(ctx context.Context, req payments.PaymentRequest) (payments.PaymentResponse, error) {
	g.initiated = append(g.initiated, req)
	return payments.PaymentResponse{ProviderRef: "pi_1", ClientSecret: "pi_1_secret"}, nil
}

func (g *fakeGateway) ConfirmPayment(ctx context.Context, req payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	return g.verify, g.verifyErr
}

func (g *fakeGateway) VerifyPayment(ctx context.Context, req payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	return g.verify, g.verifyErr
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) Send(templateFile, username, email string, data any) (int, error) {
	m.sent = append(m.sent, email)
	return 200, nil
}

func newTestService(t *testing.T) (*Service, *fakeLedger, *fakeGateway, *fakeMailer) {
	t.Helper()
	l := newFakeLedger()
	gw := &fakeGateway{verify: payments.PaymentVerifyResponse{Success: true, State: "succeeded", Reference: "p1", AmountMinor: 499, Currency: "usd"}}
	m := payments.NewPaymentManager()
	m.RegisterGateway(payments.MethodStripe, gw)
	mail := &fakeMailer{}
	svc, err := NewService(l, m, mail, "test-salt", nil)
	if err != nil {
		t.Fatal(err)
	}
	return svc, l, gw, mail
}

func TestMinorUnits(t *testing.T) {
	tests := map[float64]int64{4.99: 499, 0.1: 10, 19.99: 1999, 1: 100}
	for price, want := range tests {
		if got := MinorUnits(price); got != want {
			t.Errorf("MinorUnits(%v) = %d, want %d", price, got, want)
		}
	}
}

func TestCreateIntent(t *testing.T) {
	svc, l, gw, _ := newTestService(t)

	intent, err := svc.CreateIntent(context.Background(), payments.MethodStripe, IntentRequest{PackageID: "p1", AmountMinor: 499})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	if intent.ClientSecret != "pi_1_secret" || intent.Currency != "usd" {
		t.Errorf("CreateIntent() = %+v", intent)
	}
	if gw.initiated[0].AmountMinor != 499 || gw.initiated[0].Reference != "p1" {
		t.Errorf("gateway request = %+v", gw.initiated[0])
	}
	if len(l.recorded) != 1 || l.recorded[0].PaymentIntentID != "pi_1" {
		t.Errorf("recorded = %+v", l.recorded)
	}

	t.Run("record failure is not fatal", func(t *testing.T) {
		l.recordErr = errors.New("db down")
		defer func() { l.recordErr = nil }()
		if _, err := svc.CreateIntent(context.Background(), payments.MethodStripe, IntentRequest{PackageID: "p1", AmountMinor: 499}); err != nil {
			t.Fatalf("CreateIntent() error = %v", err)
		}
	})

	cases := []struct {
		name string
		req  IntentRequest
		want error
	}{
		{"missing package", IntentRequest{AmountMinor: 499}, ErrInvalidRequest},
		{"zero amount", IntentRequest{PackageID: "p1"}, ErrInvalidRequest},
		{"unknown package", IntentRequest{PackageID: "nope", AmountMinor: 499}, ErrInvalidPackage},
		{"wrong amount", IntentRequest{PackageID: "p1", AmountMinor: 100}, ErrAmountMismatch},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateIntent(context.Background(), payments.MethodStripe, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("CreateIntent() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyCreditsPackage(t *testing.T) {
	svc, l, _, mail := newTestService(t)

	receipt, err := svc.Verify(context.Background(), payments.MethodStripe, VerifyRequest{
		PaymentID: "pi_1",
		UserID:    "user-1",
		PackageID: "p1",
		Email:     "buyer@celflicks.test",
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if receipt.Credits != 500 || l.credited["pi_1"] != 500 {
		t.Errorf("credits = %d, ledger = %d, want 500", receipt.Credits, l.credited["pi_1"])
	}
	if l.statuses["pi_1"] != "succeeded" {
		t.Errorf("stripe payment status = %q", l.statuses["pi_1"])
	}
	if len(receipt.Reference) < 8 {
		t.Errorf("reference %q shorter than 8", receipt.Reference)
	}
	if id, err := svc.DecodeReference(receipt.Reference); err != nil || id != 1 {
		t.Errorf("DecodeReference() = %d, %v", id, err)
	}
	if len(mail.sent) != 1 {
		t.Errorf("receipts sent = %d, want 1", len(mail.sent))
	}

	_, err = svc.Verify(context.Background(), payments.MethodStripe, VerifyRequest{PaymentID: "pi_1", UserID: "user-1", PackageID: "p1"})
	if !errors.Is(err, ErrAlreadyCredited) {
		t.Errorf("second Verify() error = %v, want ErrAlreadyCredited", err)
	}
	if l.balances["user-1"] != 500 {
		t.Errorf("balance = %d after duplicate verify, want 500", l.balances["user-1"])
	}
}

func TestVerifyFloorsCredits(t *testing.T) {
	svc, l, gw, _ := newTestService(t)
	gw.verify.Reference = "p2"
	gw.verify.AmountMinor = 999

	receipt, err := svc.Verify(context.Background(), payments.MethodStripe, VerifyRequest{PaymentID: "pi_2", UserID: "u", PackageID: "p2"})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Credits != 1000 || l.credited["pi_2"] != 1000 {
		t.Errorf("credits = %d, want 1000", receipt.Credits)
	}
}

func TestVerifyRejects(t *testing.T) {
	tests := []struct {
		name   string
		verify payments.PaymentVerifyResponse
		req    VerifyRequest
		want   error
	}{
		{"not settled", payments.PaymentVerifyResponse{Success: false, State: "processing"}, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "p1"}, ErrPaymentNotCompleted},
		{"other package", payments.PaymentVerifyResponse{Success: true, Reference: "p2"}, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "p1"}, ErrPackageMismatch},
		{"missing user", payments.PaymentVerifyResponse{Success: true}, VerifyRequest{PaymentID: "pi", PackageID: "p1"}, ErrInvalidRequest},
		{"unknown package", payments.PaymentVerifyResponse{Success: true}, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "zz"}, ErrInvalidPackage},
		{"underpaid without reference", payments.PaymentVerifyResponse{Success: true, State: "COMPLETED", AmountMinor: 1, Currency: "USD"}, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "p2"}, ErrAmountMismatch},
		{"overpaid", payments.PaymentVerifyResponse{Success: true, AmountMinor: 5000, Currency: "usd", Reference: "p1"}, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "p1"}, ErrAmountMismatch},
		{"other currency", payments.PaymentVerifyResponse{Success: true, AmountMinor: 499, Currency: "EUR"}, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "p1"}, ErrAmountMismatch},
		{"no amount reported", payments.PaymentVerifyResponse{Success: true, Reference: "p1"}, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "p1"}, ErrAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, l, gw, _ := newTestService(t)
			gw.verify = tt.verify

			if _, err := svc.Verify(context.Background(), payments.MethodStripe, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.want)
			}
			if len(l.credited) != 0 {
				t.Error("ledger must not be credited")
			}
		})
	}
}

func TestVerifyCreditFailure(t *testing.T) {
	svc, l, _, _ := newTestService(t)
	l.creditErr = errors.New("function complete_xce_purchase does not exist")

	_, err := svc.Verify(context.Background(), payments.MethodStripe, VerifyRequest{PaymentID: "pi", UserID: "u", PackageID: "p1"})
	if !errors.Is(err, ErrCreditFailed) {
		t.Fatalf("Verify() error = %v, want ErrCreditFailed", err)
	}
}
