package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeProvider struct {
	method     Method
	amounts    []int64
	intentErr  error
	status     string
	confirmErr error
}

func (p *fakeProvider) Method() Method {
	if p.method == "" {
		return Card
	}
	return p.method
}

func (p *fakeProvider) CreateIntent(ctx context.Context, pkg Package, amount int64) (*Intent, error) {
	p.amounts = append(p.amounts, amount)
	if p.intentErr != nil {
		return nil, p.intentErr
	}
	return &Intent{PaymentID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: "usd"}, nil
}

func (p *fakeProvider) Confirm(ctx context.Context, intent Intent, paymentMethod string) (*Confirmation, error) {
	if p.confirmErr != nil {
		return nil, p.confirmErr
	}
	status := p.status
	if status == "" {
		status = "succeeded"
	}
	return &Confirmation{PaymentID: intent.PaymentID, Status: status}, nil
}

// fakeLedger credits packages by id and records every call it gets.
type fakeLedger struct {
	credits  map[string]int64
	calls    []VerifyRequest
	reject   error
	balances map[string]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{credits: map[string]int64{"p1": 500}, balances: map[string]int64{}}
}

func (l *fakeLedger) Verify(ctx context.Context, method Method, req VerifyRequest) (*Receipt, error) {
	l.calls = append(l.calls, req)
	if l.reject != nil {
		return nil, l.reject
	}
	c := l.credits[req.PackageID]
	l.balances[req.UserID] += c
	return &Receipt{PaymentID: req.PaymentID, PackageID: req.PackageID, Credits: c}, nil
}

var p1 = Package{ID: "p1", Name: "Starter", Price: 4.99, Credits: 500}

func TestCheckoutHappyPath(t *testing.T) {
	prov := &fakeProvider{}
	ledger := newFakeLedger()
	a := NewAttempt(prov, ledger, nil)

	intent, err := a.Begin(context.Background(), p1, "user-1")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if intent.Amount != 499 || prov.amounts[0] != 499 {
		t.Errorf("requested amount = %v, want 499", prov.amounts)
	}
	if a.State() != IntentCreated {
		t.Fatalf("state = %s, want %s", a.State(), IntentCreated)
	}

	if err := a.Collect(); err != nil {
		t.Fatal(err)
	}
	receipt, err := a.Submit(context.Background(), "pm_card_visa")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if a.State() != Succeeded {
		t.Errorf("state = %s, want %s", a.State(), Succeeded)
	}

	if len(ledger.calls) != 1 {
		t.Fatalf("ledger called %d times, want 1", len(ledger.calls))
	}
	call := ledger.calls[0]
	if call.PaymentID != "pi_1" || call.PackageID != "p1" || call.UserID != "user-1" {
		t.Errorf("verify request = %+v", call)
	}
	if receipt.Credits != 500 || ledger.balances["user-1"] != 500 {
		t.Errorf("credited %d (balance %d), want 500", receipt.Credits, ledger.balances["user-1"])
	}
}

func TestCheckoutVerificationFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.reject = errors.New("verification endpoint returned 500")
	a := NewAttempt(&fakeProvider{}, ledger, nil)

	if _, err := a.Begin(context.Background(), p1, "user-1"); err != nil {
		t.Fatal(err)
	}
	if err := a.Collect(); err != nil {
		t.Fatal(err)
	}

	_, err := a.Submit(context.Background(), "pm_card_visa")
	var ve *VerificationError
	if !errors.As(err, &ve) {
		t.Fatalf("Submit() error = %v, want *VerificationError", err)
	}
	if !strings.Contains(err.Error(), "contact support") {
		t.Errorf("message %q should point to support", err.Error())
	}

	if a.State() != Failed {
		t.Errorf("state = %s, want %s", a.State(), Failed)
	}
	if len(ledger.calls) != 1 {
		t.Errorf("ledger called %d times, want exactly 1", len(ledger.calls))
	}
	if ledger.balances["user-1"] != 0 {
		t.Error("package must stay uncredited")
	}
	if a.View().Reason == "" {
		t.Error("failed attempt should carry a reason")
	}
}

func TestCheckoutProviderFailures(t *testing.T) {
	tests := []struct {
		name string
		prov *fakeProvider
	}{
		{"confirm error", &fakeProvider{confirmErr: errors.New("card declined")}},
		{"not settled", &fakeProvider{status: "requires_action"}},
		{"wallet not captured", &fakeProvider{method: Wallet, status: "APPROVED"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger()
			a := NewAttempt(tt.prov, ledger, nil)
			if _, err := a.Begin(context.Background(), p1, "u"); err != nil {
				t.Fatal(err)
			}
			_ = a.Collect()

			_, err := a.Submit(context.Background(), "")
			var pe *PaymentProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("Submit() error = %v, want *PaymentProviderError", err)
			}
			if a.State() != Failed {
				t.Errorf("state = %s, want %s", a.State(), Failed)
			}
			if len(ledger.calls) != 0 {
				t.Error("verification must not run without a settled payment")
			}
		})
	}
}

func TestWalletCompletedProceeds(t *testing.T) {
	a := NewAttempt(&fakeProvider{method: Wallet, status: "COMPLETED"}, newFakeLedger(), nil)
	if _, err := a.Begin(context.Background(), p1, "u"); err != nil {
		t.Fatal(err)
	}
	_ = a.Collect()
	if _, err := a.Submit(context.Background(), ""); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
}

func TestBeginFailureStaysIdle(t *testing.T) {
	prov := &fakeProvider{intentErr: errors.New("stripe unavailable")}
	a := NewAttempt(prov, newFakeLedger(), nil)

	_, err := a.Begin(context.Background(), p1, "u")
	var pe *PaymentProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Begin() error = %v", err)
	}
	if a.State() != Idle || a.View().Reason == "" {
		t.Errorf("view = %+v, want idle with reason", a.View())
	}

	if _, err := a.Begin(context.Background(), Package{ID: "p0"}, "u"); !errors.Is(err, ErrInvalidPackage) {
		t.Errorf("Begin(zero price) error = %v", err)
	}
	if _, err := a.Begin(context.Background(), p1, ""); !errors.Is(err, ErrMissingUser) {
		t.Errorf("Begin(no user) error = %v", err)
	}
}

func TestTransitions(t *testing.T) {
	a := NewAttempt(&fakeProvider{}, newFakeLedger(), nil)

	if err := a.Collect(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Collect() from idle error = %v", err)
	}
	if _, err := a.Submit(context.Background(), ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Submit() from idle error = %v", err)
	}

	if _, err := a.Begin(context.Background(), p1, "u"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Begin(context.Background(), p1, "u"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Begin() error = %v", err)
	}
	if err := a.Reset(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Reset() mid-attempt error = %v", err)
	}

	if err := a.Cancel("changed my mind"); err != nil {
		t.Fatal(err)
	}
	if v := a.View(); v.State != Failed || v.Reason != "changed my mind" {
		t.Errorf("view after cancel = %+v", v)
	}

	if err := a.Reset(); err != nil {
		t.Fatal(err)
	}
	if v := a.View(); v.State != Idle || v.Intent != nil || v.Reason != "" {
		t.Errorf("view after reset = %+v", v)
	}
}
