// Package checkout sequences one purchase attempt across a payment provider
// and the ledger verifier.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"celflicks/internal/purchases"

	"go.uber.org/zap"
)

// View is a read-only copy of an attempt's state.
type View struct {
	State   State    `json:"state"`
	Method  Method   `json:"method"`
	Reason  string   `json:"reason,omitempty"`
	Package *Package `json:"package,omitempty"`
	Intent  *Intent  `json:"intent,omitempty"`
	Receipt *Receipt `json:"receipt,omitempty"`
}

// Attempt is a single checkout. Transitions that need the network move to
// their in-progress state before the call, so a second Submit while one is in
// flight fails with ErrInvalidTransition.
type Attempt struct {
	provider Provider
	verifier Verifier
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	state   State
	reason  string
	pkg     *Package
	userID  string
	intent  *Intent
	receipt *Receipt
}

func NewAttempt(p Provider, v Verifier, logger *zap.SugaredLogger) *Attempt {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Attempt{provider: p, verifier: v, logger: logger, state: Idle}
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Attempt) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := View{State: a.state, Method: a.provider.Method(), Reason: a.reason}
	if a.pkg != nil {
		p := *a.pkg
		v.Package = &p
	}
	if a.intent != nil {
		i := *a.intent
		v.Intent = &i
	}
	if a.receipt != nil {
		r := *a.receipt
		v.Receipt = &r
	}
	return v
}

func (a *Attempt) transition(from ...State) error {
	for _, s := range from {
		if a.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: attempt is %s", ErrInvalidTransition, a.state)
}

// Begin requests an intent for pkg. On failure the attempt stays Idle with
// the error recorded as its reason.
func (a *Attempt) Begin(ctx context.Context, pkg Package, userID string) (*Intent, error) {
	a.mu.Lock()
	if err := a.transition(Idle); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		a.reason = ErrMissingUser.Error()
		a.mu.Unlock()
		return nil, ErrMissingUser
	}
	amount := purchases.MinorUnits(pkg.Price)
	if pkg.ID == "" || amount <= 0 {
		a.reason = ErrInvalidPackage.Error()
		a.mu.Unlock()
		return nil, ErrInvalidPackage
	}
	a.reason = ""
	a.mu.Unlock()

	intent, err := a.provider.CreateIntent(ctx, pkg, amount)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		perr := &PaymentProviderError{Method: a.provider.Method(), Stage: "intent creation", Err: err}
		a.reason = perr.Error()
		a.logger.Errorw("checkout intent creation failed", "package_id", pkg.ID, "error", err)
		return nil, perr
	}

	a.pkg = &pkg
	a.userID = userID
	a.intent = intent
	a.state = IntentCreated
	return intent, nil
}

// Collect marks the payment form as shown. No network call.
func (a *Attempt) Collect() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.transition(IntentCreated); err != nil {
		return err
	}
	a.state = Collecting
	return nil
}

// Submit confirms the payment with the provider and, if it settled, asks
// the verifier to credit the ledger.
func (a *Attempt) Submit(ctx context.Context, paymentMethod string) (*Receipt, error) {
	a.mu.Lock()
	if err := a.transition(Collecting); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	a.state = Confirming
	intent := *a.intent
	req := VerifyRequest{UserID: a.userID, PackageID: a.pkg.ID}
	a.mu.Unlock()

	method := a.provider.Method()

	conf, err := a.provider.Confirm(ctx, intent, paymentMethod)
	if err != nil {
		return nil, a.fail(&PaymentProviderError{Method: method, Stage: "confirmation", Err: err})
	}
	if !conf.Settled() {
		return nil, a.fail(&PaymentProviderError{
			Method: method,
			Stage:  "confirmation",
			Err:    fmt.Errorf("%w: status %s", ErrNotSettled, conf.Status),
		})
	}

	req.PaymentID = conf.PaymentID
	if req.PaymentID == "" {
		req.PaymentID = intent.PaymentID
	}

	a.mu.Lock()
	a.state = Verifying
	a.mu.Unlock()

	receipt, err := a.verifier.Verify(ctx, method, req)
	if err != nil {
		a.logger.Errorw("payment confirmed but verification failed",
			"method", method,
			"payment_id", req.PaymentID,
			"user_id", req.UserID,
			"package_id", req.PackageID,
			"error", err,
		)
		return nil, a.fail(&VerificationError{PaymentID: req.PaymentID, Err: err})
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.receipt = receipt
	a.state = Succeeded
	a.reason = ""
	return receipt, nil
}

// Cancel abandons an attempt the user walked away from after the intent was
// created.
func (a *Attempt) Cancel(reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.transition(IntentCreated, Collecting); err != nil {
		return err
	}
	if reason == "" {
		reason = "checkout cancelled"
	}
	a.state = Failed
	a.reason = reason
	return nil
}

// Reset returns a finished attempt to Idle. Nothing is retried
// automatically; the next Begin starts over with a fresh intent.
func (a *Attempt) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.transition(Idle, Succeeded, Failed); err != nil {
		return err
	}
	a.state = Idle
	a.reason = ""
	a.pkg = nil
	a.userID = ""
	a.intent = nil
	a.receipt = nil
	return nil
}

func (a *Attempt) fail(err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Failed
	a.reason = err.Error()
	return err
}
