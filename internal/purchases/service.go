// Package purchases creates provider payment intents and, once a payment has
// settled, credits the buyer's XCE wallet through the ledger.
package purchases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"celflicks/internal/domain/ledger"
	"celflicks/internal/mailer"
	"celflicks/internal/payments"

	"github.com/speps/go-hashids/v2"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest      = errors.New("missing required fields")
	ErrInvalidPackage      = errors.New("invalid package")
	ErrAmountMismatch      = errors.New("amount does not match package price")
	ErrPackageMismatch     = errors.New("payment belongs to a different package")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrAlreadyCredited     = errors.New("payment already credited")
	ErrCreditFailed        = errors.New("failed to credit wallet")
)

type IntentRequest struct {
	PackageID   string
	AmountMinor int64
	Currency    string
}

type Intent struct {
	Method       string `json:"method"`
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	ApproveURL   string `json:"approve_url,omitempty"`
	PackageID    string `json:"package_id"`
	AmountMinor  int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type VerifyRequest struct {
	PaymentID string
	UserID    string
	PackageID string
	// optional, for the receipt email
	Email    string
	Username string
}

type Receipt struct {
	Method    string `json:"method"`
	PaymentID string `json:"payment_id"`
	PackageID string `json:"package_id"`
	Credits   int64  `json:"credits"`
	Reference string `json:"reference"`
}

type Service struct {
	ledger   ledger.Store
	gateways *payments.PaymentManager
	mailer   mailer.Client
	hasher   *hashids.HashID
	logger   *zap.SugaredLogger
}

// NewService wires the purchase flow. mail may be nil to skip receipts.
func NewService(l ledger.Store, gateways *payments.PaymentManager, mail mailer.Client, receiptSalt string, logger *zap.SugaredLogger) (*Service, error) {
	hd := hashids.NewData()
	hd.Salt = receiptSalt
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("receipt hasher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{ledger: l, gateways: gateways, mailer: mail, hasher: h, logger: logger}, nil
}

// MinorUnits converts a decimal price to integer cents, rounding to nearest.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func (s *Service) Packages(ctx context.Context) ([]ledger.Package, error) {
	return s.ledger.ListPackages(ctx)
}

func (s *Service) Package(ctx context.Context, id string) (*ledger.Package, error) {
	pkg, err := s.ledger.GetPackage(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrPackageNotFound) {
			return nil, ErrInvalidPackage
		}
		return nil, err
	}
	return pkg, nil
}

func (s *Service) Wallet(ctx context.Context, userID string) (*ledger.Wallet, error) {
	return s.ledger.Balance(ctx, userID)
}

// CreateIntent opens a payment with the provider for a package. For card
// payments the intent is also recorded in stripe_payments; a failure to
// record is logged and does not fail the request.
func (s *Service) CreateIntent(ctx context.Context, method string, req IntentRequest) (*Intent, error) {
	if strings.TrimSpace(req.PackageID) == "" || req.AmountMinor <= 0 {
		return nil, ErrInvalidRequest
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	pkg, err := s.Package(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if MinorUnits(pkg.PriceUSD) != req.AmountMinor {
		return nil, ErrAmountMismatch
	}

	res, err := s.gateways.InitiatePayment(ctx, method, payments.PaymentRequest{
		Reference:   pkg.ID,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Description: fmt.Sprintf("%s XCE Credits for Celflicks", formatCredits(pkg.XCEAmount)),
	})
	if err != nil {
		return nil, err
	}

	if method == payments.MethodStripe {
		_, err := s.ledger.RecordStripePayment(ctx, &ledger.StripePayment{
			PaymentIntentID: res.ProviderRef,
			PackageID:       pkg.ID,
			Amount:          req.AmountMinor,
			Currency:        req.Currency,
		})
		if err != nil {
			s.logger.Errorw("failed to record stripe payment", "payment_intent_id", res.ProviderRef, "error", err)
		}
	}

	return &Intent{
		Method:       method,
		PaymentID:    res.ProviderRef,
		ClientSecret: res.ClientSecret,
		ApproveURL:   res.ApproveURL,
		PackageID:    pkg.ID,
		AmountMinor:  req.AmountMinor,
		Currency:     req.Currency,
	}, nil
}

// Confirm asks the provider to settle an approved payment.
func (s *Service) Confirm(ctx context.Context, method, paymentID, paymentMethod string) (payments.PaymentVerifyResponse, error) {
	return s.gateways.ConfirmPayment(ctx, method, payments.PaymentVerifyRequest{
		ProviderRef:   paymentID,
		PaymentMethod: paymentMethod,
	})
}

// Verify cross-checks the payment with the provider and, when it has
// settled for the package's full price, credits floor(xce_amount) to the
// user. The ledger rejects a payment id it has already credited.
func (s *Service) Verify(ctx context.Context, method string, req VerifyRequest) (*Receipt, error) {
	if req.PaymentID == "" || req.UserID == "" || req.PackageID == "" {
		return nil, ErrInvalidRequest
	}

	res, err := s.gateways.VerifyPayment(ctx, method, payments.PaymentVerifyRequest{ProviderRef: req.PaymentID})
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentNotCompleted, res.State)
	}
	if res.Reference != "" && res.Reference != req.PackageID {
		return nil, ErrPackageMismatch
	}

	pkg, err := s.Package(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	// packages are priced in USD and must be paid in full
	if res.AmountMinor != MinorUnits(pkg.PriceUSD) || !strings.EqualFold(res.Currency, "usd") {
		s.logger.Warnw("settled amount does not match package",
			"method", method,
			"payment_id", req.PaymentID,
			"package_id", pkg.ID,
			"amount", res.AmountMinor,
			"currency", res.Currency,
		)
		return nil, fmt.Errorf("%w: paid %d %s", ErrAmountMismatch, res.AmountMinor, res.Currency)
	}
	credits := int64(math.Floor(pkg.XCEAmount))

	if method == payments.MethodStripe {
		if err := s.ledger.SetStripePaymentStatus(ctx, req.PaymentID, "succeeded"); err != nil {
			s.logger.Errorw("failed to mark stripe payment succeeded", "payment_intent_id", req.PaymentID, "error", err)
		}
	}

	purchaseID, err := s.ledger.CompletePurchase(ctx, req.UserID, pkg.ID, req.PaymentID, credits)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicatePayment) {
			return nil, ErrAlreadyCredited
		}
		s.logger.Errorw("payment settled but wallet credit failed",
			"method", method,
			"payment_id", req.PaymentID,
			"user_id", req.UserID,
			"package_id", pkg.ID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrCreditFailed, err)
	}

	ref, err := s.hasher.EncodeInt64([]int64{purchaseID})
	if err != nil {
		ref = fmt.Sprintf("%d", purchaseID)
	}

	receipt := &Receipt{
		Method:    method,
		PaymentID: req.PaymentID,
		PackageID: pkg.ID,
		Credits:   credits,
		Reference: ref,
	}
	s.logger.Infow("xce purchase completed", "user_id", req.UserID, "credits", credits, "reference", ref)

	s.sendReceipt(req, pkg, receipt)
	return receipt, nil
}

// DecodeReference maps a receipt reference back to the purchase row id.
func (s *Service) DecodeReference(ref string) (int64, error) {
	ids, err := s.hasher.DecodeInt64WithError(ref)
	if err != nil || len(ids) != 1 {
		return 0, fmt.Errorf("invalid receipt reference %q", ref)
	}
	return ids[0], nil
}

func (s *Service) sendReceipt(req VerifyRequest, pkg *ledger.Package, r *Receipt) {
	if s.mailer == nil || req.Email == "" {
		return
	}
	data := map[string]any{
		"Username":    req.Username,
		"Credits":     r.Credits,
		"PackageName": pkg.Name,
		"Method":      r.Method,
		"Reference":   r.Reference,
	}
	if _, err := s.mailer.Send(mailer.PurchaseReceiptTemplate, req.Username, req.Email, data); err != nil {
		s.logger.Errorw("error sending purchase receipt", "reference", r.Reference, "error", err)
	}
}

func formatCredits(v float64) string {
	return fmt.Sprintf("%d", int64(math.Floor(v)))
}
