package checkout

import (
	"context"

	"celflicks/internal/payments"
	"celflicks/internal/purchases"
)

// PurchaseFlow is the part of purchases.Service the adapters need.
type PurchaseFlow interface {
	CreateIntent(ctx context.Context, method string, req purchases.IntentRequest) (*purchases.Intent, error)
	Confirm(ctx context.Context, method, paymentID, paymentMethod string) (payments.PaymentVerifyResponse, error)
	Verify(ctx context.Context, method string, req purchases.VerifyRequest) (*purchases.Receipt, error)
}

// GatewayProvider drives one registered payment gateway through the
// purchase flow.
type GatewayProvider struct {
	method   Method
	currency string
	flow     PurchaseFlow
}

func CardProvider(flow PurchaseFlow) *GatewayProvider {
	return &GatewayProvider{method: Card, currency: "usd", flow: flow}
}

func WalletProvider(flow PurchaseFlow) *GatewayProvider {
	return &GatewayProvider{method: Wallet, currency: "USD", flow: flow}
}

func (p *GatewayProvider) Method() Method { return p.method }

func (p *GatewayProvider) CreateIntent(ctx context.Context, pkg Package, amount int64) (*Intent, error) {
	in, err := p.flow.CreateIntent(ctx, string(p.method), purchases.IntentRequest{
		PackageID:   pkg.ID,
		AmountMinor: amount,
		Currency:    p.currency,
	})
	if err != nil {
		return nil, err
	}
	return &Intent{
		PaymentID:    in.PaymentID,
		ClientSecret: in.ClientSecret,
		ApproveURL:   in.ApproveURL,
		Amount:       in.AmountMinor,
		Currency:     in.Currency,
	}, nil
}

func (p *GatewayProvider) Confirm(ctx context.Context, intent Intent, paymentMethod string) (*Confirmation, error) {
	res, err := p.flow.Confirm(ctx, string(p.method), intent.PaymentID, paymentMethod)
	if err != nil {
		return nil, err
	}
	id := res.ProviderRef
	if id == "" {
		id = intent.PaymentID
	}
	return &Confirmation{PaymentID: id, Status: p.status(res)}, nil
}

// status folds the wallet capture into the order status: a COMPLETED order
// whose capture has not completed is reported as CAPTURE_<status>.
func (p *GatewayProvider) status(res payments.PaymentVerifyResponse) string {
	if p.method != Wallet || res.State != "COMPLETED" || res.CaptureStatus == "COMPLETED" {
		return res.State
	}
	if res.CaptureStatus == "" {
		return "CAPTURE_MISSING"
	}
	return "CAPTURE_" + res.CaptureStatus
}

// LedgerVerifier credits settled payments through purchases.Service.
type LedgerVerifier struct {
	flow PurchaseFlow
}

func NewLedgerVerifier(flow PurchaseFlow) *LedgerVerifier {
	return &LedgerVerifier{flow: flow}
}

func (v *LedgerVerifier) Verify(ctx context.Context, method Method, req VerifyRequest) (*Receipt, error) {
	r, err := v.flow.Verify(ctx, string(method), purchases.VerifyRequest{
		PaymentID: req.PaymentID,
		UserID:    req.UserID,
		PackageID: req.PackageID,
	})
	if err != nil {
		return nil, err
	}
	return &Receipt{
		PaymentID: r.PaymentID,
		PackageID: r.PackageID,
		Credits:   r.Credits,
		Reference: r.Reference,
	}, nil
}
