package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPackageNotFound  = errors.New("package not found")
	ErrDuplicatePayment = errors.New("payment already credited")
)

// Package is a purchasable bundle of XCE credits.
type Package struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	PriceUSD  float64 `json:"price_usd"`
	XCEAmount float64 `json:"xce_amount"`
}

// StripePayment tracks a card intent from creation to settlement.
type StripePayment struct {
	ID              int64     `json:"id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	PackageID       string    `json:"package_id"`
	Amount          int64     `json:"amount"` // minor units
	Currency        string    `json:"currency"`
	Status          string    `json:"status"` // pending, succeeded
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Wallet struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store interface {
	GetPackage(ctx context.Context, id string) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)

	RecordStripePayment(ctx context.Context, p *StripePayment) (*StripePayment, error)
	SetStripePaymentStatus(ctx context.Context, intentID, status string) error

	// CompletePurchase calls complete_xce_purchase, which inserts the purchase
	// row and credits the wallet atomically. Returns the purchase id.
	CompletePurchase(ctx context.Context, userID, packageID, paymentID string, amount int64) (int64, error)
	Balance(ctx context.Context, userID string) (*Wallet, error)
}
