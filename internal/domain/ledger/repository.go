package ledger

import (
	"context"
	"errors"
	"fmt"

	"celflicks/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct{ q db.Querier }

func NewRepository(q db.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) GetPackage(ctx context.Context, id string) (*Package, error) {
	var p Package
	err := r.q.QueryRow(ctx, `
		SELECT id, name, price_usd::float8, xce_amount::float8
		FROM xce_packages
		WHERE id = $1 AND active
	`, id).Scan(&p.ID, &p.Name, &p.PriceUSD, &p.XCEAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

func (r *Repository) ListPackages(ctx context.Context) ([]Package, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, price_usd::float8, xce_amount::float8
		FROM xce_packages
		WHERE active
		ORDER BY sort_order ASC, price_usd ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	out := []Package{}
	for rows.Next() {
		var p Package
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceUSD, &p.XCEAmount); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) RecordStripePayment(ctx context.Context, p *StripePayment) (*StripePayment, error) {
	if err := r.q.QueryRow(ctx, `
		INSERT INTO stripe_payments (payment_intent_id, package_id, amount, currency, status)
		VALUES ($1, $2, $3, lower($4), COALESCE(NULLIF($5, ''), 'pending'))
		RETURNING id, status, created_at, updated_at
	`, p.PaymentIntentID, p.PackageID, p.Amount, p.Currency, p.Status).
		Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("record stripe payment: %w", err)
	}
	return p, nil
}

func (r *Repository) SetStripePaymentStatus(ctx context.Context, intentID, status string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stripe_payments
		   SET status = $2, updated_at = now()
		 WHERE payment_intent_id = $1
	`, intentID, status)
	if err != nil {
		return fmt.Errorf("set stripe payment status: %w", err)
	}
	return nil
}

func (r *Repository) CompletePurchase(ctx context.Context, userID, packageID, paymentID string, amount int64) (int64, error) {
	var purchaseID int64
	err := r.q.QueryRow(ctx,
		`SELECT complete_xce_purchase($1, $2, $3, $4)`,
		userID, packageID, paymentID, amount,
	).Scan(&purchaseID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, ErrDuplicatePayment
			case "23503":
				return 0, ErrPackageNotFound
			}
		}
		return 0, fmt.Errorf("complete purchase: %w", err)
	}
	return purchaseID, nil
}

// Balance returns a zero wallet for users that never purchased.
func (r *Repository) Balance(ctx context.Context, userID string) (*Wallet, error) {
	w := Wallet{UserID: userID}
	err := r.q.QueryRow(ctx, `
		SELECT balance, updated_at FROM user_wallets WHERE user_id = $1
	`, userID).Scan(&w.Balance, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &w, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}
