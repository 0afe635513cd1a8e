package usercart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront-cart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Fetch returns the newest mirror record for userID. An empty userID is
// an unauthenticated session and yields ErrUnauthenticated; a missing
// row yields ErrNotFound. Callers recovering a cart treat both the same.
func (r *postgresRepo) Fetch(ctx context.Context, userID string) (*Record, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	const q = `
SELECT user_id, shopify_cart_id, cart_data, updated_at
FROM user_carts
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT 1
`
	var rec Record
	var cartData []byte
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&rec.UserID,
		&rec.ShopifyCartID,
		&cartData,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(cartData) > 0 {
		if err := json.Unmarshal(cartData, &rec.Snapshot); err != nil {
			return nil, fmt.Errorf("decode cart_data: %w", err)
		}
	}
	return &rec, nil
}

// Upsert replaces the user's mirror wholesale and refreshes updated_at,
// matching the one-row-per-user contract.
func (r *postgresRepo) Upsert(ctx context.Context, userID, cartRef string, snapshot domain.CartSnapshot) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}

	cartData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode cart_data: %w", err)
	}

	const q = `
INSERT INTO user_carts (user_id, shopify_cart_id, cart_data)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET shopify_cart_id = EXCLUDED.shopify_cart_id,
    cart_data = EXCLUDED.cart_data,
    updated_at = now()
`
	_, err = r.pool.Exec(ctx, q, userID, cartRef, cartData)
	return err
}
