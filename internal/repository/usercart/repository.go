package usercart

import (
	"context"
	"time"

	"storefront-cart/internal/domain"
)

// Record is the per-user mirror row: the last-known remote cart
// reference plus the full snapshot it pointed at.
type Record struct {
	UserID        string
	ShopifyCartID string
	Snapshot      domain.CartSnapshot
	UpdatedAt     time.Time
}

type Repository interface {
	Fetch(ctx context.Context, userID string) (*Record, error)
	Upsert(ctx context.Context, userID, cartRef string, snapshot domain.CartSnapshot) error
}
