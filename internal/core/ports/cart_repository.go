package ports

import (
	"context"

	"github.com/voltmart/storefront/internal/core/domain"
)

// CartRepository persists one cart document per user. Save replaces the
// whole document: carts are written single-writer-per-write, last write wins.
type CartRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	DeleteByUserID(ctx context.Context, userID string) error
}
