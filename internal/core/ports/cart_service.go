package ports

import (
	"context"

	"github.com/voltmart/storefront/internal/core/domain"
)

// AddItemInput is the DTO passed from the transport layer to CartService.
// UnitPrice is quoted by the storefront at add time; catalog lookups are
// outside this service.
type AddItemInput struct {
	ProductID  string
	Quantity   int
	VariantKey string
	UnitPrice  float64
}

// UpdateItemInput is a partial update to an existing line. Nil fields are
// left untouched; a quantity of zero removes the line.
type UpdateItemInput struct {
	Quantity   *int
	VariantKey *string
}

type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, productID, variantKey string, input UpdateItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID, variantKey string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}
