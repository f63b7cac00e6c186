// Package client implements the storefront's session/cart synchronization
// core: the SessionStore and CartStore that keep authentication state, cart
// state, and persisted credentials mutually consistent across processes,
// network failures, and token expiry.
package client

import (
	"context"

	"github.com/voltmart/storefront/internal/core/domain"
)

// IdentityAPI is the remote identity boundary. Implementations classify
// transport failures into the domain error taxonomy: HTTP 401/403 becomes
// domain.ErrUnauthenticated, anything else domain.ErrRequestFailed.
type IdentityAPI interface {
	// CurrentUser resolves the identity behind token.
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	// RequestOTP asks the backend to issue an OTP challenge for identifier.
	// The returned code is non-empty only in non-production environments.
	RequestOTP(ctx context.Context, identifier string) (code string, err error)
	// VerifyOTP exchanges identifier+code for a credential. Implementations
	// return domain.ErrInvalidResponse when the reply lacks token or user.
	VerifyOTP(ctx context.Context, identifier, code string) (token string, user *domain.User, err error)
	// Logout invalidates token server-side.
	Logout(ctx context.Context, token string) error
}

// ItemPatch is a partial update to an existing cart line.
type ItemPatch struct {
	Quantity   *int
	VariantKey *string
}

// CartAPI is the remote cart boundary, with the same error classification
// contract as IdentityAPI.
type CartAPI interface {
	Fetch(ctx context.Context, token string) (domain.CartSnapshot, error)
	AddItem(ctx context.Context, token, productID string, quantity int, variantKey string) error
	RemoveItem(ctx context.Context, token, productID, variantKey string) error
	UpdateItem(ctx context.Context, token, productID string, patch ItemPatch) error
	Clear(ctx context.Context, token string) error
}
