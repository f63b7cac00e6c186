package ports

import (
	"context"

	"github.com/voltmart/storefront/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpsertByPhone returns the user owning phone, creating a customer
	// account on first OTP login.
	UpsertByPhone(ctx context.Context, phone string) (*domain.User, error)
}
