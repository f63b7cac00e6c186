package ports

import (
	"context"

	"github.com/voltmart/storefront/internal/core/domain"
)

// OTPChallenge describes an issued OTP challenge. Code is populated only in
// non-production environments so manual testing never needs a real SMS.
type OTPChallenge struct {
	ChallengeID string
	Code        string
}

type AuthService interface {
	// RequestOTP issues an OTP challenge for phone.
	RequestOTP(ctx context.Context, phone string) (*OTPChallenge, error)
	// VerifyOTP exchanges phone+code for a signed token and its user,
	// creating a customer account on first login.
	VerifyOTP(ctx context.Context, phone, code string) (string, *domain.User, error)
	// Login authenticates by email and password (back-office accounts).
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// CurrentUser resolves an authenticated user id to its identity.
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	// Logout revokes token until its natural expiry. Revoking an already
	// invalid token is not an error.
	Logout(ctx context.Context, token string) error
}
