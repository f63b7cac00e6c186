package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/core/ports"
)

const otpLength = 6

// OTPStore abstracts the OTP persistence (Redis). Issue enforces the resend
// throttle; Verify enforces the attempt cap and consumes the code on match.
type OTPStore interface {
	Issue(ctx context.Context, phone, code string) error
	Verify(ctx context.Context, phone, code string) error
}

// TokenDenylist records revoked token ids until their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService implements OTP login, password login, identity lookup, and
// token revocation.
type AuthService struct {
	users     ports.UserRepository
	otp       OTPStore
	denylist  TokenDenylist
	jwtSecret string
	tokenTTL  time.Duration
	devMode   bool
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, otp OTPStore, denylist TokenDenylist, jwtSecret string, tokenTTL time.Duration, devMode bool, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		otp:       otp,
		denylist:  denylist,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		devMode:   devMode,
		log:       log,
	}
}

// RequestOTP issues a challenge for phone. Delivery (SMS) is delegated to an
// external provider downstream; in dev mode the code is echoed back instead.
func (s *AuthService) RequestOTP(ctx context.Context, phone string) (*ports.OTPChallenge, error) {
	if phone == "" {
		return nil, domain.ErrInvalidCredentials
	}

	code, err := generateOTPCode(otpLength)
	if err != nil {
		return nil, fmt.Errorf("request otp: %w", err)
	}

	if err := s.otp.Issue(ctx, phone, code); err != nil {
		return nil, fmt.Errorf("request otp: %w", err)
	}

	s.log.Info().Str("phone", phone).Msg("otp challenge issued")

	challenge := &ports.OTPChallenge{ChallengeID: uuid.NewString()}
	if s.devMode {
		challenge.Code = code
	}
	return challenge, nil
}

// VerifyOTP checks the code and exchanges it for a signed token, creating a
// customer account for unseen phone numbers.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (string, *domain.User, error) {
	if phone == "" || code == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.otp.Verify(ctx, phone, code); err != nil {
		return "", nil, err
	}

	user, err := s.users.UpsertByPhone(ctx, phone)
	if err != nil {
		return "", nil, fmt.Errorf("verify otp: %w", err)
	}
	user.Role = domain.NormalizeRole(user.Role)

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("verify otp: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("otp login")
	return token, user, nil
}

// Login authenticates a back-office account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	user.Role = domain.NormalizeRole(user.Role)

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CurrentUser resolves an authenticated user id to its identity.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = domain.NormalizeRole(user.Role)
	return user, nil
}

// Logout denylists the token id until the token would have expired anyway.
// An unparsable or already expired token needs no revocation.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("logout with invalid token, nothing to revoke")
		return nil
	}

	jti, _ := claims["jti"].(string)
	exp, expErr := claims.GetExpirationTime()
	if jti == "" || expErr != nil || exp == nil {
		return nil
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.denylist.Revoke(ctx, jti, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// generateOTPCode returns a zero-padded numeric code of the given length.
func generateOTPCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", errors.New("otp generation failed")
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
