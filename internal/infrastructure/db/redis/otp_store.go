package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voltmart/storefront/internal/core/domain"
)

const (
	defaultOTPTTL       = 5 * time.Minute
	defaultMaxAttempts  = 5
	defaultResendWindow = time.Minute
)

// OTPStore keeps issued OTP codes in Redis with a TTL, an attempt cap, and a
// resend throttle.
// Key format: otp:<phone>, otp:att:<phone>, otp:res:<phone>
type OTPStore struct {
	client       *redis.Client
	ttl          time.Duration
	maxAttempts  int
	resendWindow time.Duration
}

// NewOTPStore creates an OTPStore wrapping the given Redis client.
// Non-positive options fall back to defaults.
func NewOTPStore(client *redis.Client, ttl time.Duration, maxAttempts int, resendWindow time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if resendWindow <= 0 {
		resendWindow = defaultResendWindow
	}
	return &OTPStore{client: client, ttl: ttl, maxAttempts: maxAttempts, resendWindow: resendWindow}
}

// Issue stores a fresh code for phone, replacing any outstanding one, and
// arms the resend throttle.
func (s *OTPStore) Issue(ctx context.Context, phone, code string) error {
	ok, err := s.client.SetNX(ctx, s.resendKey(phone), 1, s.resendWindow).Result()
	if err != nil {
		return fmt.Errorf("otp throttle: %w", err)
	}
	if !ok {
		return domain.ErrOTPThrottled
	}

	if err := s.client.Set(ctx, s.codeKey(phone), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("otp store: %w", err)
	}
	if err := s.client.Set(ctx, s.attemptsKey(phone), 0, s.ttl).Err(); err != nil {
		return fmt.Errorf("otp attempts init: %w", err)
	}
	return nil
}

// Verify checks code against the outstanding challenge and consumes it on
// match. Each miss counts against the attempt cap; exceeding the cap burns
// the challenge.
func (s *OTPStore) Verify(ctx context.Context, phone, code string) error {
	attempts, err := s.client.Incr(ctx, s.attemptsKey(phone)).Result()
	if err != nil {
		return fmt.Errorf("otp attempts: %w", err)
	}
	if attempts > int64(s.maxAttempts) {
		s.client.Del(ctx, s.codeKey(phone), s.attemptsKey(phone))
		return domain.ErrOTPMaxAttempts
	}

	stored, err := s.client.Get(ctx, s.codeKey(phone)).Result()
	if err == redis.Nil {
		s.client.Del(ctx, s.attemptsKey(phone))
		return domain.ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("otp read: %w", err)
	}
	if stored != code {
		return domain.ErrOTPInvalid
	}

	s.client.Del(ctx, s.codeKey(phone), s.attemptsKey(phone), s.resendKey(phone))
	return nil
}

func (s *OTPStore) codeKey(phone string) string     { return "otp:" + phone }
func (s *OTPStore) attemptsKey(phone string) string { return "otp:att:" + phone }
func (s *OTPStore) resendKey(phone string) string   { return "otp:res:" + phone }
