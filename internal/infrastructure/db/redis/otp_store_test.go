package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/voltmart/storefront/internal/core/domain"
)

func newTestStore(t *testing.T) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return NewOTPStore(client, 5*time.Minute, 3, time.Minute), srv
}

func TestOTPStore_IssueAndVerify(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Issue(ctx, "+52155", "123456"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := store.Verify(ctx, "+52155", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// The code is consumed on success.
	if err := store.Verify(ctx, "+52155", "123456"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound after consumption, got %v", err)
	}
}

func TestOTPStore_WrongCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.Issue(ctx, "+52155", "123456")
	if err := store.Verify(ctx, "+52155", "654321"); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}

	// A wrong attempt must not consume the challenge.
	if err := store.Verify(ctx, "+52155", "123456"); err != nil {
		t.Fatalf("correct code rejected after one miss: %v", err)
	}
}

func TestOTPStore_MaxAttemptsBurnsChallenge(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.Issue(ctx, "+52155", "123456")
	for i := 0; i < 3; i++ {
		_ = store.Verify(ctx, "+52155", "000000")
	}

	if err := store.Verify(ctx, "+52155", "123456"); !errors.Is(err, domain.ErrOTPMaxAttempts) {
		t.Fatalf("expected ErrOTPMaxAttempts, got %v", err)
	}
}

func TestOTPStore_ResendThrottle(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()

	_ = store.Issue(ctx, "+52155", "111111")
	if err := store.Issue(ctx, "+52155", "222222"); !errors.Is(err, domain.ErrOTPThrottled) {
		t.Fatalf("expected ErrOTPThrottled, got %v", err)
	}

	// After the window passes a new challenge may be issued.
	srv.FastForward(2 * time.Minute)
	if err := store.Issue(ctx, "+52155", "333333"); err != nil {
		t.Fatalf("issue after window: %v", err)
	}
}

func TestOTPStore_CodeExpires(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()

	_ = store.Issue(ctx, "+52155", "123456")
	srv.FastForward(10 * time.Minute)

	if err := store.Verify(ctx, "+52155", "123456"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound after expiry, got %v", err)
	}
}

func TestTokenDenylist_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	denylist := NewTokenDenylist(client)
	ctx := context.Background()

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh jti must not be revoked: %v %v", revoked, err)
	}

	if err := denylist.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, _ = denylist.IsRevoked(ctx, "jti-1")
	if !revoked {
		t.Fatalf("jti not revoked")
	}

	// The entry lapses with the token's own expiry.
	srv.FastForward(2 * time.Hour)
	revoked, _ = denylist.IsRevoked(ctx, "jti-1")
	if revoked {
		t.Fatalf("revocation outlived the token")
	}
}
