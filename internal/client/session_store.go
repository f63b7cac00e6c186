package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voltmart/storefront/internal/client/credstore"
	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/eventbus"
)

// SessionStore is the single source of truth for "who is logged in",
// synchronized with the persisted credential. Invariant: no token means no
// user. A stale token (revoked server-side) is detected on demand by Refresh,
// never held as an invariant.
type SessionStore struct {
	api   IdentityAPI
	creds credstore.Store
	bus   eventbus.Bus
	log   zerolog.Logger

	mu      sync.Mutex
	token   string
	user    *domain.User
	loading bool
	closed  bool
}

// NewSessionStore constructs an empty session with loading set, expecting an
// initial Refresh to populate it.
func NewSessionStore(api IdentityAPI, creds credstore.Store, bus eventbus.Bus, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		api:     api,
		creds:   creds,
		bus:     bus,
		log:     log,
		loading: true,
	}
}

// Token returns the in-memory credential, or "" when logged out.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the current identity, or nil when logged out.
func (s *SessionStore) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	clone := *s.user
	return &clone
}

// Loading reports whether a refresh is in flight.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Close tears the store down. Results of requests still in flight are
// discarded instead of mutating freed state.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Refresh re-derives the session from the persisted credential. Failure is
// terminal-but-local: a rejected token clears the persisted credential and
// resets to logged out, and nothing propagates to the caller. Refresh is the
// reaction to a signal, not the trigger, so it emits nothing itself.
func (s *SessionStore) Refresh(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	token, err := s.creds.Token(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session refresh: credential read failed")
		s.setSession("", nil)
		return
	}
	if token == "" {
		s.setSession("", nil)
		return
	}

	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("session refresh: token rejected, logging out")
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("session refresh: credential clear failed")
		}
		s.setSession("", nil)
		return
	}

	user.Role = domain.NormalizeRole(user.Role)
	if !s.setSession(token, user) {
		return // closed while the request was in flight; discard
	}
	if err := s.creds.SetCachedUser(ctx, user); err != nil {
		s.log.Warn().Err(err).Msg("session refresh: identity cache write failed")
	}
}

// SendOTP requests an OTP challenge for identifier. The returned code is
// non-empty only when the backend runs in a non-production mode.
func (s *SessionStore) SendOTP(ctx context.Context, identifier string) (string, error) {
	code, err := s.api.RequestOTP(ctx, identifier)
	if err != nil {
		return "", fmt.Errorf("send otp: %w", err)
	}
	return code, nil
}

// VerifyOTP exchanges identifier+code for a credential. A response missing
// token or user is a hard domain.ErrInvalidResponse and mutates nothing.
func (s *SessionStore) VerifyOTP(ctx context.Context, identifier, code string) (*domain.User, error) {
	token, user, err := s.api.VerifyOTP(ctx, identifier, code)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if token == "" || user == nil {
		return nil, fmt.Errorf("verify otp: %w", domain.ErrInvalidResponse)
	}

	user.Role = domain.NormalizeRole(user.Role)
	if err := s.creds.SetToken(ctx, token); err != nil {
		return nil, fmt.Errorf("verify otp: persist token: %w", err)
	}
	if err := s.creds.SetCachedUser(ctx, user); err != nil {
		s.log.Warn().Err(err).Msg("verify otp: identity cache write failed")
	}
	if !s.setSession(token, user) {
		return nil, errors.New("verify otp: session closed")
	}

	s.bus.Emit(domain.SignalAuthChanged)
	clone := *user
	return &clone, nil
}

// LoginWithToken injects a credential obtained through an external auth flow.
// The user is stored as given, without normalization.
func (s *SessionStore) LoginWithToken(ctx context.Context, token string, user *domain.User) error {
	if err := s.creds.SetToken(ctx, token); err != nil {
		return fmt.Errorf("login with token: persist token: %w", err)
	}
	if err := s.creds.SetCachedUser(ctx, user); err != nil {
		s.log.Warn().Err(err).Msg("login with token: identity cache write failed")
	}
	s.setSession(token, user)
	s.bus.Emit(domain.SignalAuthChanged)
	return nil
}

// Logout ends the session. The remote call is best effort: a network failure
// is swallowed because local logout must always succeed.
func (s *SessionStore) Logout(ctx context.Context) {
	token := s.Token()
	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("logout: remote call failed, clearing locally anyway")
		}
	}
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("logout: credential clear failed")
	}
	s.setSession("", nil)
	s.bus.Emit(domain.SignalAuthChanged)
}

// WatchCredential reacts to credential writes made by peer processes by fully
// re-deriving the session. Returns a stop function.
func (s *SessionStore) WatchCredential(ctx context.Context) (stop func()) {
	return s.creds.Watch(func(key string) {
		if key != credstore.KeyToken {
			return
		}
		s.Refresh(ctx)
		s.bus.Emit(domain.SignalAuthChanged)
	})
}

// setSession replaces token and user unless the store is closed. Reports
// whether the mutation was applied.
func (s *SessionStore) setSession(token string, user *domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.token = token
	s.user = user
	return true
}

func (s *SessionStore) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.loading = v
}
