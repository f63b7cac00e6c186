package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/voltmart/storefront/internal/client"
	"github.com/voltmart/storefront/internal/core/domain"
)

var _ client.IdentityAPI = (*Client)(nil)

// CurrentUser resolves the identity behind token via GET /auth/me.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: identity response missing id", domain.ErrInvalidResponse)
	}
	return &user, nil
}

type otpRequest struct {
	Phone string `json:"phone"`
}

type otpResponse struct {
	OTP string `json:"otp,omitempty"`
}

// RequestOTP issues an OTP challenge. The code comes back only from
// non-production backends.
func (c *Client) RequestOTP(ctx context.Context, identifier string) (string, error) {
	var resp otpResponse
	if err := c.do(ctx, http.MethodPost, "/auth/otp/request", "", otpRequest{Phone: identifier}, &resp); err != nil {
		return "", err
	}
	return resp.OTP, nil
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type verifyResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// VerifyOTP exchanges identifier+code for a credential. A success payload
// lacking token or user is a hard domain.ErrInvalidResponse.
func (c *Client) VerifyOTP(ctx context.Context, identifier, code string) (string, *domain.User, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodPost, "/auth/otp/verify", "", verifyRequest{Phone: identifier, Code: code}, &resp); err != nil {
		return "", nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return "", nil, fmt.Errorf("%w: verify response missing token or user", domain.ErrInvalidResponse)
	}
	return resp.Token, resp.User, nil
}

// Logout invalidates token server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}
