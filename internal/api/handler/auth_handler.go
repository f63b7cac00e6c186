package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voltmart/storefront/internal/api/metrics"
	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type otpRequestBody struct {
	Phone string `json:"phone" validate:"required"`
}

type otpRequestResponse struct {
	ChallengeID string `json:"challengeId"`
	OTP         string `json:"otp,omitempty"`
}

type otpVerifyBody struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code"  validate:"required,len=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// RequestOTP issues an OTP challenge for a phone number.
//
// @Summary      Request an OTP challenge
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequestBody  true  "Phone number to challenge"
// @Success      202   {object}  otpRequestResponse
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/otp/request [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req otpRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	challenge, err := h.authService.RequestOTP(c.Request().Context(), req.Phone)
	if err != nil {
		if err == domain.ErrOTPThrottled {
			metrics.OTPRequestsTotal.WithLabelValues("throttled").Inc()
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "otp recently sent, try again later"})
		}
		metrics.OTPRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.OTPRequestsTotal.WithLabelValues("issued").Inc()
	return c.JSON(http.StatusAccepted, otpRequestResponse{
		ChallengeID: challenge.ChallengeID,
		OTP:         challenge.Code,
	})
}

// VerifyOTP exchanges phone+code for a signed token, creating a customer
// account on first login.
//
// @Summary      Verify an OTP code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      otpVerifyBody  true  "Phone number and OTP code"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req otpVerifyBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, user, err := h.authService.VerifyOTP(c.Request().Context(), req.Phone, req.Code)
	if err != nil {
		metrics.OTPVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
		switch err {
		case domain.ErrOTPInvalid:
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid code"})
		case domain.ErrOTPNotFound:
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "code expired or never issued"})
		case domain.ErrOTPMaxAttempts:
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many attempts, request a new code"})
		}
		return err
	}

	metrics.OTPVerificationsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func verifyResult(err error) string {
	switch err {
	case domain.ErrOTPInvalid:
		return "invalid"
	case domain.ErrOTPNotFound:
		return "expired"
	case domain.ErrOTPMaxAttempts:
		return "max_attempts"
	default:
		return "error"
	}
}

// Login authenticates a back-office account by email and password.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Deliberately collapse not-found and bad-password so the endpoint
		// cannot be used to enumerate accounts.
		if err == domain.ErrInvalidCredentials || err == domain.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Me returns the identity behind the presented token.
//
// @Summary      Get the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		}
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Logout revokes the presented token until its natural expiry. A missing or
// already dead token is not an error; the endpoint is idempotent so clients
// can always clear local state afterwards.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	metrics.LogoutsTotal.Inc()

	raw := bearerToken(c)
	if raw == "" {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
