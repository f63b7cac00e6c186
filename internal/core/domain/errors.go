package domain

import "errors"

// Client-side failure taxonomy. Unauthenticated is an expected steady state
// for anonymous browsing and is never surfaced to the user; RequestFailed is
// surfaced as a transient notification; InvalidResponse means the transport
// succeeded but the payload is unusable and is a hard error.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrRequestFailed   = errors.New("request failed")
	ErrInvalidResponse = errors.New("invalid server response")
)

// Server-side sentinels.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCartNotFound       = errors.New("cart not found")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrOTPNotFound        = errors.New("otp not found or expired")
	ErrOTPInvalid         = errors.New("otp code does not match")
	ErrOTPMaxAttempts     = errors.New("otp verification attempts exceeded")
	ErrOTPThrottled       = errors.New("otp recently sent, wait before resending")
	ErrTokenRevoked       = errors.New("token has been revoked")
)
