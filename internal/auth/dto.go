package auth

import (
	"time"

	"github.com/angelmondragon/stockroom-backend/internal/users"
)

// OTPRequest asks for a one-time code to be sent to a mobile number.
type OTPRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required,mobile"`
}

// OTPResponse acknowledges an issued code. Code is only set in dev.
type OTPResponse struct {
	MobileNumber string `json:"mobile_number"`
	ExpiresIn    int    `json:"expires_in"`
	Code         string `json:"otp_code,omitempty"`
}

// LoginRequest exchanges a one-time code for an access token.
type LoginRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required,mobile"`
	OTPCode      string `json:"otp_code" validate:"required,otp"`
}

// LoginResponse carries the access token and the logged in user.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *users.UserDTO `json:"user"`
}
