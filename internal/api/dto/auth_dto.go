package dto

import "time"

// SignInRequest payload for login.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirstLoginPasswordRequest payload for completing the forced first-login
// password change. The account is addressed by national identifier.
type FirstLoginPasswordRequest struct {
	DNI             int64  `json:"dni" validate:"required"`
	Password        string `json:"password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
