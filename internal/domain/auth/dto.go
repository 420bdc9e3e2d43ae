// internal/domain/auth/dto.go
package auth

import "time"

// RegisterRequest for user registration. Role is never taken from the client.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
	Name      string `json:"name" validate:"required"`
	Role      string `json:"-"`
	Device    string `json:"device"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginRequest for user login
type LoginRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Device    string `json:"device"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse successful login response
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}
