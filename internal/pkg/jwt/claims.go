// internal/pkg/jwt/claims.go
package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

const PurposeAccess = "access"

// Roles a session token may carry. They mirror the profile roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrMissingUID      = errors.New("session token has no uid")
	ErrSubjectMismatch = errors.New("session token uid does not match its subject")
	ErrUnknownRole     = errors.New("session token carries an unknown role")
	ErrNotAccessToken  = errors.New("token is not a session access token")
)

// Claims carries the session identity. Subject and UID both hold the user uid.
type Claims struct {
	UID     string `json:"uid"`
	Role    string `json:"role,omitempty"`
	Device  string `json:"device,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// IsAdmin checks the role carried by the token. The profile store stays authoritative.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// validateSession checks the fields every access token must carry for this service.
func (c *Claims) validateSession() error {
	if c.Purpose != PurposeAccess {
		return ErrNotAccessToken
	}
	if c.UID == "" {
		return ErrMissingUID
	}
	if c.Subject != c.UID {
		return ErrSubjectMismatch
	}
	return checkRole(c.Role)
}

func checkRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	}
	return ErrUnknownRole
}
