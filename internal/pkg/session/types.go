// internal/pkg/session/types.go
package session

import "time"

// SessionData is the redis-held record of one signed-in token.
type SessionData struct {
	JTI            string    `json:"jti"`
	UID            string    `json:"uid"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Device         string    `json:"device,omitempty"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	LoginAt        time.Time `json:"login_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
