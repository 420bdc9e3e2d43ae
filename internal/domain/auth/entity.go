// internal/domain/auth/entity.go
package auth

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the profile-store record handed to every consumer of the session.
type User struct {
	UID       string    `json:"uid" db:"uid"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Credential is the identity-store record used to authenticate.
type Credential struct {
	UID          string    `json:"uid" db:"uid"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
