// internal/domain/auth/repository.go
package auth

import "context"

type Repository interface {
	// CreateAccount writes credential and profile together.
	CreateAccount(ctx context.Context, cred *Credential, user *User) (*User, error)
	FindCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	FindUser(ctx context.Context, uid string) (*User, error)
	TouchUser(ctx context.Context, uid string) (*User, error)
}
