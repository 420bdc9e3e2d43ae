// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"fmt"
	"strings"

	"warmup-service/internal/domain/auth"

	"go.uber.org/zap"
)

// EnsureAdminExists creates the configured admin account on startup when its email is not
// registered yet. Empty settings skip the bootstrap.
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || name == "" {
		s.logger.Info("admin bootstrap not configured, skipping")
		return nil
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check admin email: %w", err)
	}
	if exists {
		s.logger.Info("admin already exists, skipping creation", zap.String("email", email))
		return nil
	}

	if len(password) < 6 {
		return fmt.Errorf("admin password must have at least 6 characters")
	}

	if _, err := s.createAccount(ctx, email, password, name, auth.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin created successfully", zap.String("email", email), zap.String("name", name))
	return nil
}
