// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warmup-service/internal/domain/auth"
	xerrors "warmup-service/internal/pkg/errors"
	"warmup-service/internal/pkg/jwt"
	"warmup-service/internal/pkg/metrics"
	"warmup-service/internal/pkg/session"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	actionRegister = "Erro ao criar conta"
	actionLogin    = "Erro ao fazer login"
	actionLogout   = "Erro ao sair"
	actionCurrent  = "Erro ao buscar usuário"

	maxPasswordBytes = 72
)

type AuthService struct {
	repo           auth.Repository
	jwtManager     *jwt.Manager
	sessionManager *session.Manager
	rateLimiter    *session.RateLimiter
	hub            *StateHub
	validate       *validator.Validate
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

func NewAuthService(
	repo auth.Repository,
	jwtManager *jwt.Manager,
	sessionManager *session.Manager,
	rateLimiter *session.RateLimiter,
	hub *StateHub,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		repo:           repo,
		jwtManager:     jwtManager,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		hub:            hub,
		validate:       validator.New(),
		metrics:        m,
		logger:         logger,
	}
}

// ========== Registration ==========

// Register creates the credential and the profile together. The new user always gets the
// user role.
func (s *AuthService) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validate.Struct(req); err != nil {
		return nil, registerValidation(err)
	}

	return s.createAccount(ctx, req.Email, req.Password, req.Name, auth.RoleUser)
}

func (s *AuthService) createAccount(ctx context.Context, email, password, name, role string) (*auth.User, error) {
	// bcrypt only looks at the first 72 bytes.
	if len(password) > maxPasswordBytes {
		return nil, xerrors.NewFieldValidation("password", "A senha deve ter no máximo 72 bytes")
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, xerrors.Op(actionRegister, err)
	}
	if exists {
		return nil, xerrors.Op(actionRegister, xerrors.NewAuth(xerrors.CodeEmailInUse, nil))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Op(actionRegister, err)
	}

	uid := ulid.Make().String()
	user, err := s.repo.CreateAccount(ctx,
		&auth.Credential{UID: uid, Email: email, PasswordHash: string(hashedPassword)},
		&auth.User{UID: uid, Email: email, Name: name, Role: role},
	)
	if err != nil {
		s.logger.Error("failed to create account", zap.String("email", email), zap.Error(err))
		return nil, xerrors.Op(actionRegister, err)
	}

	s.logger.Info("account created",
		zap.String("uid", user.UID),
		zap.String("email", user.Email),
		zap.String("role", user.Role),
	)

	return user, nil
}

func registerValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return xerrors.NewFieldValidation(strings.ToLower(fe.Field()), "Todos os campos são obrigatórios")
			}
		}
		for _, fe := range fieldErrs {
			if fe.Field() == "Password" && fe.Tag() == "min" {
				return xerrors.NewFieldValidation("password", "A senha deve ter pelo menos 6 caracteres")
			}
		}
	}
	return xerrors.NewValidation("Todos os campos são obrigatórios")
}

// ========== Login ==========

// Login checks the credential, stamps the profile and opens a redis-backed session.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, _, err := s.rateLimiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		s.logger.Error("rate limiter unavailable", zap.String("email", email), zap.Error(err))
		return nil, xerrors.Op(actionLogin, err)
	}
	if !allowed {
		s.metrics.LoginAttempt("rate_limited")
		return nil, xerrors.Op(actionLogin, xerrors.NewAuth(xerrors.CodeTooManyRequests, nil))
	}

	cred, err := s.repo.FindCredentialByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrNotFound) {
		s.metrics.LoginAttempt("invalid")
		return nil, xerrors.Op(actionLogin, xerrors.NewAuth(xerrors.CodeInvalidCredential, nil))
	}
	if err != nil {
		return nil, xerrors.Op(actionLogin, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.LoginAttempt("invalid")
		return nil, xerrors.Op(actionLogin, xerrors.NewAuth(xerrors.CodeInvalidCredential, nil))
	}

	user, err := s.repo.TouchUser(ctx, cred.UID)
	if errors.Is(err, xerrors.ErrNotFound) {
		s.metrics.LoginAttempt("invalid")
		return nil, xerrors.Op(actionLogin, xerrors.NewAuth(xerrors.CodeUserNotFound, nil))
	}
	if err != nil {
		return nil, xerrors.Op(actionLogin, err)
	}

	accessToken, jti, err := s.jwtManager.Generator.GenerateAccessToken(user.UID, user.Role, req.Device)
	if err != nil {
		s.logger.Error("failed to generate access token", zap.String("uid", user.UID), zap.Error(err))
		return nil, xerrors.Op(actionLogin, err)
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtManager.Generator.TTL)

	sessionData := &session.SessionData{
		JTI:            jti,
		UID:            user.UID,
		Email:          user.Email,
		Role:           user.Role,
		Device:         req.Device,
		IPAddress:      req.IPAddress,
		UserAgent:      req.UserAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      expiresAt,
	}
	if err := s.sessionManager.CreateSession(ctx, sessionData); err != nil {
		s.logger.Error("failed to create session", zap.String("uid", user.UID), zap.Error(err))
		return nil, xerrors.Op(actionLogin, err)
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.String("email", email), zap.Error(err))
	}

	s.metrics.LoginAttempt("success")
	s.hub.Publish(user.UID, user)
	s.logger.Info("user logged in", zap.String("uid", user.UID), zap.String("device", req.Device))

	return &auth.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtManager.Generator.TTL.Seconds()),
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

// ========== Logout ==========

// Logout invalidates the current session and blacklists its token until expiry.
func (s *AuthService) Logout(ctx context.Context, uid, jti string) error {
	if err := s.sessionManager.InvalidateSession(ctx, uid, jti); err != nil {
		return xerrors.Op(actionLogout, err)
	}

	if err := s.sessionManager.BlacklistToken(ctx, jti, s.jwtManager.Generator.TTL); err != nil {
		return xerrors.Op(actionLogout, err)
	}

	s.hub.Publish(uid, nil)
	s.logger.Info("user logged out", zap.String("uid", uid))
	return nil
}

// ========== Token validation ==========

// ValidateToken accepts a token only while it verifies, is not blacklisted and still has
// a live session.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, xerrors.NewAuth(xerrors.CodeSessionExpired, err)
	}

	blacklisted, err := s.sessionManager.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return nil, xerrors.NewAuth(xerrors.CodeSessionExpired, errors.New("token revoked"))
	}

	if _, err := s.sessionManager.GetSession(ctx, claims.UID, claims.ID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, xerrors.NewAuth(xerrors.CodeSessionExpired, err)
		}
		return nil, err
	}

	return claims, nil
}

// ========== Profile ==========

// CurrentUser hydrates the profile of uid. A missing profile yields nil, nil.
func (s *AuthService) CurrentUser(ctx context.Context, uid string) (*auth.User, error) {
	user, err := s.repo.FindUser(ctx, uid)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Op(actionCurrent, err)
	}
	return user, nil
}
