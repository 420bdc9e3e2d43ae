package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"warmup-service/internal/domain/auth"
	xerrors "warmup-service/internal/pkg/errors"
	"warmup-service/internal/pkg/jwt"
	"warmup-service/internal/pkg/metrics"
	"warmup-service/internal/pkg/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateAccount(ctx context.Context, cred *auth.Credential, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, cred, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockAuthRepo) FindCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Credential), args.Error(1)
}

func (m *MockAuthRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthRepo) FindUser(ctx context.Context, uid string) (*auth.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockAuthRepo) TouchUser(ctx context.Context, uid string) (*auth.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

type fixture struct {
	svc   *AuthService
	repo  *MockAuthRepo
	hub   *StateHub
	redis *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	key := signingKey(t)
	manager := jwt.NewManager(key, &key.PublicKey, jwt.Config{
		Issuer:   "warmup-service",
		Audience: "warmup-admin",
		TTL:      time.Hour,
		KID:      "test",
	})

	repo := new(MockAuthRepo)
	hub := NewStateHub(zap.NewNop())
	t.Cleanup(hub.Close)

	svc := NewAuthService(
		repo,
		manager,
		session.NewManager(client, zap.NewNop()),
		session.NewRateLimiter(client),
		hub,
		metrics.New(),
		zap.NewNop(),
	)

	return &fixture{svc: svc, repo: repo, hub: hub, redis: mr}
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// ========== Register ==========

func TestAuthService_RegisterValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  auth.RegisterRequest
		want string
	}{
		{"missing email", auth.RegisterRequest{Password: "secret1", Name: "Ana"}, "Todos os campos são obrigatórios"},
		{"missing name", auth.RegisterRequest{Email: "ana@acme.com", Password: "secret1"}, "Todos os campos são obrigatórios"},
		{"missing password", auth.RegisterRequest{Email: "ana@acme.com", Name: "Ana"}, "Todos os campos são obrigatórios"},
		{"short password", auth.RegisterRequest{Email: "ana@acme.com", Password: "12345", Name: "Ana"}, "A senha deve ter pelo menos 6 caracteres"},
		{"long password", auth.RegisterRequest{Email: "ana@acme.com", Password: strings.Repeat("a", 80), Name: "Ana"}, "A senha deve ter no máximo 72 bytes"},
		{"long multibyte password", auth.RegisterRequest{Email: "ana@acme.com", Password: strings.Repeat("é", 40), Name: "Ana"}, "A senha deve ter no máximo 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Register(ctx, &req)
			require.Error(t, err)
			assert.True(t, xerrors.IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}

	f.repo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_RegisterCreatesUserRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.repo.On("ExistsByEmail", ctx, "ana@acme.com").Return(false, nil)
	f.repo.On("CreateAccount", ctx,
		mock.MatchedBy(func(c *auth.Credential) bool {
			return c.Email == "ana@acme.com" &&
				bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("secret1")) == nil
		}),
		mock.MatchedBy(func(u *auth.User) bool { return u.Role == auth.RoleUser && u.Name == "Ana" }),
	).Return(&auth.User{UID: "u1", Email: "ana@acme.com", Name: "Ana", Role: auth.RoleUser}, nil)

	user, err := f.svc.Register(ctx, &auth.RegisterRequest{
		Email: "  Ana@Acme.com ", Password: "secret1", Name: "Ana", Role: auth.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, user.Role)
	f.repo.AssertExpectations(t)
}

func TestAuthService_RegisterEmailInUse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.repo.On("ExistsByEmail", ctx, "ana@acme.com").Return(true, nil)

	_, err := f.svc.Register(ctx, &auth.RegisterRequest{Email: "ana@acme.com", Password: "secret1", Name: "Ana"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerrors.ErrConflict))
	assert.Equal(t, "Erro ao criar conta: Este email já está em uso.", err.Error())
}

// ========== Login / logout ==========

func TestAuthService_LoginLogoutLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := &auth.User{UID: "u1", Email: "ana@acme.com", Name: "Ana", Role: auth.RoleAdmin}

	f.repo.On("FindCredentialByEmail", ctx, "ana@acme.com").
		Return(&auth.Credential{UID: "u1", Email: "ana@acme.com", PasswordHash: hashed(t, "secret1")}, nil)
	f.repo.On("TouchUser", ctx, "u1").Return(user, nil)
	f.repo.On("FindUser", ctx, "u1").Return(user, nil)

	var seen []*auth.User
	unsubscribe := f.svc.ObserveAuthState(ctx, "u1", func(u *auth.User) { seen = append(seen, u) })
	defer unsubscribe()

	resp, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "ana@acme.com", Password: "secret1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "u1", resp.User.UID)

	claims, err := f.svc.ValidateToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.True(t, claims.IsAdmin())

	require.NoError(t, f.svc.Logout(ctx, claims.UID, claims.ID))

	_, err = f.svc.ValidateToken(ctx, resp.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerrors.ErrSessionExpired))

	require.Len(t, seen, 3)
	assert.Equal(t, "u1", seen[0].UID)
	assert.Equal(t, "u1", seen[1].UID)
	assert.Nil(t, seen[2])
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("WrongPassword", func(t *testing.T) {
		f := setup(t)
		f.repo.On("FindCredentialByEmail", ctx, "ana@acme.com").
			Return(&auth.Credential{UID: "u1", PasswordHash: hashed(t, "secret1")}, nil)

		_, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "ana@acme.com", Password: "nope", IPAddress: "10.0.0.1"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, xerrors.ErrUnauthorized))
		assert.Equal(t, "Erro ao fazer login: Email ou senha incorretos.", err.Error())
		f.repo.AssertNotCalled(t, "TouchUser", mock.Anything, mock.Anything)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		f := setup(t)
		f.repo.On("FindCredentialByEmail", ctx, "bob@acme.com").Return(nil, xerrors.ErrNotFound)

		_, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "bob@acme.com", Password: "secret1"})
		assert.True(t, errors.Is(err, xerrors.ErrUnauthorized))
	})

	t.Run("MissingProfile", func(t *testing.T) {
		f := setup(t)
		f.repo.On("FindCredentialByEmail", ctx, "ana@acme.com").
			Return(&auth.Credential{UID: "u1", PasswordHash: hashed(t, "secret1")}, nil)
		f.repo.On("TouchUser", ctx, "u1").Return(nil, xerrors.ErrNotFound)

		_, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "ana@acme.com", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, "Erro ao fazer login: Usuário não encontrado no sistema.", err.Error())
	})

	t.Run("RateLimited", func(t *testing.T) {
		f := setup(t)
		f.repo.On("FindCredentialByEmail", ctx, "ana@acme.com").
			Return(&auth.Credential{UID: "u1", PasswordHash: hashed(t, "secret1")}, nil)

		req := &auth.LoginRequest{Email: "ana@acme.com", Password: "nope", IPAddress: "10.0.0.1"}
		for i := 0; i < 5; i++ {
			_, err := f.svc.Login(ctx, req)
			require.True(t, errors.Is(err, xerrors.ErrUnauthorized))
		}

		_, err := f.svc.Login(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, xerrors.ErrRateLimited))
		f.repo.AssertNumberOfCalls(t, "FindCredentialByEmail", 5)
	})

	t.Run("RedisDown", func(t *testing.T) {
		f := setup(t)
		f.redis.Close()

		_, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "ana@acme.com", Password: "secret1", IPAddress: "10.0.0.1"})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Erro ao fazer login: "), err.Error())
		f.repo.AssertNotCalled(t, "FindCredentialByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	f := setup(t)

	_, err := f.svc.ValidateToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerrors.ErrSessionExpired))
}

// ========== Observation ==========

func TestAuthService_ObserveAuthStateDegradesToNil(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.repo.On("FindUser", ctx, "u1").Return(nil, errors.New("connection refused"))

	calls := 0
	var got *auth.User = &auth.User{}
	unsubscribe := f.svc.ObserveAuthState(ctx, "u1", func(u *auth.User) {
		calls++
		got = u
	})

	assert.Equal(t, 1, calls)
	assert.Nil(t, got)

	unsubscribe()
	f.hub.Publish("u1", &auth.User{UID: "u1"})
	assert.Equal(t, 1, calls)
}

func TestAuthService_ObserveAuthStateKeepsChangeDuringLookup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.repo.On("FindUser", ctx, "u1").
		Run(func(mock.Arguments) { f.hub.Publish("u1", &auth.User{UID: "u1", Name: "fresh"}) }).
		Return(&auth.User{UID: "u1", Name: "stale"}, nil)

	var seen []*auth.User
	unsubscribe := f.svc.ObserveAuthState(ctx, "u1", func(u *auth.User) { seen = append(seen, u) })
	defer unsubscribe()

	require.Len(t, seen, 1)
	assert.Equal(t, "fresh", seen[0].Name)

	f.hub.Publish("u1", nil)
	require.Len(t, seen, 2)
	assert.Nil(t, seen[1])
}

func TestStateHub(t *testing.T) {
	hub := NewStateHub(zap.NewNop())

	var forU1, forU2 []*auth.User
	var all []string
	hub.Subscribe("u1", func(u *auth.User) { forU1 = append(forU1, u) })
	hub.Subscribe("u2", func(u *auth.User) { forU2 = append(forU2, u) })
	hub.SubscribeAll(func(uid string, _ *auth.User) { all = append(all, uid) })

	hub.Publish("u1", &auth.User{UID: "u1"})
	assert.Len(t, forU1, 1)
	assert.Empty(t, forU2)
	assert.Equal(t, []string{"u1"}, all)

	hub.Close()
	require.Len(t, forU1, 2)
	assert.Nil(t, forU1[1])
	require.Len(t, forU2, 1)
	assert.Nil(t, forU2[0])

	hub.Publish("u1", &auth.User{UID: "u1"})
	assert.Len(t, forU1, 2)
	hub.Close()
}

// ========== Admin bootstrap ==========

func TestAuthService_EnsureAdminExists(t *testing.T) {
	ctx := context.Background()

	t.Run("NotConfigured", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.svc.EnsureAdminExists(ctx, "", "", ""))
		f.repo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyThere", func(t *testing.T) {
		f := setup(t)
		f.repo.On("ExistsByEmail", ctx, "admin@acme.com").Return(true, nil)
		require.NoError(t, f.svc.EnsureAdminExists(ctx, "Admin@Acme.com", "secret1", "Admin"))
		f.repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		f := setup(t)
		f.repo.On("ExistsByEmail", ctx, "admin@acme.com").Return(false, nil)
		f.repo.On("CreateAccount", ctx, mock.Anything,
			mock.MatchedBy(func(u *auth.User) bool { return u.Role == auth.RoleAdmin }),
		).Return(&auth.User{UID: "a1", Email: "admin@acme.com", Role: auth.RoleAdmin}, nil)

		require.NoError(t, f.svc.EnsureAdminExists(ctx, "admin@acme.com", "secret1", "Admin"))
		f.repo.AssertExpectations(t)
	})
}
