// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"warmup-service/internal/config"
	"warmup-service/internal/db"
	domainAuth "warmup-service/internal/domain/auth"
	authHandler "warmup-service/internal/handlers/auth"
	clientHandler "warmup-service/internal/handlers/client"
	dashboardHandler "warmup-service/internal/handlers/dashboard"
	healthHandler "warmup-service/internal/handlers/health"
	numberHandler "warmup-service/internal/handlers/number"
	"warmup-service/internal/middleware"
	"warmup-service/internal/pkg/jwt"
	"warmup-service/internal/pkg/metrics"
	"warmup-service/internal/pkg/session"
	"warmup-service/internal/repository/postgres"
	authUsecase "warmup-service/internal/service/auth"
	clientUsecase "warmup-service/internal/service/client"
	dashboardUsecase "warmup-service/internal/service/dashboard"
	numberUsecase "warmup-service/internal/service/number"
	"warmup-service/migrations"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

type Server struct {
	cfg         config.AppConfig
	engine      *gin.Engine
	httpServer  *http.Server
	logger      *zap.Logger
	pool        *pgxpool.Pool
	redisClient redis.UniversalClient
	hub         *authUsecase.StateHub
	authService *authUsecase.AuthService
	done        chan struct{}

	// mu guards the fields Start fills in while Shutdown may run from another goroutine.
	mu           sync.Mutex
	closed       bool
	shutdownOnce sync.Once
	shutdownErr  error
}

func NewServer(cfg config.AppConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		cfg:    cfg,
		engine: gin.New(),
		done:   make(chan struct{}),
	}
}

// Start wires every dependency and blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := newLogger(s.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	if !s.own(func() { s.logger = logger }) {
		return nil
	}

	// ----- Migrations -----
	if s.cfg.RunMigrations {
		if err := migrations.Up(s.cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if !s.own(func() { s.pool = pool }) {
		pool.Close()
		return nil
	}
	logger.Info("connected to postgres")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(s.cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if !s.own(func() { s.redisClient = redisClient }) {
		_ = redisClient.Close()
		return nil
	}
	logger.Info("connected to redis", zap.Strings("addresses", s.cfg.Redis.Addresses))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient, logger)
	loginLimiter := session.NewRateLimiter(redisClient)

	// ----- Metrics -----
	m := metrics.New()

	// ----- Auth state hub -----
	hub := authUsecase.NewStateHub(logger)
	if !s.own(func() { s.hub = hub }) {
		hub.Close()
		return nil
	}
	hub.SubscribeAll(func(uid string, user *domainAuth.User) {
		logger.Debug("auth state changed", zap.String("uid", uid), zap.Bool("signed_in", user != nil))
	})

	// ----- Repositories -----
	authRepo := postgres.NewAuthRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	numberRepo := postgres.NewNumberRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(
		authRepo,
		jwtManager,
		sessionManager,
		loginLimiter,
		hub,
		m,
		logger,
	)
	s.authService = authService

	clientService := clientUsecase.NewClientService(clientRepo, logger)
	numberService := numberUsecase.NewNumberService(numberRepo, m, logger)
	dashboardService := dashboardUsecase.NewDashboardService(dashboardRepo, logger)

	// ----- Initialize Admin -----
	if err := s.initializeAdmin(); err != nil {
		logger.Error("failed to initialize admin", zap.Error(err))
	}

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)
	apiLimiter := middleware.NewRateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst, logger)
	apiLimiter.StartCleanup(10*time.Minute, s.done)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestID(),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(m),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
		apiLimiter.Handler(),
	)

	// ----- Health checks -----
	healthChecks := map[string]healthHandler.Check{
		"postgres": postgres.NewDB(pool).Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:      authHandler.NewAuthHandler(authService, logger),
		ClientHandler:    clientHandler.NewClientHandler(clientService),
		NumberHandler:    numberHandler.NewNumberHandler(numberService),
		DashboardHandler: dashboardHandler.NewDashboardHandler(dashboardService),
		HealthHandler:    healthHandler.NewHealthHandler(version, healthChecks, logger),
		AuthMiddleware:   authMiddleware,
		Metrics:          m,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	httpServer := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if !s.own(func() { s.httpServer = httpServer }) {
		return nil
	}

	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// own records a resource Start just opened. It reports false once Shutdown has begun, and
// the caller then releases the resource itself.
func (s *Server) own(assign func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	assign()
	return true
}

// Shutdown drains HTTP, signs out every auth observer and closes the pools. Only the first
// call does the work; later calls return its result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.shutdown(ctx)
	})
	return s.shutdownErr
}

func (s *Server) shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	httpServer, hub, redisClient, pool, logger := s.httpServer, s.hub, s.redisClient, s.pool, s.logger
	s.mu.Unlock()

	var shutdownErr error
	if httpServer != nil {
		shutdownErr = httpServer.Shutdown(ctx)
	}

	close(s.done)

	if hub != nil {
		hub.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil && logger != nil {
			logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}

	return shutdownErr
}

// initializeAdmin creates the configured admin if it doesn't exist
func (s *Server) initializeAdmin() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		s.logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	if err := s.authService.EnsureAdminExists(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.AdminName); err != nil {
		return fmt.Errorf("failed to ensure admin exists: %w", err)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = lvl
	}
	return zcfg.Build()
}
