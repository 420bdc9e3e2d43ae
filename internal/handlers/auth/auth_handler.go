// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"warmup-service/internal/domain/auth"
	"warmup-service/internal/middleware"
	"warmup-service/internal/pkg/response"
	authUsecase "warmup-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// Register handles user registration (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", user)
}

// ========== Login ==========

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Session ==========

// Logout ends the session of the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	uid, _ := middleware.GetUID(c)
	jti, ok := middleware.GetJTI(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), uid, jti); err != nil {
		h.logger.Error("logout failed", zap.String("uid", uid), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// Me returns the profile of the signed-in user
func (h *AuthHandler) Me(c *gin.Context) {
	uid, ok := middleware.GetUID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, http.StatusOK, "user retrieved", user)
}
