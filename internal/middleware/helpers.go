// internal/middleware/helpers.go
package middleware

import (
	"warmup-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// GetUID gets the authenticated user id from context
func GetUID(c *gin.Context) (string, bool) {
	return getString(c, ctxUID)
}

// GetJTI gets the token id from context
func GetJTI(c *gin.Context) (string, bool) {
	return getString(c, ctxJTI)
}

// GetRole gets the user role from context
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ctxRole)
}

// GetClaims gets the verified token claims from context
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// MustGetUID gets the user id from context or panics
func MustGetUID(c *gin.Context) string {
	uid, exists := GetUID(c)
	if !exists {
		panic("uid not found in context")
	}
	return uid
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(ctxUID)
	return exists
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	role, _ := GetRole(c)
	return role == "admin"
}

// GetRequestID returns the id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	id, _ := getString(c, ctxRequestID)
	return id
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
