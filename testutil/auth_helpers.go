package testutil

import (
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/middleware"
	"github.com/kendall-kelly/estate-market-api/services"
)

// MockValidatedClaims builds the claims EnsureValidToken stores for an access token
func MockValidatedClaims(userID uint, username string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: fmt.Sprintf("%d", userID),
			ID:      fmt.Sprintf("test-jti-%d", userID),
			Expiry:  time.Now().Add(time.Hour).Unix(),
		},
		CustomClaims: &middleware.CustomClaims{
			Username:  username,
			TokenType: services.TokenTypeAccess,
		},
	}
}

// SetMockAuthContext sets up an authenticated context the way EnsureValidToken does
func SetMockAuthContext(c *gin.Context, userID uint, username string) {
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextUsername, username)
	c.Set(middleware.ContextClaims, MockValidatedClaims(userID, username))
}

// MockAuthMiddleware authenticates every request as userID
func MockAuthMiddleware(userID uint, username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, username)
		c.Next()
	}
}
