package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/services"
)

// Context keys set by EnsureValidToken
const (
	ContextUserID   = logger.FieldUserID
	ContextUsername = logger.FieldUsername
	ContextClaims   = "validated_claims"
)

// CustomClaims contains the non-registered claims of our tokens.
type CustomClaims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
}

// Validate rejects refresh tokens presented as bearer credentials.
func (c *CustomClaims) Validate(ctx context.Context) error {
	if c.TokenType != services.TokenTypeAccess {
		return errors.New("token is not an access token")
	}
	return nil
}

// EnsureValidToken is a middleware that checks the bearer token's signature,
// issuer, audience and expiry, and that it has not been revoked by logout.
func EnsureValidToken(cfg *config.Config, store services.TokenStore) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to set up the jwt validator")
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")

		body := `{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			body = `{"success":false,"error":{"code":"MISSING_TOKEN","message":"Authentication credentials were not provided."}}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			logger.Ctx(r.Context()).Warn().Err(writeErr).Msg("failed to write error response")
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false

		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			userID, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 64)
			if err != nil || userID == 0 {
				abortUnauthorized(c, "INVALID_TOKEN", "Failed to validate JWT.")
				return
			}

			if store != nil {
				revoked, err := store.IsRevoked(r.Context(), token.RegisteredClaims.ID)
				if err != nil {
					logger.Ctx(r.Context()).Error().Err(err).Msg("token revocation check failed")
					c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
						"success": false,
						"error": gin.H{
							"code":    "AUTH_UNAVAILABLE",
							"message": "Could not verify the token right now.",
						},
					})
					return
				}
				if revoked {
					abortUnauthorized(c, "TOKEN_REVOKED", "Token has been revoked.")
					return
				}
			}

			c.Request = r
			c.Set(ContextUserID, uint(userID))
			if custom, ok := token.CustomClaims.(*CustomClaims); ok {
				c.Set(ContextUsername, custom.Username)
			}
			c.Set(ContextClaims, token)

			passed = true
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetUserID extracts the authenticated user's id from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok || id == 0 {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not valid"}
	}

	return id, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
