package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/middleware"
	"github.com/kendall-kelly/estate-market-api/services"
)

func accountService() *services.AccountService {
	return services.NewAccountService(config.GetDB(), tokenManager(), services.GetTokenStore())
}

// Signup handles POST /api/auth/signup - registers a new account
func Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := accountService().Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, dto.NewUserResponse(*user))
}

// Login handles POST /api/auth/login - exchanges credentials for a token pair
func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pair, err := accountService().Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, pair)
}

// RefreshToken handles POST /api/auth/token/refresh - rotates a refresh token
func RefreshToken(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pair, err := accountService().Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, pair)
}

// Logout handles POST /api/auth/logout - revokes the presented access token
// and, when supplied, the refresh token
func Logout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	var jti string
	var expiry time.Time
	if claims, err := middleware.GetClaims(c); err == nil {
		jti = claims.RegisteredClaims.ID
		if claims.RegisteredClaims.Expiry > 0 {
			expiry = time.Unix(claims.RegisteredClaims.Expiry, 0)
		}
	}

	if err := accountService().Logout(c.Request.Context(), userID, jti, expiry, req.Refresh); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Successfully logged out."})
}

// GetCurrentUser handles GET /api/auth/me - returns the authenticated account
func GetCurrentUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := accountService().Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.NewUserResponse(*user))
}
