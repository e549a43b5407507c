package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/models"
	"github.com/kendall-kelly/estate-market-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter() *gin.Engine {
	router := setupTestRouter()
	router.POST("/api/auth/signup", Signup)
	router.POST("/api/auth/login", Login)
	router.POST("/api/auth/token/refresh", RefreshToken)
	return router
}

func signupTestUser(t *testing.T, router *gin.Engine, username, password string) dto.UserResponse {
	t.Helper()

	w := performRequest(router, "POST", "/api/auth/signup", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user dto.UserResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &user))
	return user
}

func TestSignup(t *testing.T) {
	setupTestDB(t)
	router := authRouter()

	user := signupTestUser(t, router, "asha", "s3cret-pass")
	assert.Equal(t, "asha", user.Username)
	assert.Equal(t, "asha@example.com", user.Email)

	testCases := []struct {
		name           string
		body           gin.H
		expectedStatus int
		expectedCode   string
	}{
		{"duplicate username", gin.H{"username": "asha", "email": "other@example.com", "password": "s3cret-pass"}, http.StatusConflict, "USER_EXISTS"},
		{"short password", gin.H{"username": "ravi", "email": "ravi@example.com", "password": "short"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad email", gin.H{"username": "ravi", "email": "nope", "password": "s3cret-pass"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad username", gin.H{"username": "has space", "email": "ravi@example.com", "password": "s3cret-pass"}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/api/auth/signup", tc.body)
			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedCode, decodeEnvelope(t, w).Error.Code)
		})
	}
}

func TestLoginAndRefresh(t *testing.T) {
	setupTestDB(t)
	router := authRouter()
	signupTestUser(t, router, "asha", "s3cret-pass")

	w := performRequest(router, "POST", "/api/auth/login", gin.H{"username": "asha", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	assert.Equal(t, "No active account found with the given credentials.", resp.Error.Message)

	w = performRequest(router, "POST", "/api/auth/login", gin.H{"username": "asha", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair dto.TokenPair
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &pair))
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.Equal(t, "asha", pair.Username)

	w = performRequest(router, "POST", "/api/auth/token/refresh", gin.H{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rotated dto.TokenPair
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &rotated))
	assert.NotEmpty(t, rotated.Access)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	// The old refresh token was revoked by rotation
	w = performRequest(router, "POST", "/api/auth/token/refresh", gin.H{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeEnvelope(t, w).Error.Code)

	// An access token cannot be used to refresh
	w = performRequest(router, "POST", "/api/auth/token/refresh", gin.H{"refresh": rotated.Access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutAndMe(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "asha")

	router := setupTestRouter()
	protected := router.Group("/api/auth", mockAuthMiddleware(user.ID, user.Username))
	protected.POST("/logout", Logout)
	protected.GET("/me", GetCurrentUser)

	w := performRequest(router, "GET", "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.UserResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &me))
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "asha", me.Username)

	w = performRequest(router, "POST", "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	revoked, err := services.GetTokenStore().IsRevoked(context.Background(), fmt.Sprintf("test-jti-%d", user.ID))
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)
	w = performRequest(router, "GET", "/api/auth/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", decodeEnvelope(t, w).Error.Code)
}
