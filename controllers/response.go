package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/middleware"
	"github.com/kendall-kelly/estate-market-api/services"
	"github.com/kendall-kelly/estate-market-api/utils"
)

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.PureJSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondErrorCode(c *gin.Context, status int, code, message string) {
	c.PureJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError maps a service error onto the response envelope
func respondError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondErrorCode(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}

	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		respondErrorCode(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(svcErr, services.ErrValidation),
		errors.Is(svcErr, services.ErrSelfContact),
		errors.Is(svcErr, services.ErrNotParticipant),
		errors.Is(svcErr, services.ErrNotSender):
		status = http.StatusBadRequest
	case errors.Is(svcErr, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(svcErr, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(svcErr, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(svcErr, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	respondErrorCode(c, status, svcErr.Code, svcErr.Message)
}

func respondBadRequest(c *gin.Context, message string) {
	respondErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

// requireUser returns the authenticated user id or writes a 401
func requireUser(c *gin.Context) (uint, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return 0, false
	}
	return userID, true
}

// parseIDParam reads a positive integer path parameter, writing a 404 with
// notFoundCode when it is malformed
func parseIDParam(c *gin.Context, name, notFoundCode, notFoundMessage string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondErrorCode(c, http.StatusNotFound, notFoundCode, notFoundMessage)
		return 0, false
	}
	return uint(id), true
}

func imageResolver(c *gin.Context) func(string) string {
	return services.ImageResolver(c.Request.Context(), services.GetImageService())
}

func tokenManager() *services.TokenManager {
	cfg := config.GetConfig()
	return services.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}
