package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/services"
	"golang.org/x/sync/errgroup"
)

const (
	propertyNotFoundCode    = "PROPERTY_NOT_FOUND"
	propertyNotFoundMessage = "Property not found."
)

func propertyService() *services.PropertyService {
	return services.NewPropertyService(config.GetDB())
}

// ListProperties handles GET /api/properties - lists properties newest first,
// optionally leaving out those sold by ?exclude_user=<id>
func ListProperties(c *gin.Context) {
	var exclude uint
	if raw := c.Query("exclude_user"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, "exclude_user must be a positive integer")
			return
		}
		exclude = uint(id)
	}

	properties, err := propertyService().List(c.Request.Context(), exclude)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.NewPropertyResponses(properties, imageResolver(c)))
}

// ListMyProperties handles GET /api/properties/user - lists the caller's listings
func ListMyProperties(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	properties, err := propertyService().ListBySeller(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.NewPropertyResponses(properties, imageResolver(c)))
}

// GetProperty handles GET /api/properties/:id
func GetProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id", propertyNotFoundCode, propertyNotFoundMessage)
	if !ok {
		return
	}

	property, err := propertyService().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.NewPropertyResponse(*property, imageResolver(c)))
}

// CreateProperty handles POST /api/properties - lists a property for the caller
func CreateProperty(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input dto.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	property, err := propertyService().Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, dto.NewPropertyResponse(*property, imageResolver(c)))
}

// UpdateProperty handles PUT and PATCH /api/properties/:id. PUT requires the
// full set of required fields; PATCH applies only what was sent.
func UpdateProperty(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id", propertyNotFoundCode, propertyNotFoundMessage)
	if !ok {
		return
	}

	var input dto.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	partial := c.Request.Method == http.MethodPatch
	property, err := propertyService().Update(c.Request.Context(), userID, id, input, partial)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.NewPropertyResponse(*property, imageResolver(c)))
}

// DeleteProperty handles DELETE /api/properties/:id and removes the stored images
func DeleteProperty(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id", propertyNotFoundCode, propertyNotFoundMessage)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	property, err := propertyService().Delete(ctx, userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	deletePropertyImages(ctx, property.Images)
	c.Status(http.StatusNoContent)
}

// deletePropertyImages removes stored images in parallel. Failures are logged
// and never fail the request since the row is already gone.
func deletePropertyImages(ctx context.Context, keys []string) {
	images := services.GetImageService()
	if images == nil || len(keys) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(4)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			if err := images.DeleteImage(ctx, key); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete property image")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// UploadPropertyImage handles POST /api/properties/:id/images - attaches an
// image sent as multipart field "image"
func UploadPropertyImage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id", propertyNotFoundCode, propertyNotFoundMessage)
	if !ok {
		return
	}

	images := services.GetImageService()
	if images == nil {
		respondErrorCode(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Image storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "An image file is required in field 'image'")
		return
	}

	ctx := c.Request.Context()
	svc := propertyService()

	// check ownership before anything is written to storage
	property, err := svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if property.SellerID != userID {
		respondErrorCode(c, http.StatusForbidden, "FORBIDDEN", "You can only modify your own properties.")
		return
	}

	key, err := images.UploadImage(ctx, id, fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}

	property, err = svc.AddImage(ctx, userID, id, key)
	if err != nil {
		if delErr := images.DeleteImage(ctx, key); delErr != nil {
			logger.Ctx(ctx).Warn().Err(delErr).Str("key", key).Msg("failed to clean up orphaned image")
		}
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, dto.NewPropertyResponse(*property, imageResolver(c)))
}
