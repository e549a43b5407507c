package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/models"
	"github.com/kendall-kelly/estate-market-api/services"
)

func wishlistService() *services.WishlistService {
	return services.NewWishlistService(config.GetDB())
}

// GetWishlist handles GET /api/properties/wishlist
func GetWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := wishlistService().List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.NewWishlistResponses(items, imageResolver(c)))
}

// AddToWishlist handles POST /api/properties/wishlist/add
func AddToWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.WishlistAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := wishlistService().Add(c.Request.Context(), userID, uint(req.Property))
	if err != nil {
		respondError(c, err)
		return
	}

	items := dto.NewWishlistResponses([]models.Wishlist{*item}, imageResolver(c))
	respondSuccess(c, http.StatusCreated, items[0])
}

// RemoveFromWishlist handles DELETE /api/properties/wishlist/remove/:property_id
func RemoveFromWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	propertyID, ok := parseIDParam(c, "property_id", "WISHLIST_ITEM_NOT_FOUND", "Property is not in your wishlist.")
	if !ok {
		return
	}

	if err := wishlistService().Remove(c.Request.Context(), userID, propertyID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
