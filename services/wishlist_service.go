package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/estate-market-api/models"
	"gorm.io/gorm"
)

var errAlreadyInWishlist = newError(ErrConflict, "ALREADY_IN_WISHLIST", "Property is already in your wishlist.")

// WishlistService manages the properties a user has saved
type WishlistService struct {
	db *gorm.DB
}

// NewWishlistService creates a wishlist service backed by db
func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// List returns userID's saved properties, most recent first
func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.Wishlist, error) {
	var items []models.Wishlist
	err := s.db.WithContext(ctx).
		Preload("Property").
		Preload("Property.Seller").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}

// Add saves propertyID for userID
func (s *WishlistService) Add(ctx context.Context, userID, propertyID uint) (*models.Wishlist, error) {
	if propertyID == 0 {
		return nil, ValidationError("A property is required.")
	}

	db := s.db.WithContext(ctx)

	var property models.Property
	if err := db.Preload("Seller").First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	item := models.Wishlist{UserID: userID, PropertyID: propertyID}
	if err := db.Omit("User", "Property").Create(&item).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, errAlreadyInWishlist
		}
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	item.Property = property
	return &item, nil
}

// Remove deletes userID's wishlist entry for propertyID
func (s *WishlistService) Remove(ctx context.Context, userID, propertyID uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Wishlist{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NotFoundError("WISHLIST_ITEM_NOT_FOUND", "Property is not in your wishlist.")
	}
	return nil
}
