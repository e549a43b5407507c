package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/models"
	"gorm.io/gorm"
)

var (
	errPropertyNotFound = NotFoundError("PROPERTY_NOT_FOUND", "Property not found.")
	errNotPropertyOwner = newError(ErrForbidden, "FORBIDDEN", "You can only modify your own properties.")
)

// PropertyService manages property listings
type PropertyService struct {
	db *gorm.DB
}

// NewPropertyService creates a property service backed by db
func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{db: db}
}

// List returns all properties newest first, skipping those sold by excludeSellerID when non-zero
func (s *PropertyService) List(ctx context.Context, excludeSellerID uint) ([]models.Property, error) {
	query := s.db.WithContext(ctx).Preload("Seller").Order("created_at DESC, id DESC")
	if excludeSellerID != 0 {
		query = query.Where("seller_id <> ?", excludeSellerID)
	}

	var properties []models.Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// ListBySeller returns the properties listed by sellerID
func (s *PropertyService) ListBySeller(ctx context.Context, sellerID uint) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.WithContext(ctx).
		Preload("Seller").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list seller properties: %w", err)
	}
	return properties, nil
}

// Get returns a single property with its seller
func (s *PropertyService) Get(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := s.db.WithContext(ctx).Preload("Seller").First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return &property, nil
}

// Create lists a new property owned by sellerID
func (s *PropertyService) Create(ctx context.Context, sellerID uint, input dto.PropertyInput) (*models.Property, error) {
	property := models.Property{SellerID: sellerID}
	applyPropertyInput(&property, input)

	if err := validateProperty(&property); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	logger.Ctx(ctx).Info().Uint(logger.FieldPropertyID, property.ID).Msg("property created")
	return s.Get(ctx, property.ID)
}

// Update applies input to a property owned by requesterID. With partial set,
// only fields present in input change; otherwise the required fields must all be sent.
func (s *PropertyService) Update(ctx context.Context, requesterID, id uint, input dto.PropertyInput, partial bool) (*models.Property, error) {
	property, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	if !partial {
		if input.Name == nil || input.Location == nil || input.Description == nil || input.Price == nil || input.PropertyType == nil {
			return nil, ValidationError("name, location, description, price and property_type are required.")
		}
	}

	applyPropertyInput(property, input)
	if err := validateProperty(property); err != nil {
		return nil, err
	}

	property.Seller = models.User{}
	if err := s.db.WithContext(ctx).Omit("Seller").Save(property).Error; err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	logger.Ctx(ctx).Info().Uint(logger.FieldPropertyID, property.ID).Msg("property updated")
	return s.Get(ctx, property.ID)
}

// AddImage appends a stored image key to a property owned by requesterID
func (s *PropertyService) AddImage(ctx context.Context, requesterID, id uint, imageKey string) (*models.Property, error) {
	property, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	images := append(models.StringList{}, property.Images...)
	images = append(images, imageKey)

	err = s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", property.ID).
		Update("images", images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to attach image: %w", err)
	}
	return s.Get(ctx, property.ID)
}

// Delete removes a property owned by requesterID. Chat rooms about it lose
// their property reference and wishlist entries for it are removed.
func (s *PropertyService) Delete(ctx context.Context, requesterID, id uint) (*models.Property, error) {
	property, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ChatRoom{}).Where("property_id = ?", id).Update("property_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach chat rooms: %w", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return fmt.Errorf("failed to remove wishlist entries: %w", err)
		}
		if err := tx.Delete(&models.Property{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete property: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Uint(logger.FieldPropertyID, id).Msg("property deleted")
	return property, nil
}

func (s *PropertyService) owned(ctx context.Context, requesterID, id uint) (*models.Property, error) {
	property, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if property.SellerID != requesterID {
		return nil, errNotPropertyOwner
	}
	return property, nil
}

func applyPropertyInput(p *models.Property, in dto.PropertyInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.PropertyType != nil {
		p.PropertyType = strings.ToLower(strings.TrimSpace(*in.PropertyType))
	}
	if in.Images != nil {
		p.Images = models.StringList(*in.Images)
	}
	if in.FurnishedStatus != nil {
		p.FurnishedStatus = in.FurnishedStatus
	}
	if in.FloorNumber != nil {
		p.FloorNumber = in.FloorNumber
	}
	if in.TotalFloors != nil {
		p.TotalFloors = in.TotalFloors
	}
	if in.PropertyAge != nil {
		p.PropertyAge = in.PropertyAge
	}
	if in.NearbyLandmarks != nil {
		p.NearbyLandmarks = in.NearbyLandmarks
	}
	if in.ParkingAvailability != nil {
		p.ParkingAvailability = in.ParkingAvailability
	}
	if in.SecurityFeatures != nil {
		p.SecurityFeatures = models.StringList(*in.SecurityFeatures)
	}
	if in.Amenities != nil {
		p.Amenities = models.StringList(*in.Amenities)
	}
}

const maxPrice = 99999999.99

func validateProperty(p *models.Property) error {
	switch {
	case p.Name == "":
		return ValidationError("name is required.")
	case len(p.Name) > 255:
		return ValidationError("name must be at most 255 characters.")
	case p.Location == "":
		return ValidationError("location is required.")
	case len(p.Location) > 255:
		return ValidationError("location must be at most 255 characters.")
	case strings.TrimSpace(p.Description) == "":
		return ValidationError("description is required.")
	case p.Price <= 0:
		return ValidationError("price must be greater than 0.")
	case p.Price > maxPrice:
		return ValidationError("price must have at most 10 digits.")
	case p.PropertyType == "":
		return ValidationError("property_type is required.")
	case len(p.PropertyType) > 50:
		return ValidationError("property_type must be at most 50 characters.")
	}
	if p.FloorNumber != nil && p.TotalFloors != nil && *p.FloorNumber > *p.TotalFloors {
		return ValidationError("floor_number cannot exceed total_floors.")
	}
	return nil
}
