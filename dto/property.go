package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/kendall-kelly/estate-market-api/models"
)

// ImageResolver turns a stored image key into a URL a client can fetch
type ImageResolver func(key string) string

// PropertyResponse is the full view of a property listing
type PropertyResponse struct {
	ID                  uint      `json:"id"`
	Seller              uint      `json:"seller"`
	SellerName          string    `json:"seller_name"`
	Name                string    `json:"name"`
	Location            string    `json:"location"`
	Description         string    `json:"description"`
	Price               float64   `json:"price"`
	PropertyType        string    `json:"property_type"`
	Images              []string  `json:"images"`
	FurnishedStatus     *string   `json:"furnished_status"`
	FloorNumber         *uint     `json:"floor_number"`
	TotalFloors         *uint     `json:"total_floors"`
	PropertyAge         *string   `json:"property_age"`
	NearbyLandmarks     *string   `json:"nearby_landmarks"`
	ParkingAvailability *string   `json:"parking_availability"`
	SecurityFeatures    []string  `json:"security_features"`
	Amenities           []string  `json:"amenities"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewPropertyResponse maps a property; the seller association must be loaded
// for seller_name to be filled
func NewPropertyResponse(p models.Property, resolve ImageResolver) PropertyResponse {
	return PropertyResponse{
		ID:                  p.ID,
		Seller:              p.SellerID,
		SellerName:          p.Seller.Username,
		Name:                p.Name,
		Location:            p.Location,
		Description:         p.Description,
		Price:               p.Price,
		PropertyType:        p.PropertyType,
		Images:              resolveImages(p.Images, resolve),
		FurnishedStatus:     p.FurnishedStatus,
		FloorNumber:         p.FloorNumber,
		TotalFloors:         p.TotalFloors,
		PropertyAge:         p.PropertyAge,
		NearbyLandmarks:     p.NearbyLandmarks,
		ParkingAvailability: p.ParkingAvailability,
		SecurityFeatures:    nonNil(p.SecurityFeatures),
		Amenities:           nonNil(p.Amenities),
		CreatedAt:           p.CreatedAt,
	}
}

// NewPropertyResponses maps a list of properties
func NewPropertyResponses(props []models.Property, resolve ImageResolver) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, NewPropertyResponse(p, resolve))
	}
	return out
}

// WishlistItemResponse is one saved property
type WishlistItemResponse struct {
	ID       uint             `json:"id"`
	Property PropertyResponse `json:"property"`
}

// NewWishlistResponses maps wishlist rows with their preloaded properties
func NewWishlistResponses(items []models.Wishlist, resolve ImageResolver) []WishlistItemResponse {
	out := make([]WishlistItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, WishlistItemResponse{
			ID:       item.ID,
			Property: NewPropertyResponse(item.Property, resolve),
		})
	}
	return out
}

// resolveImages keeps absolute URLs as they are and resolves storage keys
func resolveImages(images models.StringList, resolve ImageResolver) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if resolve != nil && !isAbsoluteURL(img) {
			if url := resolve(img); url != "" {
				img = url
			}
		}
		out = append(out, img)
	}
	return out
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func nonNil(l models.StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}

// FlexibleList decodes either a JSON array of strings or a string holding
// a JSON-encoded array, which multipart clients send for list fields
type FlexibleList []string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexibleList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return errors.New("expected a list of strings")
	}
	if strings.TrimSpace(encoded) == "" {
		*f = FlexibleList{}
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return errors.New("invalid JSON format for list field")
	}
	*f = list
	return nil
}

// PropertyInput is the body accepted by create and update. Pointer fields
// distinguish "absent" from "zero" so PATCH can apply only what was sent.
type PropertyInput struct {
	Name                *string       `json:"name"`
	Location            *string       `json:"location"`
	Description         *string       `json:"description"`
	Price               *float64      `json:"price"`
	PropertyType        *string       `json:"property_type"`
	Images              *FlexibleList `json:"images"`
	FurnishedStatus     *string       `json:"furnished_status"`
	FloorNumber         *uint         `json:"floor_number"`
	TotalFloors         *uint         `json:"total_floors"`
	PropertyAge         *string       `json:"property_age"`
	NearbyLandmarks     *string       `json:"nearby_landmarks"`
	ParkingAvailability *string       `json:"parking_availability"`
	SecurityFeatures    *FlexibleList `json:"security_features"`
	Amenities           *FlexibleList `json:"amenities"`
}
