package models

import (
	"time"
)

// Property is a listing owned by a seller
type Property struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	SellerID            uint       `gorm:"not null;index" json:"seller_id"`
	Seller              User       `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	Location            string     `gorm:"size:255;not null" json:"location"`
	Description         string     `gorm:"type:text;not null" json:"description"`
	Price               float64    `gorm:"type:decimal(10,2);not null" json:"price"`
	PropertyType        string     `gorm:"size:50;not null" json:"property_type"` // "sell" or "rent"
	Images              StringList `json:"images"`                                // image URLs or storage keys
	FurnishedStatus     *string    `gorm:"size:50" json:"furnished_status"`
	FloorNumber         *uint      `json:"floor_number"`
	TotalFloors         *uint      `json:"total_floors"`
	PropertyAge         *string    `gorm:"size:50" json:"property_age"`
	NearbyLandmarks     *string    `gorm:"size:255" json:"nearby_landmarks"`
	ParkingAvailability *string    `gorm:"size:50" json:"parking_availability"`
	SecurityFeatures    StringList `json:"security_features"`
	Amenities           StringList `json:"amenities"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Property model
func (Property) TableName() string {
	return "properties"
}

// Wishlist records that a user saved a property
type Wishlist struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_property" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_property;index" json:"property_id"`
	Property   Property  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the Wishlist model
func (Wishlist) TableName() string {
	return "wishlists"
}
