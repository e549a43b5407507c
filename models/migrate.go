package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables for every model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Property{},
		&Wishlist{},
		&ChatRoom{},
		&ChatMessage{},
	)
}
