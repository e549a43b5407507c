package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/kendall-kelly/estate-market-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceTestDB opens a private in-memory database with every table migrated
func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestProperty(t *testing.T, db *gorm.DB, seller models.User, name string) models.Property {
	t.Helper()

	property := models.Property{
		SellerID:     seller.ID,
		Name:         name,
		Location:     "Mumbai",
		Description:  "A test listing",
		Price:        450000,
		PropertyType: "sell",
		Images:       models.StringList{"properties/1/front.png"},
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}

// fixedClock returns a clock whose time only moves when advanced
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.t
}
