// internal/services/main_test.go
package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahianova/ahianova-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Farmer{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Review{},
		&models.ReviewHelpfulVote{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      models.UserRoleBuyer,
	}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestFarmer(t *testing.T, db *gorm.DB, email string) *models.Farmer {
	t.Helper()

	farmer := &models.Farmer{
		FirstName:   "Ama",
		LastName:    "Mensah",
		Email:       email,
		PhoneNumber: "+233200000000",
		FarmName:    "Green Valley Farm",
		FarmRegion:  "Ashanti",
		IsActive:    true,
	}
	require.NoError(t, db.Create(farmer).Error)
	return farmer
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:        name,
		Description: "Fresh " + name,
		Image:       "https://cdn.example.com/" + models.Slugify(name) + ".jpg",
		Color:       "#4CAF50",
		IsActive:    true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, farmer *models.Farmer, category *models.Category, quantity int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:             "Fresh Tomatoes " + uuid.NewString()[:8],
		Description:      "Vine ripened tomatoes from the farm",
		Image:            "https://cdn.example.com/tomatoes.jpg",
		CategoryID:       category.ID,
		CategoryName:     category.Name,
		Price:            4.50,
		Quantity:         quantity,
		Unit:             models.UnitKg,
		Availability:     models.AvailabilityForQuantity(quantity),
		Origin:           "Kumasi",
		FarmerID:         farmer.ID,
		FarmerName:       farmer.FullName(),
		HarvestDate:      time.Now().AddDate(0, 0, -2),
		IsActive:         true,
		MinOrderQuantity: 1,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
