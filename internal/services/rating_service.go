// internal/services/rating_service.go
package services

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
)

// RatingService is the single canonical computation of rating aggregates.
// Farmer.AverageRating/TotalReviews and Product.Rating/ReviewCount are
// written here and nowhere else.
type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

type ratingStats struct {
	Total   int64
	Average float64
}

// RecomputeFarmerRating scans the farmer's approved reviews and writes the
// count and the mean rating (rounded half away from zero to one decimal)
// back onto the farmer record. Zero approved reviews store 0/0. The
// operation is idempotent.
func (s *RatingService) RecomputeFarmerRating(farmerID uuid.UUID) error {
	stats, err := s.approvedStats("farmer_id", farmerID)
	if err != nil {
		return fmt.Errorf("failed to aggregate farmer reviews: %w", err)
	}

	result := s.db.Model(&models.Farmer{}).
		Where("id = ?", farmerID).
		UpdateColumns(map[string]interface{}{
			"average_rating": stats.Average,
			"total_reviews":  stats.Total,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to write farmer rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFarmerNotFound
	}
	return nil
}

// RecomputeProductRating is the product-scoped counterpart, fed by approved
// reviews that reference the product.
func (s *RatingService) RecomputeProductRating(productID uuid.UUID) error {
	stats, err := s.approvedStats("product_id", productID)
	if err != nil {
		return fmt.Errorf("failed to aggregate product reviews: %w", err)
	}

	result := s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"rating":       stats.Average,
			"review_count": stats.Total,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to write product rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *RatingService) approvedStats(column string, id uuid.UUID) (ratingStats, error) {
	var row struct {
		Total   int64
		Average float64
	}

	err := s.db.Model(&models.Review{}).
		Where(column+" = ? AND status = ?", id, models.ModerationStatusApproved).
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average").
		Scan(&row).Error
	if err != nil {
		return ratingStats{}, err
	}

	stats := ratingStats{Total: row.Total}
	if row.Total > 0 {
		stats.Average = roundToOneDecimal(row.Average)
	}
	return stats, nil
}

// roundToOneDecimal rounds half away from zero.
func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
