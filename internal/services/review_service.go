// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

// ReviewService owns review writes, moderation transitions, and the
// helpfulness votes. Review.HelpfulCount is always set to the recounted
// cardinality of the vote table, never incremented independently.
type ReviewService struct {
	db          *gorm.DB
	coordinator *Coordinator
}

type CreateReviewRequest struct {
	FarmerID  uuid.UUID  `json:"farmer_id" validate:"required"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Rating    int        `json:"rating" validate:"required,min=1,max=5"`
	Title     string     `json:"title,omitempty" validate:"omitempty,max=100"`
	Comment   string     `json:"comment,omitempty" validate:"omitempty,max=1000"`
	Images    []string   `json:"images,omitempty"`
}

type UpdateReviewRequest struct {
	Rating  int      `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title   string   `json:"title,omitempty" validate:"omitempty,max=100"`
	Comment string   `json:"comment,omitempty" validate:"omitempty,max=1000"`
	Images  []string `json:"images,omitempty"`
}

type ModerateReviewRequest struct {
	Status models.ModerationStatus `json:"status" validate:"required,oneof=pending approved rejected flagged"`
}

type ReportReviewRequest struct {
	Reason  models.ReportReason `json:"reason" validate:"required,oneof=inappropriate spam fake offensive other"`
	Details string              `json:"details,omitempty" validate:"omitempty,max=200"`
}

type RespondToReviewRequest struct {
	Comment string `json:"comment" validate:"required,max=500"`
}

func NewReviewService(db *gorm.DB, coordinator *Coordinator) *ReviewService {
	return &ReviewService{db: db, coordinator: coordinator}
}

// CreateReview inserts a buyer's review of a farmer. A buyer may review a
// farmer only once; the unique (buyer, farmer) index backs the check against
// concurrent inserts. New reviews go live as approved and immediately drive
// a rating recompute.
func (s *ReviewService) CreateReview(buyerID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var farmer models.Farmer
	if err := s.db.First(&farmer, "id = ?", req.FarmerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.ProductID != nil {
		var count int64
		if err := s.db.Model(&models.Product{}).Where("id = ?", *req.ProductID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return nil, ErrProductNotFound
		}
	}

	var existing int64
	if err := s.db.Model(&models.Review{}).
		Where("buyer_id = ? AND farmer_id = ?", buyerID, req.FarmerID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateReview
	}

	review := &models.Review{
		FarmerID:  req.FarmerID,
		BuyerID:   buyerID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Images:    req.Images,
		Status:    models.ModerationStatusApproved,
	}

	if req.OrderID != nil {
		review.IsVerifiedPurchase = s.isVerifiedPurchase(buyerID, *req.OrderID, req.ProductID)
	}

	if err := s.db.Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.coordinator.ReviewCreated(review)

	return review, nil
}

// UpdateReview lets the authoring buyer edit rating and text. A rating edit
// on an approved review triggers a recompute.
func (s *ReviewService) UpdateReview(reviewID, buyerID uuid.UUID, req *UpdateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if review.BuyerID != buyerID {
		return nil, ErrNotOwner
	}

	before := review

	updates := make(map[string]interface{})
	if req.Rating != 0 {
		updates["rating"] = req.Rating
		review.Rating = req.Rating
	}
	if req.Title != "" {
		updates["title"] = req.Title
		review.Title = req.Title
	}
	if req.Comment != "" {
		updates["comment"] = req.Comment
		review.Comment = req.Comment
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
		review.Images = req.Images
	}

	if len(updates) == 0 {
		return &review, nil
	}

	if err := s.db.Model(&models.Review{}).Where("id = ?", reviewID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.coordinator.ReviewUpdated(&before, &review)

	return &review, nil
}

// DeleteReview removes a review. Deleting an approved review recomputes the
// aggregates exactly as a transition out of approved would. The helpful
// votes go with it.
func (s *ReviewService) DeleteReview(reviewID, actorID uuid.UUID, isAdmin bool) error {
	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if !isAdmin && review.BuyerID != actorID {
		return ErrNotOwner
	}

	// Hard delete so the (buyer, farmer) unique slot frees up for a future
	// review.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("review_id = ?", reviewID).Delete(&models.ReviewHelpfulVote{}).Error; err != nil {
			return fmt.Errorf("failed to delete helpful votes: %w", err)
		}
		if err := tx.Unscoped().Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.coordinator.ReviewDeleted(&review)

	return nil
}

// ModerateReview applies an admin-driven moderation transition. Moves to or
// from approved recompute the aggregates.
func (s *ReviewService) ModerateReview(reviewID, adminID uuid.UUID, req *ModerateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	before := review
	now := time.Now()

	review.Status = req.Status
	review.ModeratedBy = &adminID
	review.ModeratedAt = &now

	if err := s.db.Model(&models.Review{}).Where("id = ?", reviewID).Updates(map[string]interface{}{
		"status":       req.Status,
		"moderated_by": adminID,
		"moderated_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to moderate review: %w", err)
	}

	s.coordinator.ReviewUpdated(&before, &review)

	return &review, nil
}

// RespondToReview records the farmer's public reply.
func (s *ReviewService) RespondToReview(reviewID uuid.UUID, req *RespondToReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	review.FarmerResponse = req.Comment
	review.FarmerRespondedAt = &now

	if err := s.db.Model(&models.Review{}).Where("id = ?", reviewID).Updates(map[string]interface{}{
		"farmer_response":     req.Comment,
		"farmer_responded_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to save farmer response: %w", err)
	}

	return &review, nil
}

// ReportReview flags a review for moderator attention. Reporting does not
// change the moderation status; only admins move reviews out of approved.
func (s *ReviewService) ReportReview(reviewID uuid.UUID, req *ReportReviewRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := s.db.Model(&models.Review{}).Where("id = ?", reviewID).Updates(map[string]interface{}{
		"is_reported":    true,
		"report_reason":  req.Reason,
		"report_details": req.Details,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to report review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// CanMarkHelpful reports vote eligibility: the buyer must not be the review's
// author and must not have voted already.
func (s *ReviewService) CanMarkHelpful(reviewID, buyerID uuid.UUID) (bool, error) {
	var review models.Review
	if err := s.db.Select("id", "buyer_id").First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrReviewNotFound
		}
		return false, fmt.Errorf("database error: %w", err)
	}

	if review.BuyerID == buyerID {
		return false, nil
	}

	var votes int64
	if err := s.db.Model(&models.ReviewHelpfulVote{}).
		Where("review_id = ? AND buyer_id = ?", reviewID, buyerID).
		Count(&votes).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	return votes == 0, nil
}

// MarkHelpful adds the buyer's helpful vote. An ineligible vote (self-vote
// or repeat) is a no-op signalled by the false return, not an error.
func (s *ReviewService) MarkHelpful(reviewID, buyerID uuid.UUID) (bool, error) {
	eligible, err := s.CanMarkHelpful(reviewID, buyerID)
	if err != nil {
		return false, err
	}
	if !eligible {
		return false, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		vote := &models.ReviewHelpfulVote{ReviewID: reviewID, BuyerID: buyerID}
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		return s.refreshHelpfulCount(tx, reviewID)
	})
	if err != nil {
		// A concurrent vote beat us to the unique index; treat as ineligible.
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to mark review helpful: %w", err)
	}

	return true, nil
}

// UnmarkHelpful withdraws the buyer's vote; no-op if none exists.
func (s *ReviewService) UnmarkHelpful(reviewID, buyerID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("review_id = ? AND buyer_id = ?", reviewID, buyerID).
			Delete(&models.ReviewHelpfulVote{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove helpful vote: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return s.refreshHelpfulCount(tx, reviewID)
	})
}

// refreshHelpfulCount derives the counter from the vote table so the two can
// never drift.
func (s *ReviewService) refreshHelpfulCount(tx *gorm.DB, reviewID uuid.UUID) error {
	var votes int64
	if err := tx.Model(&models.ReviewHelpfulVote{}).
		Where("review_id = ?", reviewID).
		Count(&votes).Error; err != nil {
		return fmt.Errorf("failed to count helpful votes: %w", err)
	}

	return tx.Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("helpful_count", votes).Error
}

// GetReview loads one review with its buyer and farmer.
func (s *ReviewService) GetReview(reviewID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := s.db.Preload("Buyer").Preload("Farmer").First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &review, nil
}

// GetFarmerReviews lists a farmer's approved reviews, newest first.
func (s *ReviewService) GetFarmerReviews(farmerID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	return s.listReviews(s.db.Where("farmer_id = ?", farmerID), params)
}

// GetProductReviews lists a product's approved reviews, newest first.
func (s *ReviewService) GetProductReviews(productID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	return s.listReviews(s.db.Where("product_id = ?", productID), params)
}

// GetReportedReviews lists reviews awaiting moderator attention.
func (s *ReviewService) GetReportedReviews(params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).
		Where("is_reported = ? OR status = ?", true, models.ModerationStatusFlagged).
		Preload("Buyer").Preload("Farmer")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reported reviews: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "rating"})
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reported reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *ReviewService) listReviews(scope *gorm.DB, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := scope.Model(&models.Review{}).
		Where("status = ?", models.ModerationStatusApproved).
		Preload("Buyer")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "rating", "helpful_count"})
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, total, nil
}

// isVerifiedPurchase checks that the order belongs to the buyer and, when a
// product was named, that the order actually contains it.
func (s *ReviewService) isVerifiedPurchase(buyerID, orderID uuid.UUID, productID *uuid.UUID) bool {
	var order models.Order
	if err := s.db.Select("id", "buyer_id").First(&order, "id = ?", orderID).Error; err != nil {
		return false
	}
	if order.BuyerID != buyerID {
		return false
	}

	if productID != nil {
		var items int64
		s.db.Model(&models.OrderItem{}).
			Where("order_id = ? AND product_id = ?", orderID, *productID).
			Count(&items)
		return items > 0
	}

	return true
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique violation")
}
