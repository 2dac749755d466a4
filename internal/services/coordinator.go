// internal/services/coordinator.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ahianova/ahianova-backend/internal/models"
)

// Coordinator sequences the recomputation of derived rating fields after
// review writes. The recompute runs synchronously in the write path, never
// deferred to a background job and never lazily on read. Recompute failures
// are logged and swallowed: the triggering review operation already
// committed, and the stale aggregate self-heals on the next trigger.
type Coordinator struct {
	ratings *RatingService
}

func NewCoordinator(ratings *RatingService) *Coordinator {
	return &Coordinator{ratings: ratings}
}

// ReviewCreated runs after a new review committed.
func (c *Coordinator) ReviewCreated(review *models.Review) {
	if !review.IsApproved() {
		return
	}
	c.recompute(review.FarmerID, review.ProductID)
}

// ReviewUpdated runs after a review edit or moderation transition committed.
// It recomputes only when the write could change an aggregate: a status move
// to or from approved, or a rating change while approved.
func (c *Coordinator) ReviewUpdated(before, after *models.Review) {
	wasApproved := before.IsApproved()
	isApproved := after.IsApproved()

	switch {
	case wasApproved != isApproved:
	case isApproved && before.Rating != after.Rating:
	default:
		return
	}

	c.recompute(after.FarmerID, after.ProductID)
}

// ReviewDeleted runs after a review was removed. Deleting an approved review
// affects the aggregate exactly as if it had transitioned out of approved.
func (c *Coordinator) ReviewDeleted(review *models.Review) {
	if !review.IsApproved() {
		return
	}
	c.recompute(review.FarmerID, review.ProductID)
}

// recompute refreshes the farmer aggregate before the product aggregate;
// farmer-level trust signals gate product visibility in storefront
// filtering, so the farmer side should be the fresher one under concurrent
// reads.
func (c *Coordinator) recompute(farmerID uuid.UUID, productID *uuid.UUID) {
	if err := c.ratings.RecomputeFarmerRating(farmerID); err != nil {
		logrus.WithError(err).WithField("farmer_id", farmerID).
			Warn("Farmer rating recompute failed; aggregate left stale")
	}

	if productID != nil {
		if err := c.ratings.RecomputeProductRating(*productID); err != nil {
			logrus.WithError(err).WithField("product_id", *productID).
				Warn("Product rating recompute failed; aggregate left stale")
		}
	}
}
