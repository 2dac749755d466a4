// internal/models/review.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Review struct {
	BaseModel
	FarmerID  uuid.UUID  `json:"farmer_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_buyer_farmer,priority:2;index"`
	BuyerID   uuid.UUID  `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_buyer_farmer,priority:1"`
	ProductID *uuid.UUID `json:"product_id,omitempty" gorm:"type:uuid;index"`
	OrderID   *uuid.UUID `json:"order_id,omitempty" gorm:"type:uuid"`

	Rating  int            `json:"rating" gorm:"not null"`
	Title   string         `json:"title" gorm:"size:100"`
	Comment string         `json:"comment" gorm:"size:1000"`
	Images  pq.StringArray `json:"images" gorm:"type:text[]"`

	// HelpfulCount always equals the number of ReviewHelpfulVote rows for this
	// review; it is written only by the helpfulness vote path.
	HelpfulCount int64 `json:"helpful_count" gorm:"default:0"`

	IsVerifiedPurchase bool `json:"is_verified_purchase" gorm:"default:false"`

	Status      ModerationStatus `json:"status" gorm:"type:varchar(20);default:'approved';index"`
	ModeratedBy *uuid.UUID       `json:"moderated_by,omitempty" gorm:"type:uuid"`
	ModeratedAt *time.Time       `json:"moderated_at,omitempty"`

	FarmerResponse    string     `json:"farmer_response,omitempty" gorm:"size:500"`
	FarmerRespondedAt *time.Time `json:"farmer_responded_at,omitempty"`

	IsReported    bool         `json:"is_reported" gorm:"default:false"`
	ReportReason  ReportReason `json:"report_reason,omitempty" gorm:"type:varchar(20)"`
	ReportDetails string       `json:"report_details,omitempty" gorm:"size:200"`

	// Relationships
	Farmer  Farmer              `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Buyer   User                `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Product *Product            `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Votes   []ReviewHelpfulVote `json:"-" gorm:"foreignKey:ReviewID"`
}

// ReviewHelpfulVote records one buyer finding one review helpful. The unique
// index carries the one-vote-per-buyer rule down to the storage layer.
type ReviewHelpfulVote struct {
	BaseModel
	ReviewID uuid.UUID `json:"review_id" gorm:"type:uuid;not null;uniqueIndex:idx_helpful_review_buyer,priority:1"`
	BuyerID  uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_helpful_review_buyer,priority:2"`
}

// IsApproved reports whether the review counts toward rating aggregates.
func (r *Review) IsApproved() bool {
	return r.Status == ModerationStatusApproved
}

// RatingText maps the numeric rating to its display label.
func (r *Review) RatingText() string {
	switch r.Rating {
	case 1:
		return "Poor"
	case 2:
		return "Fair"
	case 3:
		return "Good"
	case 4:
		return "Very Good"
	case 5:
		return "Excellent"
	default:
		return "Unknown"
	}
}
