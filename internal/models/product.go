// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Name        string         `json:"name" gorm:"size:100;not null"`
	Description string         `json:"description" gorm:"size:1000;not null"`
	Image       string         `json:"image" gorm:"size:500;not null"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`

	CategoryID   uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	CategoryName string    `json:"category_name" gorm:"size:100"`

	Price         float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice float64 `json:"original_price,omitempty" gorm:"type:decimal(10,2)"`

	// Quantity is mutated only through the stock ledger. Availability is a
	// function of quantity unless overridden to Seasonal.
	Quantity     int          `json:"quantity" gorm:"not null;default:0"`
	Unit         Unit         `json:"unit" gorm:"type:varchar(10);default:'kg';not null"`
	Availability Availability `json:"availability" gorm:"type:varchar(20);default:'In Stock';index"`

	Origin              string         `json:"origin" gorm:"size:100;not null"`
	NutritionalInfo     string         `json:"nutritional_info" gorm:"size:500"`
	StorageInstructions string         `json:"storage_instructions" gorm:"size:300"`
	Certifications      pq.StringArray `json:"certifications" gorm:"type:text[]"`

	FarmerID   uuid.UUID `json:"farmer_id" gorm:"type:uuid;not null;index"`
	FarmerName string    `json:"farmer_name" gorm:"size:255;not null"`

	HarvestDate time.Time  `json:"harvest_date" gorm:"not null"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`

	// Derived rating fields, written only by the rating aggregation path.
	Rating      float64 `json:"rating" gorm:"type:decimal(3,1);default:0;index"`
	ReviewCount int64   `json:"review_count" gorm:"default:0"`

	Features pq.StringArray `json:"features" gorm:"type:text[]"`
	Tags     pq.StringArray `json:"tags" gorm:"type:text[]"`

	IsActive   bool `json:"is_active" gorm:"default:true;index"`
	IsFeatured bool `json:"is_featured" gorm:"default:false;index"`
	IsOrganic  bool `json:"is_organic" gorm:"default:false"`
	IsLocal    bool `json:"is_local" gorm:"default:false"`

	MinOrderQuantity int `json:"min_order_quantity" gorm:"default:1"`
	MaxOrderQuantity int `json:"max_order_quantity,omitempty"`

	ViewCount  int64 `json:"view_count" gorm:"default:0"`
	SalesCount int64 `json:"sales_count" gorm:"default:0;index"`

	Metadata JSONB `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	Farmer   Farmer   `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Reviews  []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

// IsAvailable reports whether the product can currently be ordered.
func (p *Product) IsAvailable() bool {
	return p.IsActive && p.Availability != AvailabilityOutOfStock && p.Quantity > 0
}

// DiscountPercentage derives the discount from the original price, if any.
func (p *Product) DiscountPercentage() int {
	if p.OriginalPrice > p.Price && p.OriginalPrice > 0 {
		return int((p.OriginalPrice-p.Price)/p.OriginalPrice*100 + 0.5)
	}
	return 0
}
