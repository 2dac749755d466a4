// internal/models/farmer.go
package models

import (
	"github.com/lib/pq"
)

type Farmer struct {
	BaseModel
	FirstName   string `json:"first_name" gorm:"size:100;not null"`
	LastName    string `json:"last_name" gorm:"size:100;not null"`
	Email       string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PhoneNumber string `json:"phone_number" gorm:"size:30;not null"`
	FarmName    string `json:"farm_name" gorm:"size:255;not null"`

	FarmAddress string  `json:"farm_address" gorm:"size:500"`
	FarmRegion  string  `json:"farm_region" gorm:"size:100;index"`
	Longitude   float64 `json:"longitude" gorm:"default:0"`
	Latitude    float64 `json:"latitude" gorm:"default:0"`

	YearsOfExperience int            `json:"years_of_experience" gorm:"default:0"`
	Specialties       pq.StringArray `json:"specialties" gorm:"type:text[]"`
	Bio               string         `json:"bio" gorm:"size:1000"`

	IsVerified bool `json:"is_verified" gorm:"default:false;index"`
	IsActive   bool `json:"is_active" gorm:"default:true"`

	// Rating fields are derived from approved reviews and written only by the
	// rating aggregation path.
	AverageRating float64 `json:"average_rating" gorm:"type:decimal(3,1);default:0"`
	TotalReviews  int64   `json:"total_reviews" gorm:"default:0"`

	BankDetails JSONB `json:"bank_details,omitempty" gorm:"type:jsonb"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:FarmerID"`
	Reviews  []Review  `json:"reviews,omitempty" gorm:"foreignKey:FarmerID"`
}

func (f *Farmer) FullName() string {
	return f.FirstName + " " + f.LastName
}
