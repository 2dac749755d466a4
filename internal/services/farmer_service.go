// internal/services/farmer_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

type FarmerService struct {
	db *gorm.DB
}

type CreateFarmerProfileRequest struct {
	PhoneNumber       string                 `json:"phone_number" validate:"required,max=30"`
	FarmName          string                 `json:"farm_name" validate:"required,min=2,max=100"`
	FarmAddress       string                 `json:"farm_address,omitempty" validate:"omitempty,max=500"`
	FarmRegion        string                 `json:"farm_region,omitempty" validate:"omitempty,max=100"`
	Longitude         float64                `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Latitude          float64                `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	YearsOfExperience int                    `json:"years_of_experience,omitempty" validate:"omitempty,min=0,max=100"`
	Specialties       []string               `json:"specialties,omitempty"`
	Bio               string                 `json:"bio,omitempty" validate:"omitempty,max=1000"`
	BankDetails       map[string]interface{} `json:"bank_details,omitempty"`
}

type UpdateFarmerProfileRequest struct {
	PhoneNumber       string                 `json:"phone_number,omitempty" validate:"omitempty,max=30"`
	FarmName          string                 `json:"farm_name,omitempty" validate:"omitempty,min=2,max=100"`
	FarmAddress       string                 `json:"farm_address,omitempty" validate:"omitempty,max=500"`
	FarmRegion        string                 `json:"farm_region,omitempty" validate:"omitempty,max=100"`
	Longitude         *float64               `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Latitude          *float64               `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	YearsOfExperience *int                   `json:"years_of_experience,omitempty" validate:"omitempty,min=0,max=100"`
	Specialties       []string               `json:"specialties,omitempty"`
	Bio               string                 `json:"bio,omitempty" validate:"omitempty,max=1000"`
	BankDetails       map[string]interface{} `json:"bank_details,omitempty"`
}

func NewFarmerService(db *gorm.DB) *FarmerService {
	return &FarmerService{db: db}
}

// CreateProfile creates the farmer record for an existing user account and
// promotes the account to the farmer role in the same transaction. Identity
// fields are copied from the user; farmers are keyed to accounts by email.
func (s *FarmerService) CreateProfile(userID uuid.UUID, req *CreateFarmerProfileRequest) (*models.Farmer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing int64
	s.db.Model(&models.Farmer{}).Where("email = ?", user.Email).Count(&existing)
	if existing > 0 {
		return nil, errors.New("farmer profile already exists")
	}

	farmer := &models.Farmer{
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Email:             user.Email,
		PhoneNumber:       req.PhoneNumber,
		FarmName:          req.FarmName,
		FarmAddress:       req.FarmAddress,
		FarmRegion:        req.FarmRegion,
		Longitude:         req.Longitude,
		Latitude:          req.Latitude,
		YearsOfExperience: req.YearsOfExperience,
		Specialties:       lowercaseAll(req.Specialties),
		Bio:               req.Bio,
		BankDetails:       models.JSONB(req.BankDetails),
		IsActive:          true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(farmer).Error; err != nil {
			return fmt.Errorf("failed to create farmer profile: %w", err)
		}
		if user.Role != models.UserRoleFarmer {
			if err := tx.Model(&user).Update("role", models.UserRoleFarmer).Error; err != nil {
				return fmt.Errorf("failed to update user role: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return farmer, nil
}

func (s *FarmerService) GetFarmer(id uuid.UUID) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := s.db.First(&farmer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &farmer, nil
}

// GetFarmerForUser resolves the farmer record belonging to a user account.
func (s *FarmerService) GetFarmerForUser(userID uuid.UUID) (*models.Farmer, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var farmer models.Farmer
	if err := s.db.First(&farmer, "email = ?", user.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &farmer, nil
}

func (s *FarmerService) UpdateProfile(id uuid.UUID, userID uuid.UUID, req *UpdateFarmerProfileRequest) (*models.Farmer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	farmer, err := s.GetFarmer(id)
	if err != nil {
		return nil, err
	}

	owner, err := s.GetFarmerForUser(userID)
	if err != nil {
		return nil, ErrNotOwner
	}
	if owner.ID != farmer.ID {
		return nil, ErrNotOwner
	}

	updates := make(map[string]interface{})
	if req.PhoneNumber != "" {
		updates["phone_number"] = req.PhoneNumber
	}
	if req.FarmName != "" {
		updates["farm_name"] = req.FarmName
	}
	if req.FarmAddress != "" {
		updates["farm_address"] = req.FarmAddress
	}
	if req.FarmRegion != "" {
		updates["farm_region"] = req.FarmRegion
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.YearsOfExperience != nil {
		updates["years_of_experience"] = *req.YearsOfExperience
	}
	if req.Specialties != nil {
		updates["specialties"] = pq.StringArray(lowercaseAll(req.Specialties))
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.BankDetails != nil {
		updates["bank_details"] = models.JSONB(req.BankDetails)
	}

	if err := s.db.Model(farmer).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update farmer profile: %w", err)
	}

	return farmer, nil
}

func (s *FarmerService) ListFarmers(params utils.PaginationParams) ([]models.Farmer, int64, error) {
	query := s.db.Model(&models.Farmer{}).Where("is_active = ?", true)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(farm_name) LIKE ? OR LOWER(farm_region) LIKE ? OR LOWER(bio) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count farmers: %w", err)
	}

	allowedSortFields := []string{"created_at", "farm_name", "average_rating", "total_reviews", "years_of_experience"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var farmers []models.Farmer
	if err := query.Find(&farmers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch farmers: %w", err)
	}

	return farmers, total, nil
}

// GetTopRatedFarmers ranks by the aggregate maintained by the review
// recompute path; ties break on review volume.
func (s *FarmerService) GetTopRatedFarmers(limit int) ([]models.Farmer, error) {
	var farmers []models.Farmer
	if err := s.db.Where("is_active = ? AND total_reviews > 0", true).
		Order("average_rating DESC, total_reviews DESC").
		Limit(limit).
		Find(&farmers).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch top rated farmers: %w", err)
	}
	return farmers, nil
}

// SetVerified toggles the admin verification flag.
func (s *FarmerService) SetVerified(id uuid.UUID, verified bool) (*models.Farmer, error) {
	farmer, err := s.GetFarmer(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(farmer).Update("is_verified", verified).Error; err != nil {
		return nil, fmt.Errorf("failed to update verification: %w", err)
	}

	return farmer, nil
}

func (s *FarmerService) SetActive(id uuid.UUID, active bool) (*models.Farmer, error) {
	farmer, err := s.GetFarmer(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(farmer).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update farmer status: %w", err)
	}

	return farmer, nil
}
