// internal/services/product_service.go
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

type ProductService struct {
	db    *gorm.DB
	stock *StockService
}

type CreateProductRequest struct {
	Name                string                 `json:"name" validate:"required,min=2,max=100"`
	Description         string                 `json:"description" validate:"required,min=10,max=1000"`
	Image               string                 `json:"image" validate:"required"`
	Images              []string               `json:"images,omitempty"`
	CategoryID          uuid.UUID              `json:"category_id" validate:"required"`
	Price               float64                `json:"price" validate:"required,min=0.01"`
	OriginalPrice       float64                `json:"original_price,omitempty" validate:"omitempty,min=0"`
	Quantity            int                    `json:"quantity" validate:"min=0"`
	Unit                models.Unit            `json:"unit" validate:"required,oneof=kg lb ton piece box bag bunch"`
	Origin              string                 `json:"origin" validate:"required,max=100"`
	NutritionalInfo     string                 `json:"nutritional_info,omitempty" validate:"omitempty,max=500"`
	StorageInstructions string                 `json:"storage_instructions,omitempty" validate:"omitempty,max=300"`
	Certifications      []string               `json:"certifications,omitempty"`
	HarvestDate         time.Time              `json:"harvest_date" validate:"required"`
	ExpiryDate          *time.Time             `json:"expiry_date,omitempty"`
	Features            []string               `json:"features,omitempty"`
	Tags                []string               `json:"tags,omitempty"`
	IsOrganic           bool                   `json:"is_organic,omitempty"`
	IsLocal             bool                   `json:"is_local,omitempty"`
	MinOrderQuantity    int                    `json:"min_order_quantity,omitempty" validate:"omitempty,min=1"`
	MaxOrderQuantity    int                    `json:"max_order_quantity,omitempty" validate:"omitempty,min=1"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateProductRequest struct {
	Name                string                 `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description         string                 `json:"description,omitempty" validate:"omitempty,min=10,max=1000"`
	Image               string                 `json:"image,omitempty"`
	Images              []string               `json:"images,omitempty"`
	CategoryID          *uuid.UUID             `json:"category_id,omitempty"`
	Price               float64                `json:"price,omitempty" validate:"omitempty,min=0.01"`
	OriginalPrice       float64                `json:"original_price,omitempty" validate:"omitempty,min=0"`
	Origin              string                 `json:"origin,omitempty" validate:"omitempty,max=100"`
	NutritionalInfo     string                 `json:"nutritional_info,omitempty" validate:"omitempty,max=500"`
	StorageInstructions string                 `json:"storage_instructions,omitempty" validate:"omitempty,max=300"`
	Certifications      []string               `json:"certifications,omitempty"`
	ExpiryDate          *time.Time             `json:"expiry_date,omitempty"`
	Features            []string               `json:"features,omitempty"`
	Tags                []string               `json:"tags,omitempty"`
	IsActive            *bool                  `json:"is_active,omitempty"`
	IsFeatured          *bool                  `json:"is_featured,omitempty"`
	IsOrganic           *bool                  `json:"is_organic,omitempty"`
	IsLocal             *bool                  `json:"is_local,omitempty"`
	MinOrderQuantity    int                    `json:"min_order_quantity,omitempty" validate:"omitempty,min=1"`
	MaxOrderQuantity    int                    `json:"max_order_quantity,omitempty" validate:"omitempty,min=1"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategoryID   *uuid.UUID           `json:"category_id,omitempty"`
	FarmerID     *uuid.UUID           `json:"farmer_id,omitempty"`
	PriceMin     *float64             `json:"price_min,omitempty"`
	PriceMax     *float64             `json:"price_max,omitempty"`
	Availability *models.Availability `json:"availability,omitempty"`
	IsOrganic    *bool                `json:"is_organic,omitempty"`
	IsLocal      *bool                `json:"is_local,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	InStock      *bool                `json:"in_stock,omitempty"`
}

func NewProductService(db *gorm.DB, stock *StockService) *ProductService {
	return &ProductService{db: db, stock: stock}
}

func (s *ProductService) CreateProduct(farmerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var farmer models.Farmer
	if err := s.db.First(&farmer, "id = ?", farmerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !farmer.IsActive {
		return nil, errors.New("farmer account is not active")
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	minOrder := req.MinOrderQuantity
	if minOrder == 0 {
		minOrder = 1
	}

	product := &models.Product{
		Name:                req.Name,
		Description:         req.Description,
		Image:               req.Image,
		Images:              req.Images,
		CategoryID:          category.ID,
		CategoryName:        category.Name,
		Price:               req.Price,
		OriginalPrice:       req.OriginalPrice,
		Quantity:            req.Quantity,
		Unit:                req.Unit,
		Availability:        models.AvailabilityForQuantity(req.Quantity),
		Origin:              req.Origin,
		NutritionalInfo:     req.NutritionalInfo,
		StorageInstructions: req.StorageInstructions,
		Certifications:      req.Certifications,
		FarmerID:            farmer.ID,
		FarmerName:          farmer.FullName(),
		HarvestDate:         req.HarvestDate,
		ExpiryDate:          req.ExpiryDate,
		Features:            req.Features,
		Tags:                lowercaseAll(req.Tags),
		IsActive:            true,
		IsOrganic:           req.IsOrganic,
		IsLocal:             req.IsLocal,
		MinOrderQuantity:    minOrder,
		MaxOrderQuantity:    req.MaxOrderQuantity,
		Metadata:            models.JSONB(req.Metadata),
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID, countView bool) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Farmer").Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if countView {
		s.db.Model(&models.Product{}).Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	}

	return &product, nil
}

func (s *ProductService) UpdateProduct(id, farmerID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.FarmerID != farmerID {
		return nil, ErrNotOwner
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		updates["category_id"] = category.ID
		updates["category_name"] = category.Name
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if req.OriginalPrice > 0 {
		updates["original_price"] = req.OriginalPrice
	}
	if req.Origin != "" {
		updates["origin"] = req.Origin
	}
	if req.NutritionalInfo != "" {
		updates["nutritional_info"] = req.NutritionalInfo
	}
	if req.StorageInstructions != "" {
		updates["storage_instructions"] = req.StorageInstructions
	}
	if req.Certifications != nil {
		updates["certifications"] = pq.StringArray(req.Certifications)
	}
	if req.ExpiryDate != nil {
		updates["expiry_date"] = *req.ExpiryDate
	}
	if req.Features != nil {
		updates["features"] = pq.StringArray(req.Features)
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(lowercaseAll(req.Tags))
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.IsOrganic != nil {
		updates["is_organic"] = *req.IsOrganic
	}
	if req.IsLocal != nil {
		updates["is_local"] = *req.IsLocal
	}
	if req.MinOrderQuantity > 0 {
		updates["min_order_quantity"] = req.MinOrderQuantity
	}
	if req.MaxOrderQuantity > 0 {
		updates["max_order_quantity"] = req.MaxOrderQuantity
	}
	if req.Metadata != nil {
		updates["metadata"] = models.JSONB(req.Metadata)
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.db.Preload("Farmer").Preload("Category").First(&product, "id = ?", id)

	return &product, nil
}

// DeleteProduct soft-deletes a product. Order line items keep their frozen
// snapshot, so historical orders survive the delete.
func (s *ProductService) DeleteProduct(id, farmerID uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if product.FarmerID != farmerID {
		return ErrNotOwner
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Preload("Farmer").Preload("Category")

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.FarmerID != nil {
		query = query.Where("farmer_id = ?", *params.FarmerID)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}
	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}
	if params.Availability != nil {
		query = query.Where("availability = ?", *params.Availability)
	}
	if params.IsOrganic != nil {
		query = query.Where("is_organic = ?", *params.IsOrganic)
	}
	if params.IsLocal != nil {
		query = query.Where("is_local = ?", *params.IsLocal)
	}
	if len(params.Tags) > 0 {
		query = query.Where("tags && ?", pq.StringArray(lowercaseAll(params.Tags)))
	}
	if params.InStock != nil && *params.InStock {
		query = query.Where("quantity > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "sales_count", "rating"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetFarmerProducts(farmerID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Where("farmer_id = ?", farmerID).Preload("Category")

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count farmer products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "sales_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch farmer products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetFeaturedProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ? AND is_featured = ?", true, true).
		Where("availability <> ?", models.AvailabilityOutOfStock).
		Order("rating DESC, created_at DESC").
		Limit(limit).
		Preload("Farmer").Preload("Category").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}

	return products, nil
}

// GetTopSellingProducts ranks by the monotonic sales counter maintained by
// the stock ledger.
func (s *ProductService) GetTopSellingProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ?", true).
		Where("availability <> ?", models.AvailabilityOutOfStock).
		Order("sales_count DESC, rating DESC").
		Limit(limit).
		Preload("Farmer").Preload("Category").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch top selling products: %w", err)
	}

	return products, nil
}

func (s *ProductService) GetProductsByCategory(categoryID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Where("availability <> ?", models.AvailabilityOutOfStock).
		Preload("Farmer").Preload("Category")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count category products: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "price", "rating", "sales_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch category products: %w", err)
	}

	return products, total, nil
}

// Restock credits quantity back through the stock ledger; only the owning
// farmer may restock.
func (s *ProductService) Restock(id, farmerID uuid.UUID, amount int) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.FarmerID != farmerID {
		return nil, ErrNotOwner
	}

	if err := s.stock.Credit(id, amount); err != nil {
		return nil, err
	}

	s.db.First(&product, "id = ?", id)
	return &product, nil
}

func lowercaseAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
