// internal/handlers/product.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ahianova/ahianova-backend/internal/models"
	"github.com/ahianova/ahianova-backend/internal/services"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	farmerService  *services.FarmerService
	stockService   *services.StockService
}

func NewProductHandler(productService *services.ProductService, farmerService *services.FarmerService, stockService *services.StockService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		farmerService:  farmerService,
		stockService:   stockService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ProductSearchParams{
		PaginationParams: params,
	}

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		if categoryID, err := uuid.Parse(categoryIDStr); err == nil {
			searchParams.CategoryID = &categoryID
		}
	}

	if farmerIDStr := c.Query("farmer_id"); farmerIDStr != "" {
		if farmerID, err := uuid.Parse(farmerIDStr); err == nil {
			searchParams.FarmerID = &farmerID
		}
	}

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseFloat(priceMinStr, 64); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseFloat(priceMaxStr, 64); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}

	if availability := c.Query("availability"); availability != "" {
		a := models.Availability(availability)
		searchParams.Availability = &a
	}

	if organicStr := c.Query("organic"); organicStr != "" {
		if organic, err := strconv.ParseBool(organicStr); err == nil {
			searchParams.IsOrganic = &organic
		}
	}

	if localStr := c.Query("local"); localStr != "" {
		if local, err := strconv.ParseBool(localStr); err == nil {
			searchParams.IsLocal = &local
		}
	}

	if tags := c.Query("tags"); tags != "" {
		searchParams.Tags = strings.Split(tags, ",")
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			searchParams.InStock = &inStock
		}
	}

	products, total, err := h.productService.SearchProducts(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	limit := 12
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	products, err := h.productService.GetFeaturedProducts(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /products/top-selling
func (h *ProductHandler) GetTopSellingProducts(c *gin.Context) {
	limit := 12
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	products, err := h.productService.GetTopSellingProducts(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(id, true)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	farmer, err := h.farmerService.GetFarmerForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.CreateProduct(farmer.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	farmer, err := h.farmerService.GetFarmerForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(id, farmer.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	farmer, err := h.farmerService.GetFarmerForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.productService.DeleteProduct(id, farmer.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "product deleted"})
}

type stockAmountRequest struct {
	Amount int `json:"amount" binding:"required,min=1"`
}

// POST /products/:id/restock
func (h *ProductHandler) RestockProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	farmer, err := h.farmerService.GetFarmerForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req stockAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.Restock(id, farmer.ID, req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// POST /products/:id/stock-debit (admin correction)
func (h *ProductHandler) DebitStock(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req stockAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.stockService.Debit(id, req.Amount); err != nil {
		respondServiceError(c, err)
		return
	}

	product, err := h.productService.GetProduct(id, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

type seasonalRequest struct {
	Seasonal bool `json:"seasonal"`
}

// PUT /products/:id/seasonal
func (h *ProductHandler) SetSeasonal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)
	if role != string(models.UserRoleAdmin) {
		farmer, err := h.farmerService.GetFarmerForUser(userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		product, err := h.productService.GetProduct(id, false)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if product.FarmerID != farmer.ID {
			utils.ForbiddenResponse(c, "you do not own this resource")
			return
		}
	}

	var req seasonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	var err error
	if req.Seasonal {
		err = h.stockService.SetSeasonal(id)
	} else {
		err = h.stockService.ClearSeasonal(id)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	product, err := h.productService.GetProduct(id, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// GET /farmers/me/products
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	farmer, err := h.farmerService.GetFarmerForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	products, total, err := h.productService.GetFarmerProducts(farmer.ID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}
