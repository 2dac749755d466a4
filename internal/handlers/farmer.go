// internal/handlers/farmer.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ahianova/ahianova-backend/internal/services"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

type FarmerHandler struct {
	farmerService *services.FarmerService
}

func NewFarmerHandler(farmerService *services.FarmerService) *FarmerHandler {
	return &FarmerHandler{farmerService: farmerService}
}

// GET /farmers
func (h *FarmerHandler) GetFarmers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	farmers, total, err := h.farmerService.ListFarmers(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(farmers, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /farmers/top-rated
func (h *FarmerHandler) GetTopRatedFarmers(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	farmers, err := h.farmerService.GetTopRatedFarmers(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, farmers)
}

// GET /farmers/:id
func (h *FarmerHandler) GetFarmer(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	farmer, err := h.farmerService.GetFarmer(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, farmer)
}

// POST /farmers
func (h *FarmerHandler) CreateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateFarmerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	farmer, err := h.farmerService.CreateProfile(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, farmer)
}

// GET /farmers/me
func (h *FarmerHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	farmer, err := h.farmerService.GetFarmerForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, farmer)
}

// PUT /farmers/:id
func (h *FarmerHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateFarmerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	farmer, err := h.farmerService.UpdateProfile(id, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, farmer)
}

type verifyFarmerRequest struct {
	Verified bool `json:"verified"`
}

// PATCH /admin/farmers/:id/verify
func (h *FarmerHandler) VerifyFarmer(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req verifyFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	farmer, err := h.farmerService.SetVerified(id, req.Verified)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, farmer)
}

type farmerActiveRequest struct {
	Active bool `json:"active"`
}

// PATCH /admin/farmers/:id/status
func (h *FarmerHandler) SetFarmerStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req farmerActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	farmer, err := h.farmerService.SetActive(id, req.Active)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, farmer)
}
