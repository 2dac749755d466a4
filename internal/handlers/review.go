// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ahianova/ahianova-backend/internal/models"
	"github.com/ahianova/ahianova-backend/internal/services"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	farmerService *services.FarmerService
}

func NewReviewHandler(reviewService *services.ReviewService, farmerService *services.FarmerService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		farmerService: farmerService,
	}
}

// POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	review, err := h.reviewService.CreateReview(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, review)
}

// GET /reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	review, err := h.reviewService.UpdateReview(id, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)
	isAdmin := role == string(models.UserRoleAdmin)

	if err := h.reviewService.DeleteReview(id, userID, isAdmin); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "review deleted"})
}

// PATCH /admin/reviews/:id/moderate
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	review, err := h.reviewService.ModerateReview(id, adminID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// POST /reviews/:id/helpful
func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	marked, err := h.reviewService.MarkHelpful(id, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	review, err := h.reviewService.GetReview(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Ineligible votes (self-vote, repeat vote) are a no-op, not an error.
	utils.SuccessResponse(c, gin.H{
		"marked":        marked,
		"helpful_count": review.HelpfulCount,
	})
}

// DELETE /reviews/:id/helpful
func (h *ReviewHandler) UnmarkHelpful(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.UnmarkHelpful(id, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	review, err := h.reviewService.GetReview(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"marked":        false,
		"helpful_count": review.HelpfulCount,
	})
}

// POST /reviews/:id/respond
func (h *ReviewHandler) RespondToReview(c *gin.Context) {
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

	review, err := h.reviewService.GetReview(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if review.FarmerID != farmer.ID {
		utils.ForbiddenResponse(c, "you can only respond to reviews of your own farm")
		return
	}

	var req services.RespondToReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	review, err = h.reviewService.RespondToReview(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// POST /reviews/:id/report
func (h *ReviewHandler) ReportReview(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ReportReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.reviewService.ReportReview(id, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "review reported"})
}

// GET /farmers/:id/reviews
func (h *ReviewHandler) GetFarmerReviews(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, total, err := h.reviewService.GetFarmerReviews(id, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id/reviews
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, total, err := h.reviewService.GetProductReviews(id, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/reviews/reported
func (h *ReviewHandler) GetReportedReviews(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	reviews, total, err := h.reviewService.GetReportedReviews(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}
