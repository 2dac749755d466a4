// internal/handlers/common.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ahianova/ahianova-backend/internal/services"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

// respondServiceError maps service-layer errors onto the API error envelope.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientStock):
		utils.ConflictResponse(c, "INSUFFICIENT_STOCK", "insufficient stock for the requested quantity")
	case errors.Is(err, services.ErrDuplicateReview):
		utils.ConflictResponse(c, "DUPLICATE_REVIEW", "you have already reviewed this farmer")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	case errors.Is(err, services.ErrFarmerNotFound):
		utils.NotFoundResponse(c, "farmer")
	case errors.Is(err, services.ErrCategoryNotFound):
		utils.NotFoundResponse(c, "category")
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, "order")
	case errors.Is(err, services.ErrPaymentNotFound):
		utils.NotFoundResponse(c, "payment")
	case errors.Is(err, services.ErrReviewNotFound):
		utils.NotFoundResponse(c, "review")
	case errors.Is(err, services.ErrNotOwner):
		utils.ForbiddenResponse(c, "you do not own this resource")
	case errors.Is(err, services.ErrProductInactive):
		utils.ConflictResponse(c, "PRODUCT_INACTIVE", "product is not available for purchase")
	case errors.Is(err, services.ErrOrderNotCancellable):
		utils.ConflictResponse(c, "ORDER_NOT_CANCELLABLE", "order can no longer be cancelled")
	case errors.Is(err, services.ErrNotRefundable):
		utils.ConflictResponse(c, "NOT_REFUNDABLE", "payment is not refundable")
	case errors.Is(err, services.ErrInvalidAmount):
		utils.BadRequestResponse(c, "invalid amount", nil)
	case strings.Contains(err.Error(), "validation failed"):
		if verrs := utils.GetValidationErrors(errors.Unwrap(err)); len(verrs) > 0 {
			utils.ValidationErrorResponse(c, verrs)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

// currentUserID pulls the authenticated user id out of the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}

	return userID, true
}

// pathUUID parses a uuid path parameter, answering 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
