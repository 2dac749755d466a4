// internal/services/errors.go
package services

import "errors"

// Errors that indicate an invalid requested operation. They are surfaced to
// the caller before any state mutation; handlers translate them to status
// codes. Failures of derived-field recomputes are deliberately absent here:
// the coordinator logs them instead of returning them.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAmount     = errors.New("amount must be a positive integer")
	ErrDuplicateReview   = errors.New("buyer has already reviewed this farmer")

	ErrUserNotFound     = errors.New("user not found")
	ErrFarmerNotFound   = errors.New("farmer not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrReviewNotFound   = errors.New("review not found")

	ErrNotOwner            = errors.New("not the owner of this resource")
	ErrProductInactive     = errors.New("product is not available for purchase")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrNotRefundable       = errors.New("payment is not refundable")
)
