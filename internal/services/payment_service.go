// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/config"
	"github.com/ahianova/ahianova-backend/internal/models"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

type PaymentService struct {
	db     *gorm.DB
	config *config.Config
	orders *OrderService
}

type CreatePaymentIntentRequest struct {
	OrderID  uuid.UUID              `json:"order_id" validate:"required"`
	Currency string                 `json:"currency,omitempty" validate:"omitempty,len=3"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type PaymentIntentResponse struct {
	ClientSecret string    `json:"client_secret"`
	PaymentID    uuid.UUID `json:"payment_id"`
	Status       string    `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
	PaymentID       uuid.UUID `json:"payment_id" validate:"required"`
}

type RefundPaymentRequest struct {
	PaymentID uuid.UUID `json:"payment_id" validate:"required"`
	Amount    float64   `json:"amount,omitempty" validate:"omitempty,min=0.01"`
	Reason    string    `json:"reason" validate:"required,max=500"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, orders *OrderService) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		config: cfg,
		orders: orders,
	}
}

// CreatePaymentIntent opens a Stripe payment intent for an order and records
// the pending payment. The platform fee is taken from config.
func (s *PaymentService) CreatePaymentIntent(buyerID uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, err := s.orders.GetOrderForBuyer(req.OrderID, buyerID)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == models.PaymentStatusCompleted {
		return nil, errors.New("order is already paid")
	}
	if order.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	amountInCents := int64(order.TotalAmount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("buyer_id", buyerID.String())
	for k, v := range req.Metadata {
		if str, ok := v.(string); ok {
			params.AddMetadata(k, str)
		}
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	platformFee := order.TotalAmount * s.config.Payment.PlatformFeePercent / 100

	transactionID, err := utils.GenerateTransactionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	payment := &models.Payment{
		OrderID:               order.ID,
		BuyerID:               buyerID,
		Amount:                order.TotalAmount,
		Currency:              currency,
		Method:                order.PaymentMethod,
		Provider:              models.PaymentProviderStripe,
		TransactionID:         transactionID,
		ProviderTransactionID: pi.ID,
		Status:                models.PaymentStatusPending,
		PlatformFee:           platformFee,
		Metadata:              models.JSONB(req.Metadata),
		IsTestPayment:         s.config.Environment != "production",
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    payment.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmPayment reads the intent state back from Stripe and settles the
// payment record. A succeeded intent marks the order confirmed and paid.
func (s *PaymentService) ConfirmPayment(req *ConfirmPaymentRequest) (*models.Payment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	var payment models.Payment
	if err := s.db.First(&payment, "id = ?", req.PaymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		switch pi.Status {
		case stripe.PaymentIntentStatusSucceeded:
			now := time.Now()
			payment.Status = models.PaymentStatusCompleted
			payment.PaidAt = &now
			payment.ProviderTransactionID = pi.ID

			if err := s.orders.MarkPaid(tx, payment.OrderID); err != nil {
				return err
			}

		case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
			payment.Status = models.PaymentStatusProcessing

		default:
			payment.Status = models.PaymentStatusFailed
			payment.FailureReason = string(pi.Status)
		}

		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	return &payment, nil
}

// ProcessRefund refunds a completed payment through Stripe. A partial amount
// leaves the payment partially refunded.
func (s *PaymentService) ProcessRefund(req *RefundPaymentRequest) (*models.Payment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var payment models.Payment
	if err := s.db.First(&payment, "id = ?", req.PaymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !payment.IsRefundable() {
		return nil, ErrNotRefundable
	}

	refundAmount := req.Amount
	if refundAmount <= 0 || refundAmount > payment.Amount {
		refundAmount = payment.Amount
	}

	if payment.ProviderTransactionID != "" {
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(payment.ProviderTransactionID),
			Amount:        stripe.Int64(int64(refundAmount * 100)),
			Reason:        stripe.String("requested_by_customer"),
		}
		if _, err := refund.New(params); err != nil {
			return nil, fmt.Errorf("failed to process refund: %w", err)
		}
	}

	now := time.Now()
	payment.RefundedAt = &now
	payment.RefundAmount = refundAmount
	payment.RefundReason = req.Reason
	if refundAmount < payment.Amount {
		payment.Status = models.PaymentStatusPartiallyRefunded
	} else {
		payment.Status = models.PaymentStatusRefunded
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}
		if payment.Status == models.PaymentStatusRefunded {
			return tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
				Updates(map[string]interface{}{
					"payment_status": models.PaymentStatusRefunded,
					"status":         models.OrderStatusRefunded,
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	return &payment, nil
}

func (s *PaymentService) GetPayment(id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Preload("Order").First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &payment, nil
}

func (s *PaymentService) GetPaymentHistory(buyerID uuid.UUID, params utils.PaginationParams) ([]models.Payment, int64, error) {
	query := s.db.Model(&models.Payment{}).Where("buyer_id = ?", buyerID).Preload("Order")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	return payments, total, nil
}

// RecordWebhookEvent stores the raw provider payload against the payment for
// later reconciliation.
func (s *PaymentService) RecordWebhookEvent(providerTransactionID string, payload map[string]interface{}) error {
	result := s.db.Model(&models.Payment{}).
		Where("provider_transaction_id = ?", providerTransactionID).
		UpdateColumn("webhook_data", models.JSONB(payload))
	if result.Error != nil {
		return fmt.Errorf("failed to record webhook event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
