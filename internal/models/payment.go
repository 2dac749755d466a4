// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	BaseModel
	OrderID uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	BuyerID uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`

	Amount   float64         `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency string          `json:"currency" gorm:"size:3;default:'USD'"`
	Method   PaymentMethod   `json:"method" gorm:"type:varchar(20);not null"`
	Provider PaymentProvider `json:"provider" gorm:"type:varchar(20);not null"`

	TransactionID         string        `json:"transaction_id,omitempty" gorm:"uniqueIndex;size:100"`
	ProviderTransactionID string        `json:"provider_transaction_id,omitempty" gorm:"size:100"`
	Status                PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	PaidAt        *time.Time `json:"paid_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	RefundAmount  float64    `json:"refund_amount" gorm:"type:decimal(10,2);default:0"`
	RefundReason  string     `json:"refund_reason,omitempty" gorm:"size:500"`
	FailureReason string     `json:"failure_reason,omitempty" gorm:"size:500"`

	ProcessingFee float64 `json:"processing_fee" gorm:"type:decimal(10,2);default:0"`
	PlatformFee   float64 `json:"platform_fee" gorm:"type:decimal(10,2);default:0"`
	TotalFees     float64 `json:"total_fees" gorm:"type:decimal(10,2);default:0"`

	// Provider-specific extras and raw webhook payloads stay schemaless.
	Metadata    JSONB `json:"metadata,omitempty" gorm:"type:jsonb"`
	WebhookData JSONB `json:"webhook_data,omitempty" gorm:"type:jsonb"`

	IsTestPayment bool `json:"is_test_payment" gorm:"default:false"`

	// Relationships
	Order Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Buyer User  `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

func (p *Payment) BeforeSave(tx *gorm.DB) error {
	p.TotalFees = p.ProcessingFee + p.PlatformFee
	return nil
}

// NetAmount is the amount after fees.
func (p *Payment) NetAmount() float64 {
	return p.Amount - p.TotalFees
}

func (p *Payment) IsSuccessful() bool {
	return p.Status == PaymentStatusCompleted
}

func (p *Payment) IsRefundable() bool {
	return p.Status == PaymentStatusCompleted && p.RefundedAt == nil
}
