// internal/models/order.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	BaseModel
	OrderNumber string    `json:"order_number" gorm:"uniqueIndex;size:40;not null"`
	BuyerID     uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`

	TotalAmount    float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ShippingCost   float64       `json:"shipping_cost" gorm:"type:decimal(10,2);default:0"`
	TaxAmount      float64       `json:"tax_amount" gorm:"type:decimal(10,2);default:0"`
	DiscountAmount float64       `json:"discount_amount" gorm:"type:decimal(10,2);default:0"`
	Status         OrderStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus  PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending'"`
	PaymentMethod  PaymentMethod `json:"payment_method" gorm:"type:varchar(20);not null"`

	ShippingStreet  string `json:"shipping_street" gorm:"size:255;not null"`
	ShippingCity    string `json:"shipping_city" gorm:"size:100;not null"`
	ShippingState   string `json:"shipping_state" gorm:"size:100;not null"`
	ShippingZipCode string `json:"shipping_zip_code" gorm:"size:20;not null"`
	ShippingCountry string `json:"shipping_country" gorm:"size:100;not null"`
	ShippingPhone   string `json:"shipping_phone" gorm:"size:30;not null"`

	EstimatedDelivery  *time.Time `json:"estimated_delivery,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	TrackingNumber     string     `json:"tracking_number,omitempty" gorm:"size:100"`
	Notes              string     `json:"notes,omitempty" gorm:"size:500"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"size:500"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	// Relationships
	Buyer    User        `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Payments []Payment   `json:"payments,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem holds a frozen snapshot of the product at purchase time so that
// historical orders stay stable when the catalog changes.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	FarmerID  uuid.UUID `json:"farmer_id" gorm:"type:uuid;not null;index"`

	Quantity  int     `json:"quantity" gorm:"not null"`
	UnitPrice float64 `json:"unit_price" gorm:"type:decimal(10,2);not null"`

	ProductName  string `json:"product_name" gorm:"size:100;not null"`
	ProductImage string `json:"product_image" gorm:"size:500"`
	ProductUnit  Unit   `json:"product_unit" gorm:"type:varchar(10)"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if err := o.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if o.OrderNumber == "" {
		var count int64
		if err := tx.Model(&Order{}).Count(&count).Error; err != nil {
			return err
		}
		o.OrderNumber = fmt.Sprintf("ORD-%d-%04d", time.Now().UnixMilli(), count+1)
	}
	return nil
}

// TotalItems sums the quantities across all line items.
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// FarmerIDs returns the distinct farmers fulfilling this order.
func (o *Order) FarmerIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Items))
	var ids []uuid.UUID
	for _, item := range o.Items {
		if _, ok := seen[item.FarmerID]; !ok {
			seen[item.FarmerID] = struct{}{}
			ids = append(ids, item.FarmerID)
		}
	}
	return ids
}

// CanCancel reports whether the order is still in a cancellable state.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}
