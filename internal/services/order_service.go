// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

type OrderService struct {
	db    *gorm.DB
	stock *StockService
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type PlaceOrderRequest struct {
	Items           []OrderItemRequest   `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" validate:"required,oneof=credit_card bank_transfer mobile_money crypto cash_on_delivery paypal stripe"`
	ShippingStreet  string               `json:"shipping_street" validate:"required,max=255"`
	ShippingCity    string               `json:"shipping_city" validate:"required,max=100"`
	ShippingState   string               `json:"shipping_state" validate:"required,max=100"`
	ShippingZipCode string               `json:"shipping_zip_code" validate:"required,max=20"`
	ShippingCountry string               `json:"shipping_country" validate:"required,max=100"`
	ShippingPhone   string               `json:"shipping_phone" validate:"required,max=30"`
	Notes           string               `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status         models.OrderStatus `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	TrackingNumber string             `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func NewOrderService(db *gorm.DB, stock *StockService) *OrderService {
	return &OrderService{db: db, stock: stock}
}

// PlaceOrder creates an order with frozen line-item snapshots and records the
// sale for every item through the stock ledger. The whole order is one
// transaction: if any item has insufficient stock, nothing is committed.
func (s *OrderService) PlaceOrder(buyerID uuid.UUID, req *PlaceOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var buyer models.User
	if err := s.db.First(&buyer, "id = ?", buyerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.OrderItem
		var totalAmount float64

		for _, itemReq := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", itemReq.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("database error: %w", err)
			}

			if !product.IsActive {
				return ErrProductInactive
			}
			if itemReq.Quantity < product.MinOrderQuantity {
				return fmt.Errorf("minimum order quantity for %s is %d", product.Name, product.MinOrderQuantity)
			}
			if product.MaxOrderQuantity > 0 && itemReq.Quantity > product.MaxOrderQuantity {
				return fmt.Errorf("maximum order quantity for %s is %d", product.Name, product.MaxOrderQuantity)
			}

			if err := s.stock.RecordSaleTx(tx, product.ID, itemReq.Quantity); err != nil {
				return err
			}

			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				FarmerID:     product.FarmerID,
				Quantity:     itemReq.Quantity,
				UnitPrice:    product.Price,
				ProductName:  product.Name,
				ProductImage: product.Image,
				ProductUnit:  product.Unit,
			})
			totalAmount += product.Price * float64(itemReq.Quantity)
		}

		order = &models.Order{
			BuyerID:         buyer.ID,
			TotalAmount:     totalAmount,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			PaymentMethod:   req.PaymentMethod,
			ShippingStreet:  req.ShippingStreet,
			ShippingCity:    req.ShippingCity,
			ShippingState:   req.ShippingState,
			ShippingZipCode: req.ShippingZipCode,
			ShippingCountry: req.ShippingCountry,
			ShippingPhone:   req.ShippingPhone,
			Notes:           req.Notes,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) GetOrder(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Payments").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// GetOrderForBuyer fetches an order and enforces ownership.
func (s *OrderService) GetOrderForBuyer(id, buyerID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, ErrNotOwner
	}
	return order, nil
}

func (s *OrderService) GetBuyerOrders(buyerID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("buyer_id = ?", buyerID).Preload("Items")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// GetFarmerOrders lists orders that contain at least one line item fulfilled
// by the farmer.
func (s *OrderService) GetFarmerOrders(farmerID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	subquery := s.db.Model(&models.OrderItem{}).
		Select("DISTINCT order_id").
		Where("farmer_id = ?", farmerID)

	query := s.db.Model(&models.Order{}).Where("id IN (?)", subquery).Preload("Items")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count farmer orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch farmer orders: %w", err)
	}

	return orders, total, nil
}

// CancelOrder cancels a pending or confirmed order and credits every line
// item's quantity back through the stock ledger in the same transaction.
func (s *OrderService) CancelOrder(id, buyerID uuid.UUID, req *CancelOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, err := s.GetOrderForBuyer(id, buyerID)
	if err != nil {
		return nil, err
	}

	if !order.CanCancel() {
		return nil, ErrOrderNotCancellable
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := s.stock.CreditTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return tx.Model(order).Updates(map[string]interface{}{
			"status":              models.OrderStatusCancelled,
			"cancellation_reason": req.Reason,
			"cancelled_at":        now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	return order, nil
}

// UpdateOrderStatus is the admin/fulfilment transition path. Cancellation goes
// through CancelOrder so stock is restored.
func (s *OrderService) UpdateOrderStatus(id uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	if req.Status == models.OrderStatusCancelled {
		return nil, errors.New("use the cancellation endpoint to cancel an order")
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.TrackingNumber != "" {
		updates["tracking_number"] = req.TrackingNumber
	}
	if req.Status == models.OrderStatusDelivered {
		updates["delivered_at"] = time.Now()
	}

	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}

// MarkPaid records a successful payment against the order.
func (s *OrderService) MarkPaid(tx *gorm.DB, orderID uuid.UUID) error {
	result := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusCompleted,
		"status":         models.OrderStatusConfirmed,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark order paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
