// internal/services/stock_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
)

// StockService is the only code path allowed to mutate Product.Quantity,
// Product.Availability and Product.SalesCount. Every quantity change
// re-derives availability in the same transaction, so the two never diverge.
type StockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{db: db}
}

// Debit removes amount units from the product's stock. The decrement is a
// single conditional update guarded on the current quantity, so two
// concurrent debits can never drive the quantity negative. A debit larger
// than the quantity on hand fails with ErrInsufficientStock and leaves the
// product untouched; it is never clamped to zero.
func (s *StockService) Debit(productID uuid.UUID, amount int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.DebitTx(tx, productID, amount)
	})
}

// DebitTx is Debit running inside a caller-owned transaction.
func (s *StockService) DebitTx(tx *gorm.DB, productID uuid.UUID, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result := tx.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, amount).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to debit stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}

	return s.syncAvailability(tx, productID)
}

// Credit restocks the product by amount units.
func (s *StockService) Credit(productID uuid.UUID, amount int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.CreditTx(tx, productID, amount)
	})
}

// CreditTx is Credit running inside a caller-owned transaction.
func (s *StockService) CreditTx(tx *gorm.DB, productID uuid.UUID, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to credit stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return s.syncAvailability(tx, productID)
}

// RecordSale debits stock and bumps the monotonic sales counter in one
// transaction. A sale is never counted without its stock decrement.
func (s *StockService) RecordSale(productID uuid.UUID, amount int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.RecordSaleTx(tx, productID, amount)
	})
}

// RecordSaleTx is RecordSale running inside a caller-owned transaction.
func (s *StockService) RecordSaleTx(tx *gorm.DB, productID uuid.UUID, amount int) error {
	if err := s.DebitTx(tx, productID, amount); err != nil {
		return err
	}

	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sales_count", gorm.Expr("sales_count + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to update sales count: %w", err)
	}

	return nil
}

// SetSeasonal marks the product as seasonal. The override sticks until
// ClearSeasonal is called; stock movements do not touch it.
func (s *StockService) SetSeasonal(productID uuid.UUID) error {
	result := s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("availability", models.AvailabilitySeasonal)
	if result.Error != nil {
		return fmt.Errorf("failed to set seasonal availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ClearSeasonal removes the seasonal override and re-derives availability
// from the quantity on hand.
func (s *StockService) ClearSeasonal(productID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id", "quantity").First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		return tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("availability", models.AvailabilityForQuantity(product.Quantity)).Error
	})
}

// syncAvailability re-derives the availability state from the stored
// quantity, leaving the seasonal override alone.
func (s *StockService) syncAvailability(tx *gorm.DB, productID uuid.UUID) error {
	var product models.Product
	if err := tx.Select("id", "quantity", "availability").First(&product, "id = ?", productID).Error; err != nil {
		return fmt.Errorf("failed to load product for availability sync: %w", err)
	}

	if product.Availability == models.AvailabilitySeasonal {
		return nil
	}

	derived := models.AvailabilityForQuantity(product.Quantity)
	if derived == product.Availability {
		return nil
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("availability", derived).Error
}
