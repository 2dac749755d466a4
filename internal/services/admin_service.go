// internal/services/admin_service.go
package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
)

type AdminService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalUsers        int64   `json:"total_users"`
	TotalFarmers      int64   `json:"total_farmers"`
	TotalProducts     int64   `json:"total_products"`
	TotalOrders       int64   `json:"total_orders"`
	OrdersToday       int64   `json:"orders_today"`
	PendingReviews    int64   `json:"pending_reviews"`
	ReportedReviews   int64   `json:"reported_reviews"`
	OutOfStockCount   int64   `json:"out_of_stock_count"`
	TotalRevenue      float64 `json:"total_revenue"`
	RevenueThisMonth  float64 `json:"revenue_this_month"`
	PlatformFeeEarned float64 `json:"platform_fee_earned"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.Farmer{}).Count(&stats.TotalFarmers)
	s.db.Model(&models.Product{}).Where("is_active = ?", true).Count(&stats.TotalProducts)
	s.db.Model(&models.Order{}).Count(&stats.TotalOrders)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	s.db.Model(&models.Order{}).Where("created_at >= ?", startOfDay).Count(&stats.OrdersToday)

	s.db.Model(&models.Review{}).Where("status = ?", models.ModerationStatusPending).Count(&stats.PendingReviews)
	s.db.Model(&models.Review{}).Where("is_reported = ?", true).Count(&stats.ReportedReviews)
	s.db.Model(&models.Product{}).Where("availability = ?", models.AvailabilityOutOfStock).Count(&stats.OutOfStockCount)

	s.db.Model(&models.Payment{}).Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue)

	startOfMonth := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.Local)
	s.db.Model(&models.Payment{}).Where("status = ? AND created_at >= ?", models.PaymentStatusCompleted, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.RevenueThisMonth)

	s.db.Model(&models.Payment{}).Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(platform_fee), 0)").Scan(&stats.PlatformFeeEarned)

	return stats, nil
}
