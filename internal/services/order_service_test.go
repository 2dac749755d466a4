// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	orders   *OrderService
	stock    *StockService
	buyer    *models.User
	farmer   *models.Farmer
	category *models.Category
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.stock = NewStockService(suite.db)
	suite.orders = NewOrderService(suite.db, suite.stock)
	suite.buyer = createTestUser(suite.T(), suite.db, "order-buyer@example.com")
	suite.farmer = createTestFarmer(suite.T(), suite.db, "order-farmer@example.com")
	suite.category = createTestCategory(suite.T(), suite.db, "Roots")
}

func (suite *OrderServiceTestSuite) placeOrderRequest(items ...OrderItemRequest) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		Items:           items,
		PaymentMethod:   models.PaymentMethodMobileMoney,
		ShippingStreet:  "12 Ring Road",
		ShippingCity:    "Accra",
		ShippingState:   "Greater Accra",
		ShippingZipCode: "00233",
		ShippingCountry: "Ghana",
		ShippingPhone:   "+233200000001",
	}
}

func (suite *OrderServiceTestSuite) reloadProduct(p *models.Product) *models.Product {
	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", p.ID).Error)
	return &product
}

func (suite *OrderServiceTestSuite) TestPlaceOrderDebitsStockAndFreezesSnapshot() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 20)

	order, err := suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: product.ID, Quantity: 4},
	))
	suite.Require().NoError(err)

	suite.NotEmpty(order.OrderNumber)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.InDelta(4*product.Price, order.TotalAmount, 0.001)
	suite.Require().Len(order.Items, 1)
	suite.Equal(product.Name, order.Items[0].ProductName)
	suite.Equal(product.Unit, order.Items[0].ProductUnit)
	suite.InDelta(product.Price, order.Items[0].UnitPrice, 0.001)

	got := suite.reloadProduct(product)
	suite.Equal(16, got.Quantity)
	suite.Equal(int64(4), got.SalesCount)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderInsufficientStockRollsBackEverything() {
	plenty := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 50)
	scarce := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 2)

	_, err := suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: plenty.ID, Quantity: 10},
		OrderItemRequest{ProductID: scarce.ID, Quantity: 5},
	))
	suite.ErrorIs(err, ErrInsufficientStock)

	// Neither product moved and no order exists.
	suite.Equal(50, suite.reloadProduct(plenty).Quantity)
	suite.Equal(int64(0), suite.reloadProduct(plenty).SalesCount)
	suite.Equal(2, suite.reloadProduct(scarce).Quantity)

	var orderCount int64
	suite.db.Model(&models.Order{}).Count(&orderCount)
	suite.Zero(orderCount)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderRejectsInactiveProduct() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 10)
	suite.Require().NoError(suite.db.Model(product).Update("is_active", false).Error)

	_, err := suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: product.ID, Quantity: 1},
	))
	suite.ErrorIs(err, ErrProductInactive)
}

func (suite *OrderServiceTestSuite) TestPlaceOrderEnforcesOrderQuantityBounds() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 100)
	suite.Require().NoError(suite.db.Model(product).Updates(map[string]interface{}{
		"min_order_quantity": 5,
		"max_order_quantity": 10,
	}).Error)

	_, err := suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: product.ID, Quantity: 2},
	))
	suite.Error(err)

	_, err = suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: product.ID, Quantity: 20},
	))
	suite.Error(err)

	suite.Equal(100, suite.reloadProduct(product).Quantity)
}

func (suite *OrderServiceTestSuite) TestCancelOrderRestocks() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 10)

	order, err := suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: product.ID, Quantity: 6},
	))
	suite.Require().NoError(err)
	suite.Equal(4, suite.reloadProduct(product).Quantity)

	cancelled, err := suite.orders.CancelOrder(order.ID, suite.buyer.ID, &CancelOrderRequest{
		Reason: "changed my mind",
	})
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusCancelled, func() models.OrderStatus {
		var o models.Order
		suite.db.First(&o, "id = ?", cancelled.ID)
		return o.Status
	}())

	// Quantity is restored; the sales counter stays monotonic.
	got := suite.reloadProduct(product)
	suite.Equal(10, got.Quantity)
	suite.Equal(int64(6), got.SalesCount)
}

func (suite *OrderServiceTestSuite) TestCancelShippedOrderRejected() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 10)

	order, err := suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: product.ID, Quantity: 1},
	))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusShipped).Error)

	_, err = suite.orders.CancelOrder(order.ID, suite.buyer.ID, &CancelOrderRequest{Reason: "too late"})
	suite.ErrorIs(err, ErrOrderNotCancellable)
}

func (suite *OrderServiceTestSuite) TestGetOrderForBuyerEnforcesOwnership() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 10)

	order, err := suite.orders.PlaceOrder(suite.buyer.ID, suite.placeOrderRequest(
		OrderItemRequest{ProductID: product.ID, Quantity: 1},
	))
	suite.Require().NoError(err)

	stranger := createTestUser(suite.T(), suite.db, "stranger@example.com")
	_, err = suite.orders.GetOrderForBuyer(order.ID, stranger.ID)
	suite.ErrorIs(err, ErrNotOwner)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
