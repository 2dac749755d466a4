// internal/services/stock_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
)

type StockServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	stock    *StockService
	farmer   *models.Farmer
	category *models.Category
}

func (suite *StockServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.stock = NewStockService(suite.db)
	suite.farmer = createTestFarmer(suite.T(), suite.db, "stock-farmer@example.com")
	suite.category = createTestCategory(suite.T(), suite.db, "Vegetables")
}

func (suite *StockServiceTestSuite) reload(id uuid.UUID) *models.Product {
	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", id).Error)
	return &product
}

func (suite *StockServiceTestSuite) TestDebitWalksAvailabilityDown() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 12)
	suite.Equal(models.AvailabilityInStock, product.Availability)

	suite.NoError(suite.stock.Debit(product.ID, 3))
	got := suite.reload(product.ID)
	suite.Equal(9, got.Quantity)
	suite.Equal(models.AvailabilityLimitedStock, got.Availability)

	suite.NoError(suite.stock.Debit(product.ID, 9))
	got = suite.reload(product.ID)
	suite.Equal(0, got.Quantity)
	suite.Equal(models.AvailabilityOutOfStock, got.Availability)
}

func (suite *StockServiceTestSuite) TestDebitInsufficientStockLeavesQuantityUnchanged() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 5)

	err := suite.stock.Debit(product.ID, 6)
	suite.ErrorIs(err, ErrInsufficientStock)

	got := suite.reload(product.ID)
	suite.Equal(5, got.Quantity)
	suite.Equal(models.AvailabilityLimitedStock, got.Availability)
}

func (suite *StockServiceTestSuite) TestDebitExactQuantitySucceeds() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 5)

	suite.NoError(suite.stock.Debit(product.ID, 5))

	got := suite.reload(product.ID)
	suite.Equal(0, got.Quantity)
	suite.Equal(models.AvailabilityOutOfStock, got.Availability)
}

func (suite *StockServiceTestSuite) TestDebitUnknownProduct() {
	err := suite.stock.Debit(uuid.New(), 1)
	suite.ErrorIs(err, ErrProductNotFound)
}

func (suite *StockServiceTestSuite) TestDebitRejectsNonPositiveAmount() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 5)

	suite.Error(suite.stock.Debit(product.ID, 0))
	suite.Error(suite.stock.Debit(product.ID, -2))
}

func (suite *StockServiceTestSuite) TestCreditRestoresAvailability() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 0)
	suite.Equal(models.AvailabilityOutOfStock, product.Availability)

	suite.NoError(suite.stock.Credit(product.ID, 4))
	got := suite.reload(product.ID)
	suite.Equal(4, got.Quantity)
	suite.Equal(models.AvailabilityLimitedStock, got.Availability)

	suite.NoError(suite.stock.Credit(product.ID, 20))
	got = suite.reload(product.ID)
	suite.Equal(24, got.Quantity)
	suite.Equal(models.AvailabilityInStock, got.Availability)
}

func (suite *StockServiceTestSuite) TestSeasonalOverrideSticksThroughStockChanges() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 12)

	suite.NoError(suite.stock.SetSeasonal(product.ID))
	got := suite.reload(product.ID)
	suite.Equal(models.AvailabilitySeasonal, got.Availability)

	// Stock movements never auto-correct a seasonal listing.
	suite.NoError(suite.stock.Debit(product.ID, 12))
	got = suite.reload(product.ID)
	suite.Equal(0, got.Quantity)
	suite.Equal(models.AvailabilitySeasonal, got.Availability)

	suite.NoError(suite.stock.Credit(product.ID, 30))
	got = suite.reload(product.ID)
	suite.Equal(models.AvailabilitySeasonal, got.Availability)

	suite.NoError(suite.stock.ClearSeasonal(product.ID))
	got = suite.reload(product.ID)
	suite.Equal(models.AvailabilityInStock, got.Availability)
}

func (suite *StockServiceTestSuite) TestRecordSaleDebitsAndCountsAtomically() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 10)

	suite.NoError(suite.stock.RecordSale(product.ID, 4))

	got := suite.reload(product.ID)
	suite.Equal(6, got.Quantity)
	suite.Equal(int64(4), got.SalesCount)
}

func (suite *StockServiceTestSuite) TestRecordSaleInsufficientStockRollsBack() {
	product := createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 3)

	err := suite.stock.RecordSale(product.ID, 4)
	suite.ErrorIs(err, ErrInsufficientStock)

	got := suite.reload(product.ID)
	suite.Equal(3, got.Quantity)
	suite.Equal(int64(0), got.SalesCount)
}

func TestStockServiceSuite(t *testing.T) {
	suite.Run(t, new(StockServiceTestSuite))
}

func TestAvailabilityForQuantity(t *testing.T) {
	cases := []struct {
		quantity int
		want     models.Availability
	}{
		{-1, models.AvailabilityOutOfStock},
		{0, models.AvailabilityOutOfStock},
		{1, models.AvailabilityLimitedStock},
		{10, models.AvailabilityLimitedStock},
		{11, models.AvailabilityInStock},
		{500, models.AvailabilityInStock},
	}

	for _, tc := range cases {
		if got := models.AvailabilityForQuantity(tc.quantity); got != tc.want {
			t.Errorf("AvailabilityForQuantity(%d) = %q, want %q", tc.quantity, got, tc.want)
		}
	}
}
