// internal/handlers/review_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahianova/ahianova-backend/internal/middleware"
	"github.com/ahianova/ahianova-backend/internal/models"
	"github.com/ahianova/ahianova-backend/internal/services"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

type ReviewHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	farmer *models.Farmer
	stock  *services.StockService
}

func (suite *ReviewHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(suite.T().Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Farmer{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.ReviewHelpfulVote{},
	))
	suite.db = db

	suite.farmer = &models.Farmer{
		FirstName:   "Kofi",
		LastName:    "Boateng",
		Email:       "handler-farmer@example.com",
		PhoneNumber: "+233200000002",
		FarmName:    "Sunrise Farm",
		IsActive:    true,
	}
	suite.Require().NoError(db.Create(suite.farmer).Error)

	suite.stock = services.NewStockService(db)
	ratings := services.NewRatingService(db)
	reviews := services.NewReviewService(db, services.NewCoordinator(ratings))
	farmers := services.NewFarmerService(db)
	products := services.NewProductService(db, suite.stock)
	orders := services.NewOrderService(db, suite.stock)

	reviewHandler := NewReviewHandler(reviews, farmers)
	productHandler := NewProductHandler(products, farmers, suite.stock)
	orderHandler := NewOrderHandler(orders, farmers)

	r := gin.New()
	v1 := r.Group("/v1")
	{
		authed := v1.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.POST("/reviews", reviewHandler.CreateReview)
			authed.POST("/reviews/:id/helpful", reviewHandler.MarkHelpful)
			authed.DELETE("/reviews/:id/helpful", reviewHandler.UnmarkHelpful)
			authed.POST("/orders", orderHandler.PlaceOrder)
		}
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.PATCH("/reviews/:id/moderate", reviewHandler.ModerateReview)
			admin.POST("/products/:id/stock-debit", productHandler.DebitStock)
		}
	}
	suite.router = r
}

func (suite *ReviewHandlerTestSuite) createUser(email string, role models.UserRole) (*models.User, string) {
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      role,
	}
	suite.Require().NoError(user.SetPassword("Sup3rSecret!"))
	suite.Require().NoError(suite.db.Create(user).Error)

	token, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), 1)
	suite.Require().NoError(err)
	return user, token
}

func (suite *ReviewHandlerTestSuite) createProduct(quantity int) *models.Product {
	category := &models.Category{
		Name:        fmt.Sprintf("Grains %d", time.Now().UnixNano()),
		Description: "Cereal grains",
		Image:       "https://cdn.example.com/grains.jpg",
		Color:       "#FFC107",
		IsActive:    true,
	}
	suite.Require().NoError(suite.db.Create(category).Error)

	product := &models.Product{
		Name:             "Brown Rice",
		Description:      "Wholegrain rice grown upcountry",
		Image:            "https://cdn.example.com/rice.jpg",
		CategoryID:       category.ID,
		CategoryName:     category.Name,
		Price:            3.25,
		Quantity:         quantity,
		Unit:             models.UnitBag,
		Availability:     models.AvailabilityForQuantity(quantity),
		Origin:           "Tamale",
		FarmerID:         suite.farmer.ID,
		FarmerName:       suite.farmer.FullName(),
		HarvestDate:      time.Now().AddDate(0, -1, 0),
		IsActive:         true,
		MinOrderQuantity: 1,
	}
	suite.Require().NoError(suite.db.Create(product).Error)
	return product
}

func (suite *ReviewHandlerTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ReviewHandlerTestSuite) TestCreateReviewAndDuplicateConflict() {
	_, token := suite.createUser("buyer1@example.com", models.UserRoleBuyer)

	body := map[string]interface{}{
		"farmer_id": suite.farmer.ID,
		"rating":    5,
		"comment":   "excellent produce",
	}

	w := suite.do("POST", "/v1/reviews", token, body)
	suite.Equal(http.StatusCreated, w.Code)

	// A second review of the same farmer conflicts.
	w = suite.do("POST", "/v1/reviews", token, body)
	suite.Equal(http.StatusConflict, w.Code)

	var resp map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp["success"].(bool))
}

func (suite *ReviewHandlerTestSuite) TestSelfHelpfulVoteIsOkButUnmarked() {
	author, token := suite.createUser("author@example.com", models.UserRoleBuyer)

	review := &models.Review{
		FarmerID: suite.farmer.ID,
		BuyerID:  author.ID,
		Rating:   4,
		Status:   models.ModerationStatusApproved,
	}
	suite.Require().NoError(suite.db.Create(review).Error)

	// Self-vote: 200 with marked=false, not an error status.
	w := suite.do("POST", fmt.Sprintf("/v1/reviews/%s/helpful", review.ID), token, nil)
	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	suite.False(data["marked"].(bool))
	suite.EqualValues(0, data["helpful_count"])

	// Another buyer's vote lands.
	_, voterToken := suite.createUser("voter@example.com", models.UserRoleBuyer)
	w = suite.do("POST", fmt.Sprintf("/v1/reviews/%s/helpful", review.ID), voterToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp["data"].(map[string]interface{})
	suite.True(data["marked"].(bool))
	suite.EqualValues(1, data["helpful_count"])
}

func (suite *ReviewHandlerTestSuite) TestModerationRequiresAdmin() {
	author, buyerToken := suite.createUser("moderated@example.com", models.UserRoleBuyer)
	_, adminToken := suite.createUser("admin@example.com", models.UserRoleAdmin)

	review := &models.Review{
		FarmerID: suite.farmer.ID,
		BuyerID:  author.ID,
		Rating:   2,
		Status:   models.ModerationStatusApproved,
	}
	suite.Require().NoError(suite.db.Create(review).Error)

	body := map[string]interface{}{"status": "rejected"}
	path := fmt.Sprintf("/v1/admin/reviews/%s/moderate", review.ID)

	w := suite.do("PATCH", path, buyerToken, body)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do("PATCH", path, adminToken, body)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ReviewHandlerTestSuite) TestOrderWithInsufficientStockConflicts() {
	_, token := suite.createUser("shopper@example.com", models.UserRoleBuyer)
	product := suite.createProduct(2)

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 5},
		},
		"payment_method":    "mobile_money",
		"shipping_street":   "12 Ring Road",
		"shipping_city":     "Accra",
		"shipping_state":    "Greater Accra",
		"shipping_zip_code": "00233",
		"shipping_country":  "Ghana",
		"shipping_phone":    "+233200000001",
	}

	w := suite.do("POST", "/v1/orders", token, body)
	suite.Equal(http.StatusConflict, w.Code)

	var resp map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	suite.Equal("INSUFFICIENT_STOCK", errObj["code"])
}

func (suite *ReviewHandlerTestSuite) TestAdminStockDebitCorrection() {
	_, adminToken := suite.createUser("stock-admin@example.com", models.UserRoleAdmin)
	product := suite.createProduct(12)

	path := fmt.Sprintf("/v1/admin/products/%s/stock-debit", product.ID)

	w := suite.do("POST", path, adminToken, map[string]interface{}{"amount": 3})
	suite.Equal(http.StatusOK, w.Code)

	var got models.Product
	suite.Require().NoError(suite.db.First(&got, "id = ?", product.ID).Error)
	suite.Equal(9, got.Quantity)
	suite.Equal(models.AvailabilityLimitedStock, got.Availability)

	// Over-debit conflicts and leaves the quantity alone.
	w = suite.do("POST", path, adminToken, map[string]interface{}{"amount": 50})
	suite.Equal(http.StatusConflict, w.Code)

	suite.Require().NoError(suite.db.First(&got, "id = ?", product.ID).Error)
	suite.Equal(9, got.Quantity)
}

func TestReviewHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerTestSuite))
}
