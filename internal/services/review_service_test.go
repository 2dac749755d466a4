// internal/services/review_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/models"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	reviews  *ReviewService
	ratings  *RatingService
	farmer   *models.Farmer
	category *models.Category
	product  *models.Product
	admin    *models.User
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.ratings = NewRatingService(suite.db)
	suite.reviews = NewReviewService(suite.db, NewCoordinator(suite.ratings))
	suite.farmer = createTestFarmer(suite.T(), suite.db, "review-farmer@example.com")
	suite.category = createTestCategory(suite.T(), suite.db, "Fruits")
	suite.product = createTestProduct(suite.T(), suite.db, suite.farmer, suite.category, 25)
	suite.admin = createTestUser(suite.T(), suite.db, "admin@example.com")
}

func (suite *ReviewServiceTestSuite) addReview(email string, rating int) (*models.Review, *models.User) {
	buyer := createTestUser(suite.T(), suite.db, email)
	review, err := suite.reviews.CreateReview(buyer.ID, &CreateReviewRequest{
		FarmerID:  suite.farmer.ID,
		ProductID: &suite.product.ID,
		Rating:    rating,
	})
	suite.Require().NoError(err)
	return review, buyer
}

func (suite *ReviewServiceTestSuite) reloadFarmer() *models.Farmer {
	var farmer models.Farmer
	suite.Require().NoError(suite.db.First(&farmer, "id = ?", suite.farmer.ID).Error)
	return &farmer
}

func (suite *ReviewServiceTestSuite) reloadProduct() *models.Product {
	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", suite.product.ID).Error)
	return &product
}

func (suite *ReviewServiceTestSuite) reloadReview(id uuid.UUID) *models.Review {
	var review models.Review
	suite.Require().NoError(suite.db.First(&review, "id = ?", id).Error)
	return &review
}

func (suite *ReviewServiceTestSuite) TestRatingAggregationLifecycle() {
	suite.addReview("b1@example.com", 5)
	suite.addReview("b2@example.com", 3)
	suite.addReview("b3@example.com", 4)

	farmer := suite.reloadFarmer()
	suite.InDelta(4.0, farmer.AverageRating, 0.001)
	suite.Equal(int64(3), farmer.TotalReviews)

	product := suite.reloadProduct()
	suite.InDelta(4.0, product.Rating, 0.001)
	suite.Equal(int64(3), product.ReviewCount)

	// A fourth approved review rated 2 pulls the mean to 3.5.
	review4, buyer4 := suite.addReview("b4@example.com", 2)

	farmer = suite.reloadFarmer()
	suite.InDelta(3.5, farmer.AverageRating, 0.001)
	suite.Equal(int64(4), farmer.TotalReviews)

	// Deleting it reverts the aggregate.
	suite.Require().NoError(suite.reviews.DeleteReview(review4.ID, buyer4.ID, false))

	farmer = suite.reloadFarmer()
	suite.InDelta(4.0, farmer.AverageRating, 0.001)
	suite.Equal(int64(3), farmer.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestAverageRoundsToOneDecimal() {
	suite.addReview("r1@example.com", 5)
	suite.addReview("r2@example.com", 4)
	suite.addReview("r3@example.com", 4)

	// 13/3 = 4.333... rounds to 4.3
	farmer := suite.reloadFarmer()
	suite.InDelta(4.3, farmer.AverageRating, 0.001)
}

func (suite *ReviewServiceTestSuite) TestZeroApprovedReviewsMeansZeroAggregate() {
	review, _ := suite.addReview("only@example.com", 5)

	_, err := suite.reviews.ModerateReview(review.ID, suite.admin.ID, &ModerateReviewRequest{
		Status: models.ModerationStatusRejected,
	})
	suite.Require().NoError(err)

	farmer := suite.reloadFarmer()
	suite.Zero(farmer.AverageRating)
	suite.Zero(farmer.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestModerationTransitionsDriveRecompute() {
	review, _ := suite.addReview("m1@example.com", 2)
	suite.addReview("m2@example.com", 5)

	farmer := suite.reloadFarmer()
	suite.InDelta(3.5, farmer.AverageRating, 0.001)

	// approved -> flagged drops the review from the aggregate.
	_, err := suite.reviews.ModerateReview(review.ID, suite.admin.ID, &ModerateReviewRequest{
		Status: models.ModerationStatusFlagged,
	})
	suite.Require().NoError(err)

	farmer = suite.reloadFarmer()
	suite.InDelta(5.0, farmer.AverageRating, 0.001)
	suite.Equal(int64(1), farmer.TotalReviews)

	// flagged -> approved brings it back.
	_, err = suite.reviews.ModerateReview(review.ID, suite.admin.ID, &ModerateReviewRequest{
		Status: models.ModerationStatusApproved,
	})
	suite.Require().NoError(err)

	farmer = suite.reloadFarmer()
	suite.InDelta(3.5, farmer.AverageRating, 0.001)
	suite.Equal(int64(2), farmer.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestRatingEditOnApprovedReviewRecomputes() {
	review, buyer := suite.addReview("edit@example.com", 2)

	_, err := suite.reviews.UpdateReview(review.ID, buyer.ID, &UpdateReviewRequest{Rating: 5})
	suite.Require().NoError(err)

	farmer := suite.reloadFarmer()
	suite.InDelta(5.0, farmer.AverageRating, 0.001)
}

func (suite *ReviewServiceTestSuite) TestCommentEditDoesNotChangeAggregate() {
	review, buyer := suite.addReview("text@example.com", 4)

	_, err := suite.reviews.UpdateReview(review.ID, buyer.ID, &UpdateReviewRequest{Comment: "updated text"})
	suite.Require().NoError(err)

	farmer := suite.reloadFarmer()
	suite.InDelta(4.0, farmer.AverageRating, 0.001)
	suite.Equal(int64(1), farmer.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestRecomputeIsIdempotent() {
	suite.addReview("i1@example.com", 5)
	suite.addReview("i2@example.com", 4)

	first := suite.reloadFarmer()
	suite.Require().NoError(suite.ratings.RecomputeFarmerRating(suite.farmer.ID))
	second := suite.reloadFarmer()

	suite.Equal(first.AverageRating, second.AverageRating)
	suite.Equal(first.TotalReviews, second.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestDuplicateReviewRejected() {
	_, buyer := suite.addReview("dup@example.com", 4)

	_, err := suite.reviews.CreateReview(buyer.ID, &CreateReviewRequest{
		FarmerID: suite.farmer.ID,
		Rating:   1,
	})
	suite.ErrorIs(err, ErrDuplicateReview)

	// The original is unchanged.
	farmer := suite.reloadFarmer()
	suite.InDelta(4.0, farmer.AverageRating, 0.001)
	suite.Equal(int64(1), farmer.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestUpdateByNonOwnerForbidden() {
	review, _ := suite.addReview("owner@example.com", 4)
	other := createTestUser(suite.T(), suite.db, "other@example.com")

	_, err := suite.reviews.UpdateReview(review.ID, other.ID, &UpdateReviewRequest{Rating: 1})
	suite.ErrorIs(err, ErrNotOwner)
}

func (suite *ReviewServiceTestSuite) TestRecomputeSurvivesMissingFarmer() {
	review, buyer := suite.addReview("ghost@example.com", 4)

	// Simulate the farmer disappearing before the recompute fires. The
	// review delete itself must still succeed.
	suite.Require().NoError(suite.db.Unscoped().Delete(&models.Farmer{}, "id = ?", suite.farmer.ID).Error)

	suite.NoError(suite.reviews.DeleteReview(review.ID, buyer.ID, false))
}

func (suite *ReviewServiceTestSuite) TestHelpfulVoteLifecycle() {
	review, author := suite.addReview("author@example.com", 5)

	// Self-votes are a rejected no-op, not an error.
	marked, err := suite.reviews.MarkHelpful(review.ID, author.ID)
	suite.NoError(err)
	suite.False(marked)
	suite.Equal(int64(0), suite.reloadReview(review.ID).HelpfulCount)

	voter := createTestUser(suite.T(), suite.db, "voter@example.com")
	marked, err = suite.reviews.MarkHelpful(review.ID, voter.ID)
	suite.NoError(err)
	suite.True(marked)
	suite.Equal(int64(1), suite.reloadReview(review.ID).HelpfulCount)

	// Repeat votes do not double count.
	marked, err = suite.reviews.MarkHelpful(review.ID, voter.ID)
	suite.NoError(err)
	suite.False(marked)
	suite.Equal(int64(1), suite.reloadReview(review.ID).HelpfulCount)

	// Unmark returns the counter to the vote-set cardinality.
	suite.NoError(suite.reviews.UnmarkHelpful(review.ID, voter.ID))
	suite.Equal(int64(0), suite.reloadReview(review.ID).HelpfulCount)

	// Unmarking an absent vote is a no-op and never goes negative.
	suite.NoError(suite.reviews.UnmarkHelpful(review.ID, voter.ID))
	suite.Equal(int64(0), suite.reloadReview(review.ID).HelpfulCount)
}

func (suite *ReviewServiceTestSuite) TestReportDoesNotChangeStatus() {
	review, _ := suite.addReview("reporter@example.com", 3)

	suite.Require().NoError(suite.reviews.ReportReview(review.ID, &ReportReviewRequest{
		Reason: models.ReportReasonSpam,
	}))

	got := suite.reloadReview(review.ID)
	suite.True(got.IsReported)
	suite.Equal(models.ModerationStatusApproved, got.Status)

	farmer := suite.reloadFarmer()
	suite.Equal(int64(1), farmer.TotalReviews)
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
