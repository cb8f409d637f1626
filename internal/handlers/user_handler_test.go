package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/middleware"
	"github.com/loveall/loveall-backend/internal/models"
)

var offerTestColumns = []string{
	"offer_id", "store_id", "offer_type", "description",
	"discount_percentage", "minimum_purchase", "maximum_discount", "start_date",
	"end_date", "terms_conditions", "number_of_uses", "limit_per_customer",
	"status", "featured", "created_at", "updated_at",
}

var offerJoinTestColumns = append(append([]string{}, offerTestColumns...),
	"store_name", "s_address", "s_category", "s_category_id", "s_rating",
	"s_latitude", "s_longitude", "s_opening_hours", "s_logo")

func setupUserHandler(db database.DB) *UserHandler {
	return NewUserHandler(
		database.NewStoreRepository(db),
		database.NewOfferRepository(db),
		database.NewQrCodeRepository(db),
		database.NewTransactionRepository(db),
		database.NewFeedbackRepository(db),
		database.NewUserRepository(db),
		database.NewCharityRepository(db),
		testLogger(),
	)
}

func offerJoinRow(rows *sqlmock.Rows, offerID, storeID int64, storeName string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(offerID, storeID, "percentage", "10% off everything",
		10.0, nil, nil, nil, nil, nil, nil, nil,
		"active", false, now, now,
		storeName, nil, nil, nil, nil, nil, nil, nil, nil)
}

func authedUserContext(t *testing.T, user *models.User, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := postJSON(t, body)
	c.Set(middleware.PrincipalContextKey, middleware.PrincipalContext{
		ID:    user.UserID,
		Email: user.Email,
		Type:  models.PrincipalUser,
		User:  user,
	})
	return c, w
}

func TestDiscount_FirstPage(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	mock.ExpectQuery("SELECT COUNT(.+) FROM offers o").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	rows := sqlmock.NewRows(offerJoinTestColumns)
	offerJoinRow(rows, 1, 7, "Cafe Aroma Colombo")
	offerJoinRow(rows, 2, 7, "Cafe Aroma Colombo")
	mock.ExpectQuery("SELECT (.+) FROM offers o").
		WillReturnRows(rows)

	c, w := postJSON(t, gin.H{"page": 1, "limit": 12})
	handler.Discount(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["totalItems"])
	assert.Equal(t, float64(1), pagination["totalPages"])
	assert.Equal(t, float64(1), pagination["currentPage"])
}

func TestDiscount_PagePastEnd(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	mock.ExpectQuery("SELECT COUNT(.+) FROM offers o").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT (.+) FROM offers o").
		WillReturnRows(sqlmock.NewRows(offerJoinTestColumns))

	c, w := postJSON(t, gin.H{"page": 3, "limit": 12})
	handler.Discount(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not enough data", decodeBody(t, w)["message"])
}

func TestDiscount_EmptyResultSet(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	// Zero matching rows means zero pages, so page 1 is already past the end
	mock.ExpectQuery("SELECT COUNT(.+) FROM offers o").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM offers o").
		WillReturnRows(sqlmock.NewRows(offerJoinTestColumns))

	c, w := postJSON(t, gin.H{"page": 1, "limit": 12})
	handler.Discount(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Not enough data", body["message"])
}

func TestDiscount_InvalidPage(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	c, w := postJSON(t, gin.H{"page": -1, "limit": 12})
	handler.Discount(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedeem_CreatesRedemptionRow(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	user := &models.User{
		UserID:    uuid.New(),
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Perera",
	}

	basePayload, err := json.Marshal(models.BusinessQRPayload{
		OfferID:     42,
		OfferType:   "percentage",
		Description: "10% off everything",
	})
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM offers WHERE offer_id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(offerTestColumns).
			AddRow(42, 7, "percentage", "10% off everything",
				10.0, nil, nil, nil, nil, nil, nil, nil,
				"active", false, now, now))
	mock.ExpectQuery("SELECT (.+) FROM qr_code_business").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_business_id", "offer_id", "data"}).
			AddRow(9, 42, string(basePayload)))
	mock.ExpectQuery("INSERT INTO qr_code_user").
		WithArgs(int64(9), user.UserID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_user_id"}).AddRow(100))

	c, w := authedUserContext(t, user, gin.H{"offer_id": 42})
	handler.Redeem(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Offer redeemed", body["message"])

	// The minted payload carries both the offer and the consumer identity
	var payload models.UserQRPayload
	require.NoError(t, json.Unmarshal([]byte(body["qrCodeData"].(string)), &payload))
	assert.Equal(t, int64(42), payload.OfferID)
	assert.Equal(t, user.UserID, payload.UserID)
	assert.Equal(t, "Jane", payload.FirstName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_TwiceMintsTwoRows(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	user := &models.User{
		UserID:    uuid.New(),
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Perera",
	}

	basePayload, err := json.Marshal(models.BusinessQRPayload{
		OfferID:     42,
		OfferType:   "percentage",
		Description: "10% off everything",
	})
	require.NoError(t, err)

	// Redemption is not idempotent: each call inserts a fresh row
	now := time.Now()
	for _, id := range []int64{100, 101} {
		mock.ExpectQuery("SELECT (.+) FROM offers WHERE offer_id").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(offerTestColumns).
				AddRow(42, 7, "percentage", "10% off everything",
					10.0, nil, nil, nil, nil, nil, nil, nil,
					"active", false, now, now))
		mock.ExpectQuery("SELECT (.+) FROM qr_code_business").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"qr_code_business_id", "offer_id", "data"}).
				AddRow(9, 42, string(basePayload)))
		mock.ExpectQuery("INSERT INTO qr_code_user").
			WithArgs(int64(9), user.UserID, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"qr_code_user_id"}).AddRow(id))
	}

	c1, w1 := authedUserContext(t, user, gin.H{"offer_id": 42})
	handler.Redeem(c1)
	require.Equal(t, http.StatusOK, w1.Code)

	c2, w2 := authedUserContext(t, user, gin.H{"offer_id": 42})
	handler.Redeem(c2)
	require.Equal(t, http.StatusOK, w2.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_NoQRForOffer(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	user := &models.User{UserID: uuid.New(), Email: "jane@example.com"}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM offers WHERE offer_id").
		WillReturnRows(sqlmock.NewRows(offerTestColumns).
			AddRow(42, 7, "percentage", nil, 10.0, nil, nil, nil, nil, nil,
				nil, nil, "active", false, now, now))
	mock.ExpectQuery("SELECT (.+) FROM qr_code_business").
		WillReturnError(sql.ErrNoRows)

	c, w := authedUserContext(t, user, gin.H{"offer_id": 42})
	handler.Redeem(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No QR code exists for this offer", decodeBody(t, w)["message"])
}

func TestRedeem_OfferNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	user := &models.User{UserID: uuid.New(), Email: "jane@example.com"}

	mock.ExpectQuery("SELECT (.+) FROM offers WHERE offer_id").
		WillReturnError(sql.ErrNoRows)

	c, w := authedUserContext(t, user, gin.H{"offer_id": 42})
	handler.Redeem(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRedeem_Unauthenticated(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	c, w := postJSON(t, gin.H{"offer_id": 42})
	handler.Redeem(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCard_NotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	user := &models.User{UserID: uuid.New(), Email: "jane@example.com"}

	mock.ExpectQuery("SELECT (.+) FROM cards").
		WithArgs(user.UserID).
		WillReturnError(sql.ErrNoRows)

	c, w := authedUserContext(t, user, gin.H{})
	handler.Card(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No card found for this account", decodeBody(t, w)["message"])
}

func TestSubmitFeedback_RatingOutOfRange(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupUserHandler(db)

	user := &models.User{UserID: uuid.New(), Email: "jane@example.com"}

	c, w := authedUserContext(t, user, gin.H{"store_id": 7, "rating": 9})
	handler.SubmitFeedback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
