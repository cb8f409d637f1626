package handlers

import (
	"database/sql"
	"errors"
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
	"github.com/loveall/loveall-backend/internal/services"
)

func setupAdminHandler(db database.DB, mailer *recordingMailer, uploadDir string) *AdminHandler {
	return NewAdminHandler(
		services.NewPasswordService(),
		services.NewExportService(),
		database.NewBusinessRepository(db),
		database.NewUserRepository(db),
		database.NewStoreRepository(db),
		database.NewOfferRepository(db),
		database.NewTransactionRepository(db),
		database.NewCharityRepository(db),
		mailer,
		testLogger(),
		uploadDir,
	)
}

func adminGetContext(path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	return c, w
}

func TestManualVerification_Success(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mailer := &recordingMailer{}
	handler := setupAdminHandler(db, mailer, t.TempDir())

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM businesses WHERE business_email").
		WithArgs("owner@cafearoma.com").
		WillReturnRows(sqlmock.NewRows(businessTestColumns).
			AddRow(uuid.New(), "Cafe Aroma", "owner@cafearoma.com", "", nil, nil,
				nil, nil, nil, nil, nil, true, false, false, nil, nil, now, now))
	mock.ExpectExec("UPDATE businesses").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, w := postJSON(t, gin.H{"business_email": "owner@cafearoma.com"})
	handler.ManualVerification(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mailer.count())
	assert.Equal(t, "owner@cafearoma.com", mailer.last().To)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManualVerification_MailFailureLeavesRowUntouched(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mailer := &recordingMailer{fail: errors.New("smtp unreachable")}
	handler := setupAdminHandler(db, mailer, t.TempDir())

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM businesses WHERE business_email").
		WithArgs("owner@cafearoma.com").
		WillReturnRows(sqlmock.NewRows(businessTestColumns).
			AddRow(uuid.New(), "Cafe Aroma", "owner@cafearoma.com", "", nil, nil,
				nil, nil, nil, nil, nil, true, false, false, nil, nil, now, now))

	c, w := postJSON(t, gin.H{"business_email": "owner@cafearoma.com"})
	handler.ManualVerification(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send verification email", decodeBody(t, w)["message"])

	// No UPDATE was expected or issued; the flag stays down
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManualVerification_BusinessNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupAdminHandler(db, &recordingMailer{}, t.TempDir())

	mock.ExpectQuery("SELECT (.+) FROM businesses WHERE business_email").
		WillReturnError(sql.ErrNoRows)

	c, w := postJSON(t, gin.H{"business_email": "ghost@example.com"})
	handler.ManualVerification(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminTransactions_InvalidStoreID(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupAdminHandler(db, &recordingMailer{}, t.TempDir())

	c, w := adminGetContext("/api/admin/transactions?storeId=abc")
	handler.Transactions(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid store id", decodeBody(t, w)["message"])
}

func TestBusinessAccounts_StatusMapping(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupAdminHandler(db, &recordingMailer{}, t.TempDir())

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM businesses").
		WillReturnRows(sqlmock.NewRows(businessTestColumns).
			AddRow(uuid.New(), "Cafe Aroma", "owner@cafearoma.com", "", nil, nil,
				nil, nil, nil, nil, nil, true, true, false, nil, nil, now, now).
			AddRow(uuid.New(), "Book Nook", "owner@booknook.com", "", nil, nil,
				nil, nil, nil, nil, nil, true, false, false, nil, nil, now, now))

	c, w := adminGetContext("/api/admin/business-accounts")
	handler.BusinessAccounts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	accounts := decodeBody(t, w)["businesses"].([]interface{})
	require.Len(t, accounts, 2)
	assert.Equal(t, "Approved", accounts[0].(map[string]interface{})["status"])
	assert.Equal(t, "Pending", accounts[1].(map[string]interface{})["status"])
}

func TestUserAccounts_StatusMapping(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupAdminHandler(db, &recordingMailer{}, t.TempDir())

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow(uuid.New(), "jane@example.com", "hash", "Jane", "Perera", nil,
				true, nil, nil, now, now).
			AddRow(uuid.New(), "sam@example.com", "hash", "Sam", "Silva", nil,
				false, nil, nil, now, now))

	c, w := adminGetContext("/api/admin/user-accounts")
	handler.UserAccounts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	users := decodeBody(t, w)["users"].([]interface{})
	require.Len(t, users, 2)

	first := users[0].(map[string]interface{})
	assert.Equal(t, "Jane Perera", first["name"])
	assert.Equal(t, "Verified", first["status"])
	assert.Equal(t, "Unverified", users[1].(map[string]interface{})["status"])
}

func TestUserDetails_InvalidID(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupAdminHandler(db, &recordingMailer{}, t.TempDir())

	c, w := adminGetContext("/api/admin/user-accounts/not-a-uuid")
	c.Params = gin.Params{{Key: "userId", Value: "not-a-uuid"}}
	handler.UserDetails(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBusinessDetails_NotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupAdminHandler(db, &recordingMailer{}, t.TempDir())

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM businesses WHERE business_id").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	c, w := adminGetContext("/api/admin/business-accounts/" + id.String())
	c.Params = gin.Params{{Key: "businessId", Value: id.String()}}
	handler.BusinessDetails(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddCharityContent_InvalidType(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	handler := setupAdminHandler(db, &recordingMailer{}, t.TempDir())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/admin/charity/poster", nil)
	c.Params = gin.Params{{Key: "type", Value: "poster"}}
	handler.AddCharityContent(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid charity type", decodeBody(t, w)["message"])
}
