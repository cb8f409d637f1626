package middleware

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/models"
	"github.com/loveall/loveall-backend/pkg/jwt"
)

var userTestColumns = []string{
	"user_id", "email", "password_hash", "first_name", "last_name", "phone_number",
	"verified", "otp", "otp_expiration_time", "created_at", "updated_at",
}

func setupAuthTest(t *testing.T) (*Auth, *jwt.Service, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	db := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtService := jwt.NewService("test-secret", time.Hour)
	auth := NewAuth(
		jwtService,
		database.NewUserRepository(db),
		database.NewBusinessRepository(db),
		database.NewAdminRepository(db),
		logger,
	)

	cleanup := func() {
		sqlxDB.Close()
	}
	return auth, jwtService, mock, cleanup
}

func guardedContext(token string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		c.Request.Header.Set("Authorization", "Bearer "+token)
	}
	return c, w
}

func TestRequireUser_ValidToken(t *testing.T) {
	auth, jwtService, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID, "jane@example.com", "user")
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE user_id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow(userID, "jane@example.com", "hash", "Jane", "Perera", nil,
				true, nil, nil, now, now))

	c, w := guardedContext(token)
	auth.RequireUser()(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)

	principal, ok := GetPrincipal(c)
	require.True(t, ok)
	assert.Equal(t, userID, principal.ID)
	assert.Equal(t, models.PrincipalUser, principal.Type)
	require.NotNil(t, principal.User)
	assert.Equal(t, "Jane", principal.User.FirstName)
}

func TestRequireUser_MissingHeader(t *testing.T) {
	auth, _, _, cleanup := setupAuthTest(t)
	defer cleanup()

	c, w := guardedContext("")
	auth.RequireUser()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireUser_GarbageToken(t *testing.T) {
	auth, _, _, cleanup := setupAuthTest(t)
	defer cleanup()

	c, w := guardedContext("not-a-token")
	auth.RequireUser()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireUser_ExpiredToken(t *testing.T) {
	auth, _, _, cleanup := setupAuthTest(t)
	defer cleanup()

	expired := jwt.NewService("test-secret", -time.Hour)
	token, err := expired.GenerateToken(uuid.New(), "jane@example.com", "user")
	require.NoError(t, err)

	c, w := guardedContext(token)
	auth.RequireUser()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Token has expired", body["message"])
}

func TestRequireBusiness_RejectsUserToken(t *testing.T) {
	auth, jwtService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	token, err := jwtService.GenerateToken(uuid.New(), "jane@example.com", "user")
	require.NoError(t, err)

	c, w := guardedContext(token)
	auth.RequireBusiness()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// The redirect points at the caller's own surface, not the guarded one
	assert.Equal(t, "/", body["redirectTo"])
}

func TestRequireUser_RejectsBusinessToken(t *testing.T) {
	auth, jwtService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	token, err := jwtService.GenerateToken(uuid.New(), "owner@cafearoma.com", "business")
	require.NoError(t, err)

	c, w := guardedContext(token)
	auth.RequireUser()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/business", body["redirectTo"])
}

func TestRequireUser_DeletedAccount(t *testing.T) {
	auth, jwtService, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID, "jane@example.com", "user")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE user_id").
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	c, w := guardedContext(token)
	auth.RequireUser()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Account no longer exists", body["message"])
}

func TestRequireAdmin_ValidToken(t *testing.T) {
	auth, jwtService, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	adminID := uuid.New()
	token, err := jwtService.GenerateToken(adminID, "root@loveall.com", "admin")
	require.NoError(t, err)

	adminColumns := []string{
		"admin_id", "name", "admin_email", "password_hash", "otp",
		"otp_expiration_time", "created_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM admins WHERE admin_id").
		WithArgs(adminID).
		WillReturnRows(sqlmock.NewRows(adminColumns).
			AddRow(adminID, "Root", "root@loveall.com", "hash", nil, nil, time.Now()))

	c, _ := guardedContext(token)
	auth.RequireAdmin()(c)

	assert.False(t, c.IsAborted())

	principal, ok := GetPrincipal(c)
	require.True(t, ok)
	assert.NotNil(t, principal.Admin)
}
