package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveall/loveall-backend/internal/models"
)

func newMockDB(t *testing.T) (DB, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return &PostgresDB{DB: sqlxDB}, mock, func() { sqlxDB.Close() }
}

func TestCreateBusinessQrCode(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO qr_code_business`).
			WithArgs(int64(42), `{"offer_id":42}`).
			WillReturnRows(sqlmock.NewRows([]string{"qr_code_business_id"}).AddRow(9))

		qr := &models.QrCodeBusiness{OfferID: 42, Data: `{"offer_id":42}`}
		err := repo.CreateBusiness(qr)
		require.NoError(t, err)
		assert.Equal(t, int64(9), qr.QrCodeBusinessID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Offer", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO qr_code_business`).
			WillReturnError(assert.AnError)

		err := repo.CreateBusiness(&models.QrCodeBusiness{OfferID: 42})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create business QR code")
	})
}

func TestDeleteBusinessByOffer(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM qr_code_business`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteBusinessByOffer(42))
	})

	t.Run("No Row", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM qr_code_business`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteBusinessByOffer(42), ErrNotOwned)
	})
}

func TestCreateUserQrCode(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO qr_code_user`).
		WithArgs(int64(9), userID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_user_id"}).AddRow(100))

	qr := &models.QrCodeUser{QrCodeBusinessID: 9, UserID: userID, Data: "{}"}
	err := repo.CreateUser(qr)
	require.NoError(t, err)
	assert.Equal(t, int64(100), qr.QrCodeUserID)

	// A second redemption mints a second row
	mock.ExpectQuery(`INSERT INTO qr_code_user`).
		WithArgs(int64(9), userID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_user_id"}).AddRow(101))

	second := &models.QrCodeUser{QrCodeBusinessID: 9, UserID: userID, Data: "{}"}
	require.NoError(t, repo.CreateUser(second))
	assert.NotEqual(t, qr.QrCodeUserID, second.QrCodeUserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUserRedemptions(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT(.+) FROM qr_code_user`).
		WithArgs(int64(9), userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUserRedemptions(9, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
