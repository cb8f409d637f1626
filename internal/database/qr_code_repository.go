package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/loveall/loveall-backend/internal/models"
)

// QrCodeRepository handles business and user QR code rows.
type QrCodeRepository struct {
	db DB
}

// NewQrCodeRepository creates a new QR code repository
func NewQrCodeRepository(db DB) *QrCodeRepository {
	return &QrCodeRepository{db: db}
}

// FindBusinessByOffer returns the offer's QR template row, or sql.ErrNoRows.
func (r *QrCodeRepository) FindBusinessByOffer(offerID int64) (*models.QrCodeBusiness, error) {
	query := `
		SELECT qr_code_business_id, offer_id, data
		FROM qr_code_business
		WHERE offer_id = $1
	`

	var qr models.QrCodeBusiness
	if err := r.db.Get(&qr, query, offerID); err != nil {
		return nil, err
	}

	return &qr, nil
}

// CreateBusiness inserts the offer-level QR template row.
func (r *QrCodeRepository) CreateBusiness(qr *models.QrCodeBusiness) error {
	query := `
		INSERT INTO qr_code_business (offer_id, data)
		VALUES ($1, $2)
		RETURNING qr_code_business_id
	`

	if err := r.db.QueryRow(query, qr.OfferID, qr.Data).Scan(&qr.QrCodeBusinessID); err != nil {
		return fmt.Errorf("failed to create business QR code: %w", err)
	}

	return nil
}

// DeleteBusinessByOffer removes the offer's QR template; dependent user QR
// rows cascade. Returns ErrNotOwned when no row existed.
func (r *QrCodeRepository) DeleteBusinessByOffer(offerID int64) error {
	result, err := r.db.Exec(`DELETE FROM qr_code_business WHERE offer_id = $1`, offerID)
	if err != nil {
		return fmt.Errorf("failed to delete business QR code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotOwned
	}

	return nil
}

// CreateUser inserts a redemption row. Redemption is deliberately not
// idempotent: each call mints a fresh row for the consumer.
func (r *QrCodeRepository) CreateUser(qr *models.QrCodeUser) error {
	query := `
		INSERT INTO qr_code_user (qr_code_business_id, user_id, data)
		VALUES ($1, $2, $3)
		RETURNING qr_code_user_id
	`

	if err := r.db.QueryRow(query, qr.QrCodeBusinessID, qr.UserID, qr.Data).Scan(&qr.QrCodeUserID); err != nil {
		return fmt.Errorf("failed to create user QR code: %w", err)
	}

	return nil
}

// CountUserRedemptions returns how many redemption rows a consumer holds for
// one business QR template. Informational only; no cap is enforced.
func (r *QrCodeRepository) CountUserRedemptions(qrCodeBusinessID int64, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM qr_code_user
		WHERE qr_code_business_id = $1 AND user_id = $2
	`

	var count int
	if err := r.db.Get(&count, query, qrCodeBusinessID, userID); err != nil {
		return 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	return count, nil
}
