package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loveall/loveall-backend/internal/models"
)

// BusinessRepository handles merchant account database operations
type BusinessRepository struct {
	db DB
}

// NewBusinessRepository creates a new business repository
func NewBusinessRepository(db DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

const businessColumns = `business_id, business_name, business_email, password_hash,
	business_type, entity_type, contact_number, gstin, tan, owner_name,
	owner_contact_number, verified, manual_verified, temp_pass, otp,
	otp_expiration_time, created_at, updated_at`

// Create inserts a verified business row. This is the promotion step of the
// registration flow: the row appears only after OTP confirmation, with an
// empty password hash until change-password establishes one.
func (r *BusinessRepository) Create(business *models.Business) error {
	query := `
		INSERT INTO businesses (
			business_id, business_name, business_email, password_hash,
			business_type, entity_type, contact_number, gstin, tan, owner_name,
			owner_contact_number, verified, manual_verified, temp_pass,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(
		query,
		business.BusinessID,
		business.BusinessName,
		business.BusinessEmail,
		business.PasswordHash,
		business.BusinessType,
		business.EntityType,
		business.ContactNumber,
		business.GSTIN,
		business.TAN,
		business.OwnerName,
		business.OwnerContactNumber,
		business.Verified,
		business.ManualVerified,
		business.TempPass,
		business.CreatedAt,
		business.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}

	return nil
}

// FindByEmail returns the business with the given email, or sql.ErrNoRows.
func (r *BusinessRepository) FindByEmail(email string) (*models.Business, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE business_email = $1`, businessColumns)

	var business models.Business
	if err := r.db.Get(&business, query, email); err != nil {
		return nil, err
	}

	return &business, nil
}

// FindByID returns the business with the given id, or sql.ErrNoRows.
func (r *BusinessRepository) FindByID(id uuid.UUID) (*models.Business, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE business_id = $1`, businessColumns)

	var business models.Business
	if err := r.db.Get(&business, query, id); err != nil {
		return nil, err
	}

	return &business, nil
}

// SetOTP overwrites the stored OTP and its expiry for the given email.
func (r *BusinessRepository) SetOTP(email, otp string, expiresAt time.Time) error {
	query := `
		UPDATE businesses
		SET otp = $1, otp_expiration_time = $2, updated_at = $3
		WHERE business_email = $4
	`

	_, err := r.db.Exec(query, otp, expiresAt, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to set business OTP: %w", err)
	}

	return nil
}

// UpdatePassword stores a new password hash, clears the OTP and drops the
// temporary-password flag.
func (r *BusinessRepository) UpdatePassword(email, passwordHash string) error {
	query := `
		UPDATE businesses
		SET password_hash = $1, otp = NULL, temp_pass = false, updated_at = $2
		WHERE business_email = $3
	`

	_, err := r.db.Exec(query, passwordHash, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to update business password: %w", err)
	}

	return nil
}

// ManualVerify stores the bootstrap password hash and flips the
// manual_verified and temp_pass flags in one statement.
func (r *BusinessRepository) ManualVerify(email, passwordHash string) error {
	query := `
		UPDATE businesses
		SET password_hash = $1, manual_verified = true, temp_pass = true, updated_at = $2
		WHERE business_email = $3
	`

	_, err := r.db.Exec(query, passwordHash, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to manually verify business: %w", err)
	}

	return nil
}

// UpdateProfile updates the merchant's editable profile fields.
func (r *BusinessRepository) UpdateProfile(id uuid.UUID, businessName string, contactNumber, ownerName, ownerContactNumber models.NullString) error {
	query := `
		UPDATE businesses
		SET business_name = $1, contact_number = $2, owner_name = $3,
			owner_contact_number = $4, updated_at = $5
		WHERE business_id = $6
	`

	_, err := r.db.Exec(query, businessName, contactNumber, ownerName, ownerContactNumber, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update business profile: %w", err)
	}

	return nil
}

// ListAll returns every business ordered by registration date, newest first.
func (r *BusinessRepository) ListAll() ([]models.Business, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses ORDER BY created_at DESC`, businessColumns)

	businesses := []models.Business{}
	if err := r.db.Select(&businesses, query); err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}

	return businesses, nil
}

// CountVerified returns the number of OTP-verified businesses.
func (r *BusinessRepository) CountVerified() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM businesses WHERE verified = true`); err != nil {
		return 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	return count, nil
}
