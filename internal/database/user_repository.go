package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loveall/loveall-backend/internal/models"
)

// UserRepository handles consumer account database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, email, password_hash, first_name, last_name, phone_number,
	verified, otp, otp_expiration_time, created_at, updated_at`

// Create inserts a new consumer row. The row starts unverified with the OTP
// already set so the verify step is a single UPDATE.
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (
			user_id, email, password_hash, first_name, last_name, phone_number,
			verified, otp, otp_expiration_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(
		query,
		user.UserID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Verified,
		user.OTP,
		user.OTPExpirationTime,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail returns the consumer with the given email, or sql.ErrNoRows.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	var user models.User
	if err := r.db.Get(&user, query, email); err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID returns the consumer with the given id, or sql.ErrNoRows.
func (r *UserRepository) FindByID(id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = $1`, userColumns)

	var user models.User
	if err := r.db.Get(&user, query, id); err != nil {
		return nil, err
	}

	return &user, nil
}

// SetOTP overwrites the stored OTP and its expiry for the given email.
func (r *UserRepository) SetOTP(email, otp string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET otp = $1, otp_expiration_time = $2, updated_at = $3
		WHERE email = $4
	`

	_, err := r.db.Exec(query, otp, expiresAt, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to set user OTP: %w", err)
	}

	return nil
}

// MarkVerified flips the verified flag and clears the OTP.
func (r *UserRepository) MarkVerified(email string) error {
	query := `
		UPDATE users
		SET verified = true, otp = NULL, otp_expiration_time = NULL, updated_at = $1
		WHERE email = $2
	`

	_, err := r.db.Exec(query, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	return nil
}

// UpdatePassword stores a new password hash and clears the OTP.
func (r *UserRepository) UpdatePassword(email, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, otp = NULL, updated_at = $2
		WHERE email = $3
	`

	_, err := r.db.Exec(query, passwordHash, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}

	return nil
}

// UpdateProfile updates the consumer's editable profile fields.
func (r *UserRepository) UpdateProfile(id uuid.UUID, firstName, lastName string, phoneNumber models.NullString) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone_number = $3, updated_at = $4
		WHERE user_id = $5
	`

	_, err := r.db.Exec(query, firstName, lastName, phoneNumber, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	return nil
}

// ListAll returns every consumer ordered by signup date, newest first.
func (r *UserRepository) ListAll() ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC`, userColumns)

	users := []models.User{}
	if err := r.db.Select(&users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Count returns the total number of consumer rows.
func (r *UserRepository) Count() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// FindCard returns the consumer's loyalty card, or sql.ErrNoRows when the
// consumer holds none.
func (r *UserRepository) FindCard(userID uuid.UUID) (*models.Card, error) {
	query := `
		SELECT card_id, user_id, card_number, purchase_date, expiry_date
		FROM cards
		WHERE user_id = $1
		ORDER BY card_id ASC
		LIMIT 1
	`

	var card models.Card
	if err := r.db.Get(&card, query, userID); err != nil {
		return nil, err
	}

	return &card, nil
}
