package database

import (
	"github.com/google/uuid"
	"github.com/loveall/loveall-backend/internal/models"
)

// AdminRepository handles administrator account database operations
type AdminRepository struct {
	db DB
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db DB) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `admin_id, name, admin_email, password_hash, otp,
	otp_expiration_time, created_at`

// FindByEmail returns the admin with the given email, or sql.ErrNoRows.
func (r *AdminRepository) FindByEmail(email string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE admin_email = $1`

	var admin models.Admin
	if err := r.db.Get(&admin, query, email); err != nil {
		return nil, err
	}

	return &admin, nil
}

// FindByID returns the admin with the given id, or sql.ErrNoRows.
func (r *AdminRepository) FindByID(id uuid.UUID) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE admin_id = $1`

	var admin models.Admin
	if err := r.db.Get(&admin, query, id); err != nil {
		return nil, err
	}

	return &admin, nil
}
