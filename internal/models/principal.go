package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PrincipalType identifies which principal table a token or guard refers to.
type PrincipalType string

const (
	PrincipalUser     PrincipalType = "user"
	PrincipalBusiness PrincipalType = "business"
	PrincipalAdmin    PrincipalType = "admin"
)

// ParsePrincipalType converts the wire value into a PrincipalType.
func ParsePrincipalType(s string) (PrincipalType, error) {
	switch PrincipalType(s) {
	case PrincipalUser, PrincipalBusiness, PrincipalAdmin:
		return PrincipalType(s), nil
	default:
		return "", fmt.Errorf("unknown principal type: %q", s)
	}
}

// RedirectPath returns the frontend landing path for the principal type.
func (p PrincipalType) RedirectPath() string {
	switch p {
	case PrincipalBusiness:
		return "/business"
	case PrincipalAdmin:
		return "/admin"
	default:
		return "/"
	}
}

// User represents a consumer account.
type User struct {
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	Email             string     `json:"email" db:"email"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	FirstName         string     `json:"first_name" db:"first_name"`
	LastName          string     `json:"last_name" db:"last_name"`
	PhoneNumber       NullString `json:"phone_number,omitempty" db:"phone_number"`
	Verified          bool       `json:"verified" db:"verified"`
	OTP               NullString `json:"-" db:"otp"`
	OTPExpirationTime NullTime   `json:"-" db:"otp_expiration_time"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Business represents a merchant account.
type Business struct {
	BusinessID         uuid.UUID  `json:"business_id" db:"business_id"`
	BusinessName       string     `json:"business_name" db:"business_name"`
	BusinessEmail      string     `json:"business_email" db:"business_email"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	BusinessType       NullString `json:"business_type,omitempty" db:"business_type"`
	EntityType         NullString `json:"entity_type,omitempty" db:"entity_type"`
	ContactNumber      NullString `json:"contact_number,omitempty" db:"contact_number"`
	GSTIN              NullString `json:"gstin,omitempty" db:"gstin"`
	TAN                NullString `json:"tan,omitempty" db:"tan"`
	OwnerName          NullString `json:"owner_name,omitempty" db:"owner_name"`
	OwnerContactNumber NullString `json:"owner_contact_number,omitempty" db:"owner_contact_number"`
	Verified           bool       `json:"verified" db:"verified"`
	ManualVerified     bool       `json:"manual_verified" db:"manual_verified"`
	TempPass           bool       `json:"temp_pass" db:"temp_pass"`
	OTP                NullString `json:"-" db:"otp"`
	OTPExpirationTime  NullTime   `json:"-" db:"otp_expiration_time"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// Admin represents a platform administrator account.
type Admin struct {
	AdminID           uuid.UUID  `json:"admin_id" db:"admin_id"`
	Name              string     `json:"name" db:"name"`
	AdminEmail        string     `json:"admin_email" db:"admin_email"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	OTP               NullString `json:"-" db:"otp"`
	OTPExpirationTime NullTime   `json:"-" db:"otp_expiration_time"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// Card represents a consumer loyalty card.
type Card struct {
	CardID       int64     `json:"card_id" db:"card_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	CardNumber   string    `json:"card_number" db:"card_number"`
	PurchaseDate NullTime  `json:"purchase_date,omitempty" db:"purchase_date"`
	ExpiryDate   NullTime  `json:"expiry_date,omitempty" db:"expiry_date"`
}
