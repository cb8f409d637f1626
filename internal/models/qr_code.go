package models

import (
	"github.com/google/uuid"
)

// QrCodeBusiness is the offer-level QR payload template, one row per offer.
// The data column holds the JSON-encoded BusinessQRPayload snapshot taken when
// the row was created.
type QrCodeBusiness struct {
	QrCodeBusinessID int64  `json:"qr_code_business_id" db:"qr_code_business_id"`
	OfferID          int64  `json:"offer_id" db:"offer_id"`
	Data             string `json:"data" db:"data"`
}

// QrCodeUser is a consumer-specific redemption token derived from a
// QrCodeBusiness payload. Rows are immutable once created.
type QrCodeUser struct {
	QrCodeUserID     int64     `json:"qr_code_user_id" db:"qr_code_user_id"`
	QrCodeBusinessID int64     `json:"qr_code_business_id" db:"qr_code_business_id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	Data             string    `json:"data" db:"data"`
}

// BusinessQRPayload is the JSON document stored in qr_code_business.data.
type BusinessQRPayload struct {
	OfferID     int64  `json:"offer_id"`
	OfferType   string `json:"offer_type"`
	Description string `json:"description"`
}

// UserQRPayload extends the business payload with the redeeming consumer's
// identity fields.
type UserQRPayload struct {
	BusinessQRPayload
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}
