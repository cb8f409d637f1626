package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StoreStatus mirrors the stores.status enum.
type StoreStatus string

const (
	StoreActive   StoreStatus = "active"
	StoreInactive StoreStatus = "inactive"
)

// ParseStoreStatus validates a submitted store status value.
func ParseStoreStatus(s string) (StoreStatus, error) {
	switch StoreStatus(s) {
	case StoreActive, StoreInactive:
		return StoreStatus(s), nil
	default:
		return "", fmt.Errorf("invalid store status: %q", s)
	}
}

// Store represents a merchant storefront. Ownership is enforced at query time
// by filtering on business_id.
type Store struct {
	StoreID             int64       `json:"store_id" db:"store_id"`
	BusinessID          uuid.UUID   `json:"business_id" db:"business_id"`
	StoreName           string      `json:"store_name" db:"store_name"`
	StoreEmail          NullString  `json:"store_email,omitempty" db:"store_email"`
	Address             NullString  `json:"address,omitempty" db:"address"`
	StoreAddress        NullString  `json:"store_address,omitempty" db:"store_address"`
	City                NullString  `json:"city,omitempty" db:"city"`
	State               NullString  `json:"state,omitempty" db:"state"`
	ZipCode             NullString  `json:"zip_code,omitempty" db:"zip_code"`
	CategoryID          NullString  `json:"category_id,omitempty" db:"category_id"`
	Category            NullString  `json:"category,omitempty" db:"category"`
	Rating              NullFloat64 `json:"rating,omitempty" db:"rating"`
	Latitude            NullFloat64 `json:"latitude,omitempty" db:"latitude"`
	Longitude           NullFloat64 `json:"longitude,omitempty" db:"longitude"`
	OpeningHours        NullString  `json:"opening_hours,omitempty" db:"opening_hours"`
	Logo                NullString  `json:"logo,omitempty" db:"logo"`
	ManagerName         NullString  `json:"manager_name,omitempty" db:"manager_name"`
	ManagerContact      NullString  `json:"manager_contact,omitempty" db:"manager_contact"`
	PhoneNumber         NullString  `json:"phone_number,omitempty" db:"phone_number"`
	Status              StoreStatus `json:"status" db:"status"`
	BusinessDescription NullString  `json:"business_description,omitempty" db:"business_description"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// Feedback is a consumer rating and comment for a store.
type Feedback struct {
	FeedbackID int64     `json:"feedback_id" db:"feedback_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	StoreID    int64     `json:"store_id" db:"store_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    NullString `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
