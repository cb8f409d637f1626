package models

import (
	"time"
)

// Offer is a discount published by a store. number_of_uses and
// limit_per_customer are schema-present but not enforced during redemption.
type Offer struct {
	OfferID            int64       `json:"offer_id" db:"offer_id"`
	StoreID            int64       `json:"store_id" db:"store_id"`
	OfferType          string      `json:"offer_type" db:"offer_type"`
	Description        NullString  `json:"description,omitempty" db:"description"`
	DiscountPercentage NullFloat64 `json:"discount_percentage,omitempty" db:"discount_percentage"`
	MinimumPurchase    NullFloat64 `json:"minimum_purchase,omitempty" db:"minimum_purchase"`
	MaximumDiscount    NullFloat64 `json:"maximum_discount,omitempty" db:"maximum_discount"`
	StartDate          NullTime    `json:"start_date,omitempty" db:"start_date"`
	EndDate            NullTime    `json:"end_date,omitempty" db:"end_date"`
	TermsConditions    NullString  `json:"terms_conditions,omitempty" db:"terms_conditions"`
	NumberOfUses       NullString  `json:"number_of_uses,omitempty" db:"number_of_uses"`
	LimitPerCustomer   NullString  `json:"limit_per_customer,omitempty" db:"limit_per_customer"`
	Status             string      `json:"status" db:"status"`
	Featured           bool        `json:"featured" db:"featured"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// OfferWithStore is an offer row joined with consumer-facing store fields,
// as returned by the discovery and home feeds.
type OfferWithStore struct {
	Offer
	StoreName         string      `json:"store_name" db:"store_name"`
	StoreAddressText  NullString  `json:"store_address,omitempty" db:"s_address"`
	StoreCategory     NullString  `json:"store_category,omitempty" db:"s_category"`
	StoreCategoryID   NullString  `json:"store_category_id,omitempty" db:"s_category_id"`
	StoreRating       NullFloat64 `json:"store_rating,omitempty" db:"s_rating"`
	StoreLatitude     NullFloat64 `json:"store_latitude,omitempty" db:"s_latitude"`
	StoreLongitude    NullFloat64 `json:"store_longitude,omitempty" db:"s_longitude"`
	StoreOpeningHours NullString  `json:"store_opening_hours,omitempty" db:"s_opening_hours"`
	StoreLogo         NullString  `json:"store_logo,omitempty" db:"s_logo"`
}

// OfferFilter carries the discovery filters. Zero values mean "not supplied".
type OfferFilter struct {
	OfferID   int64
	Category  string
	Search    string
	OfferType string
	Rating    float64
	Discount  float64
	Featured  bool
	Page      int
	Limit     int
}

// Pagination is the page envelope returned alongside filtered listings.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}
