package models

import (
	"time"

	"github.com/google/uuid"
)

// OfferTransaction records a purchase against an offer. Rows are written by
// the external payment collaborator; this service only reads them.
type OfferTransaction struct {
	TransactionID   int64       `json:"transaction_id" db:"transaction_id"`
	UserID          uuid.UUID   `json:"user_id" db:"user_id"`
	OfferID         NullString  `json:"offer_id,omitempty" db:"offer_id"`
	StoreID         int64       `json:"store_id" db:"store_id"`
	Amount          float64     `json:"amount" db:"amount"`
	DiscountApplied NullFloat64 `json:"discount_applied,omitempty" db:"discount_applied"`
	Status          string      `json:"status" db:"status"`
	TransactionDate time.Time   `json:"transaction_date" db:"transaction_date"`
	InvoicePath     NullString  `json:"invoice_path,omitempty" db:"invoice_path"`
}

// TransactionWithStore joins the store name for admin listings.
type TransactionWithStore struct {
	OfferTransaction
	StoreName NullString `json:"store_name" db:"store_name"`
}

// AfterDiscountPrice is the amount net of any discount applied.
func (t *OfferTransaction) AfterDiscountPrice() float64 {
	if t.DiscountApplied.Valid {
		return t.Amount - t.DiscountApplied.Float64
	}
	return t.Amount
}

// TransactionMetrics summarises a business's transaction history.
type TransactionMetrics struct {
	TotalAmount           float64 `json:"totalAmount"`
	CompletedTransactions int     `json:"completedTransactions"`
	PendingTransactions   int     `json:"pendingTransactions"`
	AverageAmount         float64 `json:"averageAmount"`
}

// TransactionFilter narrows admin transaction listings.
type TransactionFilter struct {
	UserID  string
	StoreID int64
	Status  string
}

// Dashboard aggregate rows. All grouping is delegated to the database.

// DailyActivity is one day of the trailing 14-day revenue series.
type DailyActivity struct {
	Date  time.Time `json:"date" db:"date"`
	Total float64   `json:"total" db:"total"`
}

// MonthlyGrowth is one month of the trailing 6-month signup series.
type MonthlyGrowth struct {
	Month string `json:"month" db:"month"`
	Users int    `json:"users" db:"users"`
}

// TopBusiness is one row of the top-3-by-revenue ranking.
type TopBusiness struct {
	StoreName    string  `json:"store_name" db:"store_name"`
	Transactions int     `json:"transactions" db:"transactions"`
	Revenue      float64 `json:"revenue" db:"revenue"`
}

// CategoryCount is one row of the store category distribution.
type CategoryCount struct {
	Category NullString `json:"category" db:"category"`
	Count    int        `json:"count" db:"count"`
}

// DashboardData is the aggregate payload for the admin dashboard.
type DashboardData struct {
	TotalUsers           int             `json:"totalUsers"`
	ActiveBusinesses     int             `json:"activeBusinesses"`
	TotalTransactions    int             `json:"totalTransactions"`
	TotalOffers          int             `json:"totalOffers"`
	WeeklyActivity       []DailyActivity `json:"weeklyActivity"`
	TopBusinesses        []TopBusiness   `json:"topBusinesses"`
	UserGrowth           []MonthlyGrowth `json:"userGrowth"`
	CategoryDistribution []CategoryCount `json:"categoryDistribution"`
}
