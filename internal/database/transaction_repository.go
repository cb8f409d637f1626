package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/loveall/loveall-backend/internal/models"
)

// TransactionRepository reads offer transactions. Rows are written by the
// external payment collaborator, never by this service.
type TransactionRepository struct {
	db DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `t.transaction_id, t.user_id, t.offer_id, t.store_id,
	t.amount, t.discount_applied, t.status, t.transaction_date, t.invoice_path`

// ListFiltered returns admin-facing transactions joined with the store name,
// newest first, narrowed by any supplied filters.
func (r *TransactionRepository) ListFiltered(f models.TransactionFilter) ([]models.TransactionWithStore, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserID != "" {
		conditions = append(conditions, "t.user_id = "+addArg(f.UserID))
	}
	if f.StoreID != 0 {
		conditions = append(conditions, "t.store_id = "+addArg(f.StoreID))
	}
	if f.Status != "" {
		conditions = append(conditions, "t.status = "+addArg(f.Status))
	}

	query := fmt.Sprintf(`
		SELECT %s, s.store_name AS store_name
		FROM offer_transactions t
		LEFT JOIN stores s ON s.store_id = t.store_id
		WHERE %s
		ORDER BY t.transaction_date DESC
	`, transactionColumns, strings.Join(conditions, " AND "))

	rows := []models.TransactionWithStore{}
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return rows, nil
}

// ListByStores returns every transaction belonging to the given stores,
// newest first. Used for the business-side transaction view.
func (r *TransactionRepository) ListByStores(storeIDs []int64) ([]models.OfferTransaction, error) {
	if len(storeIDs) == 0 {
		return []models.OfferTransaction{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM offer_transactions t
		WHERE t.store_id = ANY($1)
		ORDER BY t.transaction_date DESC
	`, transactionColumns)

	rows := []models.OfferTransaction{}
	if err := r.db.Select(&rows, query, pq.Array(storeIDs)); err != nil {
		return nil, fmt.Errorf("failed to list store transactions: %w", err)
	}

	return rows, nil
}

// ListByUser returns a consumer's own transaction history, newest first.
func (r *TransactionRepository) ListByUser(userID uuid.UUID) ([]models.TransactionWithStore, error) {
	query := fmt.Sprintf(`
		SELECT %s, s.store_name AS store_name
		FROM offer_transactions t
		LEFT JOIN stores s ON s.store_id = t.store_id
		WHERE t.user_id = $1
		ORDER BY t.transaction_date DESC
	`, transactionColumns)

	rows := []models.TransactionWithStore{}
	if err := r.db.Select(&rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user transactions: %w", err)
	}

	return rows, nil
}

// ListWithInvoices returns transactions that carry an invoice file path.
func (r *TransactionRepository) ListWithInvoices() ([]models.OfferTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM offer_transactions t
		WHERE t.invoice_path IS NOT NULL
	`, transactionColumns)

	rows := []models.OfferTransaction{}
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list invoiced transactions: %w", err)
	}

	return rows, nil
}

// Count returns the total number of transactions.
func (r *TransactionRepository) Count() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM offer_transactions`); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// WeeklyActivity returns per-day revenue sums for the trailing 14 days.
func (r *TransactionRepository) WeeklyActivity() ([]models.DailyActivity, error) {
	query := `
		SELECT DATE(transaction_date) AS date, SUM(amount) AS total
		FROM offer_transactions
		WHERE transaction_date >= CURRENT_DATE - INTERVAL '13 days'
		GROUP BY DATE(transaction_date)
		ORDER BY DATE(transaction_date) ASC
	`

	rows := []models.DailyActivity{}
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to load weekly activity: %w", err)
	}

	return rows, nil
}

// TopBusinesses returns store revenue leaders, highest revenue first.
func (r *TransactionRepository) TopBusinesses(limit int) ([]models.TopBusiness, error) {
	query := `
		SELECT s.store_name AS store_name,
			COUNT(t.transaction_id) AS transactions,
			SUM(t.amount) AS revenue
		FROM offer_transactions t
		JOIN stores s ON s.store_id = t.store_id
		GROUP BY s.store_id, s.store_name
		ORDER BY SUM(t.amount) DESC
		LIMIT $1
	`

	rows := []models.TopBusiness{}
	if err := r.db.Select(&rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load top businesses: %w", err)
	}

	return rows, nil
}

// UserGrowth returns per-month signup counts for the trailing six months.
func (r *TransactionRepository) UserGrowth() ([]models.MonthlyGrowth, error) {
	query := `
		SELECT TO_CHAR(created_at, 'YYYY-MM') AS month, COUNT(user_id) AS users
		FROM users
		WHERE created_at >= CURRENT_DATE - INTERVAL '6 months'
		GROUP BY TO_CHAR(created_at, 'YYYY-MM')
		ORDER BY TO_CHAR(created_at, 'YYYY-MM') ASC
	`

	rows := []models.MonthlyGrowth{}
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to load user growth: %w", err)
	}

	return rows, nil
}
