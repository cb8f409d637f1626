package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loveall/loveall-backend/internal/models"
)

// OfferRepository handles offer database operations, including the
// consumer-facing discovery query.
type OfferRepository struct {
	db DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db DB) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `offer_id, store_id, offer_type, description,
	discount_percentage, minimum_purchase, maximum_discount, start_date,
	end_date, terms_conditions, number_of_uses, limit_per_customer, status,
	featured, created_at, updated_at`

const offerJoinColumns = `o.offer_id, o.store_id, o.offer_type, o.description,
	o.discount_percentage, o.minimum_purchase, o.maximum_discount, o.start_date,
	o.end_date, o.terms_conditions, o.number_of_uses, o.limit_per_customer,
	o.status, o.featured, o.created_at, o.updated_at,
	s.store_name AS store_name, s.address AS s_address,
	s.category AS s_category, s.category_id AS s_category_id,
	s.rating AS s_rating, s.latitude AS s_latitude, s.longitude AS s_longitude,
	s.opening_hours AS s_opening_hours, s.logo AS s_logo`

// Create inserts a new offer for a store. Ownership of the store must be
// verified by the caller before this runs.
func (r *OfferRepository) Create(offer *models.Offer) error {
	query := `
		INSERT INTO offers (
			store_id, offer_type, description, discount_percentage,
			minimum_purchase, maximum_discount, start_date, end_date,
			terms_conditions, number_of_uses, limit_per_customer, status,
			featured, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING offer_id
	`

	now := time.Now()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	if offer.Status == "" {
		offer.Status = "active"
	}

	err := r.db.QueryRow(
		query,
		offer.StoreID,
		offer.OfferType,
		offer.Description,
		offer.DiscountPercentage,
		offer.MinimumPurchase,
		offer.MaximumDiscount,
		offer.StartDate,
		offer.EndDate,
		offer.TermsConditions,
		offer.NumberOfUses,
		offer.LimitPerCustomer,
		offer.Status,
		offer.Featured,
		offer.CreatedAt,
		offer.UpdatedAt,
	).Scan(&offer.OfferID)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	return nil
}

// FindByID returns a single offer, or sql.ErrNoRows.
func (r *OfferRepository) FindByID(offerID int64) (*models.Offer, error) {
	query := fmt.Sprintf(`SELECT %s FROM offers WHERE offer_id = $1`, offerColumns)

	var offer models.Offer
	if err := r.db.Get(&offer, query, offerID); err != nil {
		return nil, err
	}

	return &offer, nil
}

// Update rewrites an offer's mutable fields, constrained through the store
// join to the owning business. Returns ErrNotOwned when nothing matched.
func (r *OfferRepository) Update(offerID int64, businessID uuid.UUID, offerType string, endDate models.NullTime) error {
	query := `
		UPDATE offers
		SET offer_type = $1, end_date = $2, updated_at = $3
		WHERE offer_id = $4
		  AND store_id IN (SELECT store_id FROM stores WHERE business_id = $5)
	`

	result, err := r.db.Exec(query, offerType, endDate, time.Now(), offerID, businessID)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return ErrNotOwned
	}

	return nil
}

// Delete removes an offer, constrained to the owning business. Dependent QR
// rows go with it via ON DELETE CASCADE.
func (r *OfferRepository) Delete(offerID int64, businessID uuid.UUID) error {
	query := `
		DELETE FROM offers
		WHERE offer_id = $1
		  AND store_id IN (SELECT store_id FROM stores WHERE business_id = $2)
	`

	result, err := r.db.Exec(query, offerID, businessID)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
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

// Filter runs the discovery query: active stores only, every supplied filter
// ANDed together, free-text search ORed across store and offer fields.
// Returns the requested page and the total row count before paging.
func (r *OfferRepository) Filter(f models.OfferFilter) ([]models.OfferWithStore, int, error) {
	conditions := []string{"s.status = 'active'"}
	args := []interface{}{}

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OfferID != 0 {
		conditions = append(conditions, "o.offer_id = "+addArg(f.OfferID))
	}
	if f.Category != "" {
		conditions = append(conditions, "s.category_id = "+addArg(f.Category))
	}
	if f.Featured {
		conditions = append(conditions, "o.featured = true")
	}
	if f.OfferType != "" {
		conditions = append(conditions, "o.offer_type = "+addArg(f.OfferType))
	}
	if f.Rating != 0 {
		conditions = append(conditions, "s.rating >= "+addArg(f.Rating))
	}
	if f.Discount != 0 {
		conditions = append(conditions, "o.discount_percentage >= "+addArg(f.Discount))
	}
	if f.Search != "" {
		pattern := addArg("%" + f.Search + "%")
		conditions = append(conditions, fmt.Sprintf(`(
			s.store_name ILIKE %[1]s OR s.category ILIKE %[1]s OR s.address ILIKE %[1]s
			OR o.offer_type ILIKE %[1]s OR o.description ILIKE %[1]s
			OR o.discount_percentage::text ILIKE %[1]s)`, pattern))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM offers o
		JOIN stores s ON s.store_id = o.store_id
		WHERE %s
	`, where)

	var total int
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM offers o
		JOIN stores s ON s.store_id = o.store_id
		WHERE %s
		ORDER BY o.offer_id ASC
		LIMIT %s OFFSET %s
	`, offerJoinColumns, where, addArg(f.Limit), addArg(offset))

	rows := []models.OfferWithStore{}
	if err := r.db.Select(&rows, pageQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to filter offers: %w", err)
	}

	return rows, total, nil
}

// TopActive returns active offers ordered by discount, for the home feed.
// When featuredOnly is set only featured offers are returned.
func (r *OfferRepository) TopActive(limit int, featuredOnly bool) ([]models.OfferWithStore, error) {
	featured := ""
	if featuredOnly {
		featured = "AND o.featured = true"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM offers o
		JOIN stores s ON s.store_id = o.store_id
		WHERE o.status = 'active' %s
		ORDER BY o.discount_percentage DESC NULLS LAST
		LIMIT $1
	`, offerJoinColumns, featured)

	rows := []models.OfferWithStore{}
	if err := r.db.Select(&rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load top offers: %w", err)
	}

	return rows, nil
}

// ActiveByStore returns one store's active offers, paginated, for the
// recommended-brands feed.
func (r *OfferRepository) ActiveByStore(storeID int64, page, limit int) ([]models.OfferWithStore, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM offers WHERE store_id = $1 AND status = 'active'`
	if err := r.db.Get(&total, countQuery, storeID); err != nil {
		return nil, 0, fmt.Errorf("failed to count store offers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM offers o
		JOIN stores s ON s.store_id = o.store_id
		WHERE o.store_id = $1 AND o.status = 'active'
		ORDER BY o.discount_percentage DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, offerJoinColumns)

	rows := []models.OfferWithStore{}
	if err := r.db.Select(&rows, query, storeID, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("failed to load store offers: %w", err)
	}

	return rows, total, nil
}

// Count returns the total number of offers.
func (r *OfferRepository) Count() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM offers`); err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}

	return count, nil
}
