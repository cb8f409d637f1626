package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/loveall/loveall-backend/internal/models"
)

// StoreRepository handles storefront database operations
type StoreRepository struct {
	db DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db DB) *StoreRepository {
	return &StoreRepository{db: db}
}

const storeColumns = `store_id, business_id, store_name, store_email, address,
	store_address, city, state, zip_code, category_id, category, rating,
	latitude, longitude, opening_hours, logo, manager_name, manager_contact,
	phone_number, status, business_description, created_at, updated_at`

// Create inserts a new store owned by the given business.
func (r *StoreRepository) Create(store *models.Store) error {
	query := `
		INSERT INTO stores (
			business_id, store_name, store_email, address, store_address, city,
			state, zip_code, category_id, category, rating, latitude, longitude,
			opening_hours, logo, manager_name, manager_contact, phone_number,
			status, business_description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING store_id
	`

	now := time.Now()
	store.CreatedAt = now
	store.UpdatedAt = now
	if store.Status == "" {
		store.Status = models.StoreActive
	}

	err := r.db.QueryRow(
		query,
		store.BusinessID,
		store.StoreName,
		store.StoreEmail,
		store.Address,
		store.StoreAddress,
		store.City,
		store.State,
		store.ZipCode,
		store.CategoryID,
		store.Category,
		store.Rating,
		store.Latitude,
		store.Longitude,
		store.OpeningHours,
		store.Logo,
		store.ManagerName,
		store.ManagerContact,
		store.PhoneNumber,
		store.Status,
		store.BusinessDescription,
		store.CreatedAt,
		store.UpdatedAt,
	).Scan(&store.StoreID)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	return nil
}

// FindOwned returns the store only when it belongs to the given business.
// A mismatch is indistinguishable from a missing store (sql.ErrNoRows) so
// callers cannot probe store existence.
func (r *StoreRepository) FindOwned(storeID int64, businessID uuid.UUID) (*models.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE store_id = $1 AND business_id = $2`, storeColumns)

	var store models.Store
	if err := r.db.Get(&store, query, storeID, businessID); err != nil {
		return nil, err
	}

	return &store, nil
}

// ListByBusiness returns all stores owned by the given business.
func (r *StoreRepository) ListByBusiness(businessID uuid.UUID) ([]models.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE business_id = $1 ORDER BY store_id ASC`, storeColumns)

	stores := []models.Store{}
	if err := r.db.Select(&stores, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	return stores, nil
}

// ListBrands returns the consumer-facing brand list for the home feed.
func (r *StoreRepository) ListBrands(limit int) ([]models.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores ORDER BY store_id ASC LIMIT $1`, storeColumns)

	stores := []models.Store{}
	if err := r.db.Select(&stores, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	return stores, nil
}

// StoreIDs returns the ids of every store owned by the business.
func (r *StoreRepository) StoreIDs(businessID uuid.UUID) ([]int64, error) {
	ids := []int64{}
	if err := r.db.Select(&ids, `SELECT store_id FROM stores WHERE business_id = $1`, businessID); err != nil {
		return nil, fmt.Errorf("failed to list store ids: %w", err)
	}

	return ids, nil
}

// Update overwrites the store's editable fields, scoped to the owning
// business. Returns sql.ErrNoRows when the store is absent or not owned.
func (r *StoreRepository) Update(store *models.Store, businessID uuid.UUID) error {
	query := `
		UPDATE stores
		SET store_name = $1, store_email = $2, address = $3, store_address = $4,
			city = $5, state = $6, zip_code = $7, category_id = $8, category = $9,
			latitude = $10, longitude = $11, opening_hours = $12, logo = $13,
			manager_name = $14, manager_contact = $15, phone_number = $16,
			status = $17, business_description = $18, updated_at = $19
		WHERE store_id = $20 AND business_id = $21
	`

	result, err := r.db.Exec(
		query,
		store.StoreName,
		store.StoreEmail,
		store.Address,
		store.StoreAddress,
		store.City,
		store.State,
		store.ZipCode,
		store.CategoryID,
		store.Category,
		store.Latitude,
		store.Longitude,
		store.OpeningHours,
		store.Logo,
		store.ManagerName,
		store.ManagerContact,
		store.PhoneNumber,
		store.Status,
		store.BusinessDescription,
		time.Now(),
		store.StoreID,
		businessID,
	)
	if err != nil {
		return fmt.Errorf("failed to update store: %w", err)
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

// Delete removes a store, scoped to the owning business.
func (r *StoreRepository) Delete(storeID int64, businessID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM stores WHERE store_id = $1 AND business_id = $2`, storeID, businessID)
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
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

// CategoryDistribution returns the top store categories by count.
func (r *StoreRepository) CategoryDistribution(limit int) ([]models.CategoryCount, error) {
	query := `
		SELECT category, COUNT(store_id) AS count
		FROM stores
		GROUP BY category
		ORDER BY COUNT(store_id) DESC
		LIMIT $1
	`

	rows := []models.CategoryCount{}
	if err := r.db.Select(&rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load category distribution: %w", err)
	}

	return rows, nil
}

// OffersForStores returns all offers attached to the given stores, keyed by
// store id. Stores without offers simply have no entry.
func (r *StoreRepository) OffersForStores(storeIDs []int64) (map[int64][]models.Offer, error) {
	byStore := make(map[int64][]models.Offer)
	if len(storeIDs) == 0 {
		return byStore, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM offers WHERE store_id = ANY($1) ORDER BY offer_id ASC`, offerColumns)

	offers := []models.Offer{}
	if err := r.db.Select(&offers, query, pq.Array(storeIDs)); err != nil {
		return nil, fmt.Errorf("failed to load offers for stores: %w", err)
	}

	for _, offer := range offers {
		byStore[offer.StoreID] = append(byStore[offer.StoreID], offer)
	}

	return byStore, nil
}
