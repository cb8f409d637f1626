package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/loveall/loveall-backend/internal/models"
)

// FeedbackRepository handles store feedback rows.
type FeedbackRepository struct {
	db DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a consumer's rating and comment for a store.
func (r *FeedbackRepository) Create(fb *models.Feedback) error {
	query := `
		INSERT INTO feedback (user_id, store_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING feedback_id
	`

	fb.CreatedAt = time.Now()
	if err := r.db.QueryRow(query, fb.UserID, fb.StoreID, fb.Rating, fb.Comment, fb.CreatedAt).Scan(&fb.FeedbackID); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

// ListByStores returns feedback across the given stores, newest first.
func (r *FeedbackRepository) ListByStores(storeIDs []int64) ([]models.Feedback, error) {
	if len(storeIDs) == 0 {
		return []models.Feedback{}, nil
	}

	query := `
		SELECT feedback_id, user_id, store_id, rating, comment, created_at
		FROM feedback
		WHERE store_id = ANY($1)
		ORDER BY created_at DESC
	`

	rows := []models.Feedback{}
	if err := r.db.Select(&rows, query, pq.Array(storeIDs)); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	return rows, nil
}

// ListByUser returns a consumer's own feedback, newest first.
func (r *FeedbackRepository) ListByUser(userID uuid.UUID) ([]models.Feedback, error) {
	query := `
		SELECT feedback_id, user_id, store_id, rating, comment, created_at
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows := []models.Feedback{}
	if err := r.db.Select(&rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user feedback: %w", err)
	}

	return rows, nil
}
