package database

import (
	"fmt"
	"time"

	"github.com/loveall/loveall-backend/internal/models"
)

// CharityRepository handles charity content rows (images, videos, stories).
type CharityRepository struct {
	db DB
}

// NewCharityRepository creates a new charity repository
func NewCharityRepository(db DB) *CharityRepository {
	return &CharityRepository{db: db}
}

// ListImages returns all charity images, newest first.
func (r *CharityRepository) ListImages() ([]models.CharityImage, error) {
	rows := []models.CharityImage{}
	query := `SELECT image_id, image, description, time FROM charity_images ORDER BY time DESC`
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list charity images: %w", err)
	}

	return rows, nil
}

// ListVideos returns all charity videos, newest first.
func (r *CharityRepository) ListVideos() ([]models.CharityVideo, error) {
	rows := []models.CharityVideo{}
	query := `SELECT video_id, video, description, time FROM charity_videos ORDER BY time DESC`
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list charity videos: %w", err)
	}

	return rows, nil
}

// ListStories returns all charity stories, newest first.
func (r *CharityRepository) ListStories() ([]models.CharityStory, error) {
	rows := []models.CharityStory{}
	query := `SELECT story_id, title, story, time FROM charity_stories ORDER BY time DESC`
	if err := r.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list charity stories: %w", err)
	}

	return rows, nil
}

// CreateImage inserts a charity image row pointing at an uploaded file.
func (r *CharityRepository) CreateImage(img *models.CharityImage) error {
	img.Time = time.Now()
	query := `INSERT INTO charity_images (image, description, time) VALUES ($1, $2, $3) RETURNING image_id`
	if err := r.db.QueryRow(query, img.Image, img.Description, img.Time).Scan(&img.ImageID); err != nil {
		return fmt.Errorf("failed to create charity image: %w", err)
	}

	return nil
}

// CreateVideo inserts a charity video row pointing at an uploaded file.
func (r *CharityRepository) CreateVideo(vid *models.CharityVideo) error {
	vid.Time = time.Now()
	query := `INSERT INTO charity_videos (video, description, time) VALUES ($1, $2, $3) RETURNING video_id`
	if err := r.db.QueryRow(query, vid.Video, vid.Description, vid.Time).Scan(&vid.VideoID); err != nil {
		return fmt.Errorf("failed to create charity video: %w", err)
	}

	return nil
}

// CreateStory inserts an inline charity story.
func (r *CharityRepository) CreateStory(story *models.CharityStory) error {
	story.Time = time.Now()
	query := `INSERT INTO charity_stories (title, story, time) VALUES ($1, $2, $3) RETURNING story_id`
	if err := r.db.QueryRow(query, story.Title, story.Story, story.Time).Scan(&story.StoryID); err != nil {
		return fmt.Errorf("failed to create charity story: %w", err)
	}

	return nil
}

// FindImage returns one charity image, or sql.ErrNoRows.
func (r *CharityRepository) FindImage(id int64) (*models.CharityImage, error) {
	var img models.CharityImage
	query := `SELECT image_id, image, description, time FROM charity_images WHERE image_id = $1`
	if err := r.db.Get(&img, query, id); err != nil {
		return nil, err
	}

	return &img, nil
}

// FindVideo returns one charity video, or sql.ErrNoRows.
func (r *CharityRepository) FindVideo(id int64) (*models.CharityVideo, error) {
	var vid models.CharityVideo
	query := `SELECT video_id, video, description, time FROM charity_videos WHERE video_id = $1`
	if err := r.db.Get(&vid, query, id); err != nil {
		return nil, err
	}

	return &vid, nil
}

// FindStory returns one charity story, or sql.ErrNoRows.
func (r *CharityRepository) FindStory(id int64) (*models.CharityStory, error) {
	var story models.CharityStory
	query := `SELECT story_id, title, story, time FROM charity_stories WHERE story_id = $1`
	if err := r.db.Get(&story, query, id); err != nil {
		return nil, err
	}

	return &story, nil
}

// UpdateImage rewrites the description and, when filename is non-empty, the
// file reference and timestamp.
func (r *CharityRepository) UpdateImage(id int64, description models.NullString, filename string) error {
	var err error
	if filename != "" {
		_, err = r.db.Exec(`UPDATE charity_images SET description = $1, image = $2, time = $3 WHERE image_id = $4`,
			description, filename, time.Now(), id)
	} else {
		_, err = r.db.Exec(`UPDATE charity_images SET description = $1 WHERE image_id = $2`, description, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update charity image: %w", err)
	}

	return nil
}

// UpdateVideo rewrites the description and, when filename is non-empty, the
// file reference and timestamp.
func (r *CharityRepository) UpdateVideo(id int64, description models.NullString, filename string) error {
	var err error
	if filename != "" {
		_, err = r.db.Exec(`UPDATE charity_videos SET description = $1, video = $2, time = $3 WHERE video_id = $4`,
			description, filename, time.Now(), id)
	} else {
		_, err = r.db.Exec(`UPDATE charity_videos SET description = $1 WHERE video_id = $2`, description, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update charity video: %w", err)
	}

	return nil
}

// UpdateStory rewrites title, body and timestamp.
func (r *CharityRepository) UpdateStory(id int64, title, story string) error {
	_, err := r.db.Exec(`UPDATE charity_stories SET title = $1, story = $2, time = $3 WHERE story_id = $4`,
		title, story, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update charity story: %w", err)
	}

	return nil
}

// DeleteImage removes a charity image row.
func (r *CharityRepository) DeleteImage(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM charity_images WHERE image_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete charity image: %w", err)
	}

	return nil
}

// DeleteVideo removes a charity video row.
func (r *CharityRepository) DeleteVideo(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM charity_videos WHERE video_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete charity video: %w", err)
	}

	return nil
}

// DeleteStory removes a charity story row.
func (r *CharityRepository) DeleteStory(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM charity_stories WHERE story_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete charity story: %w", err)
	}

	return nil
}
