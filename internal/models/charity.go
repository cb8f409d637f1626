package models

import (
	"fmt"
	"time"
)

// CharityType dispatches charity content operations. Using a typed enum keeps
// unknown types from falling through a default branch.
type CharityType string

const (
	CharityImageType CharityType = "image"
	CharityVideoType CharityType = "video"
	CharityStoryType CharityType = "story"
)

// ParseCharityType validates the :type route parameter.
func ParseCharityType(s string) (CharityType, error) {
	switch CharityType(s) {
	case CharityImageType, CharityVideoType, CharityStoryType:
		return CharityType(s), nil
	default:
		return "", fmt.Errorf("invalid charity type: %q", s)
	}
}

// CharityImage is an admin-managed charity photo with an uploaded file.
type CharityImage struct {
	ImageID     int64      `json:"image_id" db:"image_id"`
	Image       string     `json:"image" db:"image"`
	Description NullString `json:"description,omitempty" db:"description"`
	Time        time.Time  `json:"time" db:"time"`
}

// CharityVideo is an admin-managed charity video with an uploaded file.
type CharityVideo struct {
	VideoID     int64      `json:"video_id" db:"video_id"`
	Video       string     `json:"video" db:"video"`
	Description NullString `json:"description,omitempty" db:"description"`
	Time        time.Time  `json:"time" db:"time"`
}

// CharityStory is inline text content, no file attached.
type CharityStory struct {
	StoryID int64     `json:"story_id" db:"story_id"`
	Title   string    `json:"title" db:"title"`
	Story   string    `json:"story" db:"story"`
	Time    time.Time `json:"time" db:"time"`
}
