package types

import (
	"time"

	"github.com/google/uuid"
)

// MediaEntry is a catalog item. Metadata is sourced from external
// providers ahead of time and shared read-only across users.
type MediaEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MediaType   MediaType  `gorm:"not null;index;column:media_type" json:"media_type"`
	Title       string     `gorm:"not null;column:title" json:"title"`
	ReleaseDate *time.Time `gorm:"column:release_date" json:"release_date,omitempty"`
	// UnitCount is the entry's total progress units: episodes for tv and
	// anime, chapters for manga, pages for books, runtime minutes for
	// movies. 0 means unknown or unbounded (game playtime).
	UnitCount int       `gorm:"not null;default:0;column:unit_count" json:"unit_count"`
	CoverURL  string    `gorm:"column:cover_url" json:"cover_url,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MediaEntry) TableName() string { return "media_entry" }
