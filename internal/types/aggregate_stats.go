package types

import (
	"time"

	"github.com/google/uuid"
)

// AggregateStats is one running-total row per (user, media type), plus a
// MediaTypeAll roll-up row per user. Rows are mutated exclusively through
// relative deltas so concurrent updates commute; a full recompute happens
// only in the maintenance reconciliation job.
type AggregateStats struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_media_stats,unique" json:"user_id"`
	MediaType MediaType `gorm:"not null;index:idx_user_media_stats,unique;column:media_type" json:"media_type"`

	TotalEntries   int64 `gorm:"not null;default:0;column:total_entries" json:"total_entries"`
	PlannedCount   int64 `gorm:"not null;default:0;column:planned_count" json:"planned_count"`
	CurrentCount   int64 `gorm:"not null;default:0;column:current_count" json:"current_count"`
	CompletedCount int64 `gorm:"not null;default:0;column:completed_count" json:"completed_count"`
	PausedCount    int64 `gorm:"not null;default:0;column:paused_count" json:"paused_count"`
	DroppedCount   int64 `gorm:"not null;default:0;column:dropped_count" json:"dropped_count"`
	RepeatingCount int64 `gorm:"not null;default:0;column:repeating_count" json:"repeating_count"`

	TimeSpentMinutes int64 `gorm:"not null;default:0;column:time_spent_minutes" json:"time_spent_minutes"`
	UnitsConsumed    int64 `gorm:"not null;default:0;column:units_consumed" json:"units_consumed"`
	RatedCount       int64 `gorm:"not null;default:0;column:rated_count" json:"rated_count"`
	CommentedCount   int64 `gorm:"not null;default:0;column:commented_count" json:"commented_count"`
	FavoriteCount    int64 `gorm:"not null;default:0;column:favorite_count" json:"favorite_count"`
	RedoCount        int64 `gorm:"not null;default:0;column:redo_count" json:"redo_count"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AggregateStats) TableName() string { return "aggregate_stats" }

// StatusTotal is the reconciliation check: it must always equal TotalEntries.
func (s *AggregateStats) StatusTotal() int64 {
	return s.PlannedCount + s.CurrentCount + s.CompletedCount + s.PausedCount + s.DroppedCount + s.RepeatingCount
}

// Metric names an aggregate-derived counter an achievement can track.
type Metric string

const (
	MetricTotalEntries     Metric = "total_entries"
	MetricCompletedEntries Metric = "completed_entries"
	MetricTimeSpentMinutes Metric = "time_spent_minutes"
	MetricUnitsConsumed    Metric = "units_consumed"
	MetricRatedEntries     Metric = "rated_entries"
	MetricFavoriteEntries  Metric = "favorite_entries"
	MetricRedoCount        Metric = "redo_count"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricTotalEntries, MetricCompletedEntries, MetricTimeSpentMinutes,
		MetricUnitsConsumed, MetricRatedEntries, MetricFavoriteEntries, MetricRedoCount:
		return true
	default:
		return false
	}
}

// MetricValue reads the tracked counter off the stats row. A nil row reads
// as all-zero metrics.
func (s *AggregateStats) MetricValue(m Metric) int64 {
	if s == nil {
		return 0
	}
	switch m {
	case MetricTotalEntries:
		return s.TotalEntries
	case MetricCompletedEntries:
		return s.CompletedCount
	case MetricTimeSpentMinutes:
		return s.TimeSpentMinutes
	case MetricUnitsConsumed:
		return s.UnitsConsumed
	case MetricRatedEntries:
		return s.RatedCount
	case MetricFavoriteEntries:
		return s.FavoriteCount
	case MetricRedoCount:
		return s.RedoCount
	default:
		return 0
	}
}
