package types

import (
	"time"

	"github.com/google/uuid"
)

// UpdateLog is one activity-feed record. Successive records for the same
// (user, entry, media type) inside the coalescing window are merged into a
// single before/after record rather than kept as a raw event stream.
type UpdateLog struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_log_lookup,priority:1" json:"user_id"`
	EntryID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_log_lookup,priority:2" json:"entry_id"`
	MediaType MediaType  `gorm:"not null;index:idx_log_lookup,priority:3;column:media_type" json:"media_type"`
	Kind      UpdateKind `gorm:"not null;column:kind" json:"kind"`
	OldValue  string     `gorm:"column:old_value" json:"old_value"`
	NewValue  string     `gorm:"column:new_value" json:"new_value"`
	CreatedAt time.Time  `gorm:"not null;index:idx_log_lookup,priority:4" json:"created_at"`
}

func (UpdateLog) TableName() string { return "update_log" }
