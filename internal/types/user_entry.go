package types

import (
	"time"

	"github.com/google/uuid"
)

// UserEntry is the mutable per-user record for one catalog item. It is
// created by addEntry, destroyed by removeEntry, and is the only row the
// mutation pipeline writes directly; everything else is derived from it.
type UserEntry struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_user_media_entry,unique" json:"user_id"`
	User      *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	MediaType MediaType   `gorm:"not null;index:idx_user_media_entry,unique;column:media_type" json:"media_type"`
	EntryID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_user_media_entry,unique" json:"entry_id"`
	Entry     *MediaEntry `gorm:"constraint:OnDelete:CASCADE;foreignKey:EntryID;references:ID" json:"entry,omitempty"`
	Status    Status      `gorm:"not null;default:'planned';column:status" json:"status"`
	Progress  int         `gorm:"not null;default:0;column:progress" json:"progress"`
	// Rating is on a 0-10 scale; 0 means unrated.
	Rating     int        `gorm:"not null;default:0;column:rating" json:"rating"`
	Comment    string     `gorm:"column:comment" json:"comment"`
	Favorite   bool       `gorm:"not null;default:false;column:favorite" json:"favorite"`
	RedoCount  int        `gorm:"not null;default:0;column:redo_count" json:"redo_count"`
	StartedAt  *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserEntry) TableName() string { return "user_entry" }

// Clone returns a copy safe to hold as the pre-mutation snapshot while
// the original is edited in place.
func (ue *UserEntry) Clone() *UserEntry {
	if ue == nil {
		return nil
	}
	cp := *ue
	return &cp
}
