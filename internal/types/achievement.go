package types

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is a static rule seeded at deploy time. MediaType scopes it
// to one catalog; MediaTypeAll makes it track the cross-catalog roll-up.
type Achievement struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string             `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Name        string             `gorm:"not null;column:name" json:"name"`
	Description string             `gorm:"column:description" json:"description"`
	MediaType   MediaType          `gorm:"not null;index;column:media_type" json:"media_type"`
	Metric      Metric             `gorm:"not null;column:metric" json:"metric"`
	Tiers       []*AchievementTier `gorm:"foreignKey:AchievementID;references:ID" json:"tiers,omitempty"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

func (Achievement) TableName() string { return "achievement" }

// AchievementTier is one ordered difficulty level. Rank 0 is bronze and
// thresholds must strictly increase with rank.
type AchievementTier struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AchievementID uuid.UUID `gorm:"type:uuid;not null;index:idx_achievement_rank,unique" json:"achievement_id"`
	Rank          int       `gorm:"not null;index:idx_achievement_rank,unique;column:rank" json:"rank"`
	Name          string    `gorm:"not null;column:name" json:"name"`
	Threshold     int64     `gorm:"not null;column:threshold" json:"threshold"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (AchievementTier) TableName() string { return "achievement_tier" }

var TierNames = []string{"Bronze", "Silver", "Gold", "Platinum"}
