package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserAchievement is the per-user progress record for one achievement.
// Completed tiers always form a prefix of the ordered tier list;
// HighestTierIndex -1 means no tier completed yet.
type UserAchievement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_achievement,unique" json:"user_id"`
	User          *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AchievementID uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_achievement,unique" json:"achievement_id"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`

	Count            int64      `gorm:"not null;default:0;column:count" json:"count"`
	Percent          float64    `gorm:"not null;default:0;column:percent" json:"percent"`
	HighestTierIndex int        `gorm:"not null;default:-1;column:highest_tier_index" json:"highest_tier_index"`
	HighestTierID    *uuid.UUID `gorm:"type:uuid;column:highest_tier_id" json:"highest_tier_id,omitempty"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	// TierCompletions maps tier rank (as a string key) to the RFC3339
	// time that tier was completed.
	TierCompletions datatypes.JSON `gorm:"type:jsonb;column:tier_completions" json:"tier_completions,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }
