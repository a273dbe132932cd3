package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/types"
)

type UserAchievementRepo interface {
  Get(ctx context.Context, tx *gorm.DB, userID, achievementID uuid.UUID) (*types.UserAchievement, error)
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error)
  Upsert(ctx context.Context, tx *gorm.DB, row *types.UserAchievement) error
}

type userAchievementRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
  repoLog := baseLog.With("repo", "UserAchievementRepo")
  return &userAchievementRepo{db: db, log: repoLog}
}

func (r *userAchievementRepo) Get(ctx context.Context, tx *gorm.DB, userID, achievementID uuid.UUID) (*types.UserAchievement, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil || achievementID == uuid.Nil {
    return nil, nil
  }

  var results []*types.UserAchievement
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND achievement_id = ?", userID, achievementID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *userAchievementRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.UserAchievement
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Achievement").
    Preload("Achievement.Tiers", tiersOrdered).
    Where("user_id = ?", userID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *userAchievementRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.UserAchievement) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  if row.ID != uuid.Nil {
    if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
      return err
    }
    return nil
  }

  // Upsert by unique user_id + achievement_id
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND achievement_id = ?", row.UserID, row.AchievementID).
    Attrs(map[string]interface{}{"id": uuid.New()}).
    Assign(map[string]interface{}{
      "count":              row.Count,
      "percent":            row.Percent,
      "highest_tier_index": row.HighestTierIndex,
      "highest_tier_id":    row.HighestTierID,
      "completed_at":       row.CompletedAt,
      "tier_completions":   row.TierCompletions,
    }).
    FirstOrCreate(row).Error; err != nil {
    return err
  }
  return nil
}
