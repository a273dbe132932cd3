package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/types"
)

type AchievementRepo interface {
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Achievement, error)
  GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Achievement, error)
  ListByMediaTypes(ctx context.Context, tx *gorm.DB, mts []types.MediaType) ([]*types.Achievement, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
  Create(ctx context.Context, tx *gorm.DB, row *types.Achievement) error
  Save(ctx context.Context, tx *gorm.DB, row *types.Achievement) error
  SaveTier(ctx context.Context, tx *gorm.DB, row *types.AchievementTier) error
  DeleteTiersFromRank(ctx context.Context, tx *gorm.DB, achievementID uuid.UUID, rank int) error
}

type achievementRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
  repoLog := baseLog.With("repo", "AchievementRepo")
  return &achievementRepo{db: db, log: repoLog}
}

func tiersOrdered(db *gorm.DB) *gorm.DB {
  return db.Order("rank ASC")
}

func (r *achievementRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Achievement, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Achievement
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Tiers", tiersOrdered).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *achievementRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Achievement, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if slug == "" {
    return nil, nil
  }

  var results []*types.Achievement
  if err := transaction.WithContext(ctx).
    Preload("Tiers", tiersOrdered).
    Where("slug = ?", slug).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *achievementRepo) ListByMediaTypes(ctx context.Context, tx *gorm.DB, mts []types.MediaType) ([]*types.Achievement, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Achievement
  if len(mts) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Tiers", tiersOrdered).
    Where("media_type IN ?", mts).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *achievementRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Achievement
  if err := transaction.WithContext(ctx).
    Preload("Tiers", tiersOrdered).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *achievementRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Achievement) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
    return err
  }
  return nil
}

func (r *achievementRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Achievement) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Omit("Tiers").
    Save(row).Error; err != nil {
    return err
  }
  return nil
}

func (r *achievementRepo) SaveTier(ctx context.Context, tx *gorm.DB, row *types.AchievementTier) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
    return err
  }
  return nil
}

func (r *achievementRepo) DeleteTiersFromRank(ctx context.Context, tx *gorm.DB, achievementID uuid.UUID, rank int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if achievementID == uuid.Nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("achievement_id = ? AND rank >= ?", achievementID, rank).
    Delete(&types.AchievementTier{}).Error; err != nil {
    return err
  }
  return nil
}
