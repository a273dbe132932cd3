package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/types"
)

type UpdateLogRepo interface {
  LatestForEntry(ctx context.Context, tx *gorm.DB, userID, entryID uuid.UUID, mt types.MediaType) (*types.UpdateLog, error)
  Create(ctx context.Context, tx *gorm.DB, row *types.UpdateLog) error
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.UpdateLog, error)
  FullDeleteByIDsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ids []uint) (int64, error)
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uint) error
}

type updateLogRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUpdateLogRepo(db *gorm.DB, baseLog *logger.Logger) UpdateLogRepo {
  repoLog := baseLog.With("repo", "UpdateLogRepo")
  return &updateLogRepo{db: db, log: repoLog}
}

// LatestForEntry is the coalescing lookup: newest record for the pair,
// regardless of update kind.
func (r *updateLogRepo) LatestForEntry(ctx context.Context, tx *gorm.DB, userID, entryID uuid.UUID, mt types.MediaType) (*types.UpdateLog, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil || entryID == uuid.Nil {
    return nil, nil
  }

  var results []*types.UpdateLog
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND entry_id = ? AND media_type = ?", userID, entryID, mt).
    Order("created_at DESC").
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *updateLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UpdateLog) error {
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

func (r *updateLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.UpdateLog, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.UpdateLog
  if userID == uuid.Nil {
    return results, nil
  }
  if limit <= 0 || limit > 100 {
    limit = 50
  }
  if offset < 0 {
    offset = 0
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Limit(limit).
    Offset(offset).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// FullDeleteByIDsForUser deletes only rows owned by the caller and
// reports how many actually went away.
func (r *updateLogRepo) FullDeleteByIDsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ids []uint) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil || len(ids) == 0 {
    return 0, nil
  }

  res := transaction.WithContext(ctx).
    Where("user_id = ? AND id IN ?", userID, ids).
    Delete(&types.UpdateLog{})
  if res.Error != nil {
    return 0, res.Error
  }
  return res.RowsAffected, nil
}

func (r *updateLogRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uint) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.UpdateLog{}).Error; err != nil {
    return err
  }
  return nil
}
