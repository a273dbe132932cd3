package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/types"
)

type MediaEntryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.MediaEntry) ([]*types.MediaEntry, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MediaEntry, error)
  ListByMediaType(ctx context.Context, tx *gorm.DB, mt types.MediaType, limit, offset int) ([]*types.MediaEntry, error)
}

type mediaEntryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMediaEntryRepo(db *gorm.DB, baseLog *logger.Logger) MediaEntryRepo {
  repoLog := baseLog.With("repo", "MediaEntryRepo")
  return &mediaEntryRepo{db: db, log: repoLog}
}

func (r *mediaEntryRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.MediaEntry) ([]*types.MediaEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.MediaEntry{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *mediaEntryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MediaEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.MediaEntry
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *mediaEntryRepo) ListByMediaType(ctx context.Context, tx *gorm.DB, mt types.MediaType, limit, offset int) ([]*types.MediaEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if limit <= 0 || limit > 100 {
    limit = 50
  }
  if offset < 0 {
    offset = 0
  }

  var results []*types.MediaEntry
  if err := transaction.WithContext(ctx).
    Where("media_type = ?", mt).
    Order("title ASC").
    Limit(limit).
    Offset(offset).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
