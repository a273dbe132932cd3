package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/types"
)

type UserEntryRepo interface {
  Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, entryID uuid.UUID) (*types.UserEntry, error)
  GetForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, entryID uuid.UUID) (*types.UserEntry, error)
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, limit, offset int) ([]*types.UserEntry, error)
  ListAllByUserAndMediaType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType) ([]*types.UserEntry, error)
  Create(ctx context.Context, tx *gorm.DB, row *types.UserEntry) error
  Save(ctx context.Context, tx *gorm.DB, row *types.UserEntry) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type userEntryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserEntryRepo(db *gorm.DB, baseLog *logger.Logger) UserEntryRepo {
  repoLog := baseLog.With("repo", "UserEntryRepo")
  return &userEntryRepo{db: db, log: repoLog}
}

func (r *userEntryRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, entryID uuid.UUID) (*types.UserEntry, error) {
  return r.get(ctx, tx, userID, mt, entryID, false)
}

// GetForUpdate takes a row lock on the entry so concurrent mutations of the
// same entry serialize inside their transactions. Without it, two duplicate
// requests under READ COMMITTED both read the same snapshot and apply the
// full delta twice.
func (r *userEntryRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, entryID uuid.UUID) (*types.UserEntry, error) {
  return r.get(ctx, tx, userID, mt, entryID, true)
}

func (r *userEntryRepo) get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, entryID uuid.UUID, locked bool) (*types.UserEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil || entryID == uuid.Nil {
    return nil, nil
  }

  query := transaction.WithContext(ctx)
  // sqlite has no SELECT ... FOR UPDATE; its single-writer lock already
  // serializes the transactions this clause exists for.
  if locked && transaction.Dialector.Name() != "sqlite" {
    query = query.Clauses(clause.Locking{Strength: "UPDATE"})
  }

  var results []*types.UserEntry
  if err := query.
    Where("user_id = ? AND media_type = ? AND entry_id = ?", userID, mt, entryID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *userEntryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, limit, offset int) ([]*types.UserEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.UserEntry
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
    Preload("Entry").
    Where("user_id = ? AND media_type = ?", userID, mt).
    Order("updated_at DESC").
    Limit(limit).
    Offset(offset).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *userEntryRepo) ListAllByUserAndMediaType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType) ([]*types.UserEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.UserEntry
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Entry").
    Where("user_id = ? AND media_type = ?", userID, mt).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *userEntryRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserEntry) error {
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

func (r *userEntryRepo) Save(ctx context.Context, tx *gorm.DB, row *types.UserEntry) error {
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

func (r *userEntryRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.UserEntry{}).Error; err != nil {
    return err
  }
  return nil
}
