package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/tracking"
  "github.com/medialog/medialog-backend/internal/types"
)

type AggregateStatsRepo interface {
  Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType) (*types.AggregateStats, error)
  GetAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AggregateStats, error)
  ApplyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, d tracking.StatsDelta) error
  Overwrite(ctx context.Context, tx *gorm.DB, row *types.AggregateStats) error
}

type aggregateStatsRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAggregateStatsRepo(db *gorm.DB, baseLog *logger.Logger) AggregateStatsRepo {
  repoLog := baseLog.With("repo", "AggregateStatsRepo")
  return &aggregateStatsRepo{db: db, log: repoLog}
}

func (r *aggregateStatsRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType) (*types.AggregateStats, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil {
    return nil, nil
  }

  var results []*types.AggregateStats
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND media_type = ?", userID, mt).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *aggregateStatsRepo) GetAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AggregateStats, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.AggregateStats
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// ApplyDelta mutates the stats row through relative increments so that
// concurrent deltas for different entries commute regardless of commit
// order. The row is created on first touch.
func (r *aggregateStatsRepo) ApplyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, d tracking.StatsDelta) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil || d.IsZero() {
    return nil
  }

  row := &types.AggregateStats{UserID: userID, MediaType: mt}
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND media_type = ?", userID, mt).
    Attrs(map[string]interface{}{"id": uuid.New()}).
    FirstOrCreate(row).Error; err != nil {
    return err
  }

  updates := map[string]interface{}{}
  inc := func(col string, v int64) {
    if v != 0 {
      updates[col] = gorm.Expr(col+" + ?", v)
    }
  }
  inc("total_entries", d.TotalEntries)
  inc("planned_count", d.Status.Planned)
  inc("current_count", d.Status.Current)
  inc("completed_count", d.Status.Completed)
  inc("paused_count", d.Status.Paused)
  inc("dropped_count", d.Status.Dropped)
  inc("repeating_count", d.Status.Repeating)
  inc("time_spent_minutes", d.TimeSpentMinutes)
  inc("units_consumed", d.UnitsConsumed)
  inc("rated_count", d.Rated)
  inc("commented_count", d.Commented)
  inc("favorite_count", d.Favorited)
  inc("redo_count", d.Redo)
  if len(updates) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.AggregateStats{}).
    Where("user_id = ? AND media_type = ?", userID, mt).
    Updates(updates).Error; err != nil {
    return err
  }
  return nil
}

// Overwrite replaces the stored counters with a freshly recomputed row.
// Only the maintenance reconciliation job calls this.
func (r *aggregateStatsRepo) Overwrite(ctx context.Context, tx *gorm.DB, row *types.AggregateStats) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil || row.UserID == uuid.Nil {
    return nil
  }

  existing := &types.AggregateStats{UserID: row.UserID, MediaType: row.MediaType}
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND media_type = ?", row.UserID, row.MediaType).
    Attrs(map[string]interface{}{"id": uuid.New()}).
    FirstOrCreate(existing).Error; err != nil {
    return err
  }

  // A struct update would skip zero-valued counters, and a recomputed row
  // legitimately resets counters to zero, so write every column.
  updates := map[string]interface{}{
    "total_entries":      row.TotalEntries,
    "planned_count":      row.PlannedCount,
    "current_count":      row.CurrentCount,
    "completed_count":    row.CompletedCount,
    "paused_count":       row.PausedCount,
    "dropped_count":      row.DroppedCount,
    "repeating_count":    row.RepeatingCount,
    "time_spent_minutes": row.TimeSpentMinutes,
    "units_consumed":     row.UnitsConsumed,
    "rated_count":        row.RatedCount,
    "commented_count":    row.CommentedCount,
    "favorite_count":     row.FavoriteCount,
    "redo_count":         row.RedoCount,
  }
  if err := transaction.WithContext(ctx).
    Model(&types.AggregateStats{}).
    Where("user_id = ? AND media_type = ?", row.UserID, row.MediaType).
    Updates(updates).Error; err != nil {
    return err
  }
  return nil
}
