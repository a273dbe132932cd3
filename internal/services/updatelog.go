package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/apierr"
	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/types"
)

// CoalesceWindow is how recent the previous record for the same entry must
// be for the new record to merge into it.
const CoalesceWindow = 300 * time.Second

type UpdateLogService interface {
	// Record appends an activity record, merging it into the most recent
	// record for the same (user, entry, media type) when that record is
	// younger than the coalescing window. Must run inside the mutation
	// transaction.
	Record(ctx context.Context, tx *gorm.DB, candidate *types.UpdateLog) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.UpdateLog, error)
	DeleteForUser(ctx context.Context, userID uuid.UUID, ids []uint) error
}

type updateLogService struct {
	db      *gorm.DB
	log     *logger.Logger
	logRepo repos.UpdateLogRepo
	window  time.Duration
	now     func() time.Time
}

func NewUpdateLogService(db *gorm.DB, log *logger.Logger, logRepo repos.UpdateLogRepo) UpdateLogService {
	serviceLog := log.With("service", "UpdateLogService")
	return &updateLogService{
		db:      db,
		log:     serviceLog,
		logRepo: logRepo,
		window:  CoalesceWindow,
		now:     time.Now,
	}
}

func (s *updateLogService) Record(ctx context.Context, tx *gorm.DB, candidate *types.UpdateLog) error {
	if candidate == nil {
		return nil
	}
	now := s.now()
	candidate.CreatedAt = now

	latest, err := s.logRepo.LatestForEntry(ctx, tx, candidate.UserID, candidate.EntryID, candidate.MediaType)
	if err != nil {
		return fmt.Errorf("coalescing lookup: %w", err)
	}
	if latest == nil || now.Sub(latest.CreatedAt) >= s.window {
		return s.logRepo.Create(ctx, tx, candidate)
	}

	// Merge: the burst reads as one before/after record. The old value
	// comes from the record being replaced, not the incoming candidate.
	// Insert the merged record before deleting the stale one, so a crash
	// in between duplicates a record instead of losing the old value.
	candidate.OldValue = latest.OldValue
	if err := s.logRepo.Create(ctx, tx, candidate); err != nil {
		return fmt.Errorf("insert merged record: %w", err)
	}
	if err := s.logRepo.FullDeleteByIDs(ctx, tx, []uint{latest.ID}); err != nil {
		return fmt.Errorf("delete stale record: %w", err)
	}
	return nil
}

func (s *updateLogService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.UpdateLog, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("missing user")
	}
	return s.logRepo.ListByUser(ctx, nil, userID, limit, offset)
}

// DeleteForUser is pure log maintenance: already-applied stats deltas are
// never reversed by deleting feed records.
func (s *updateLogService) DeleteForUser(ctx context.Context, userID uuid.UUID, ids []uint) error {
	if userID == uuid.Nil {
		return apierr.Unauthorized("missing user")
	}
	if len(ids) == 0 {
		return nil
	}
	deleted, err := s.logRepo.FullDeleteByIDsForUser(ctx, nil, userID, ids)
	if err != nil {
		return fmt.Errorf("delete log records: %w", err)
	}
	if deleted < int64(len(ids)) {
		s.log.Debug("some log records were not deleted", "requested", len(ids), "deleted", deleted)
	}
	return nil
}
