package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/mediatype"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/tracking"
	"github.com/medialog/medialog-backend/internal/types"
)

// ReconcileService recomputes a user's aggregate stats from their entries
// and overwrites the stored rows. The delta pipeline keeps the rows
// correct in steady state; this is the repair path after a manual data
// fix or a suspected drift.
type ReconcileService interface {
	ReconcileUser(ctx context.Context, userID uuid.UUID) (map[types.MediaType]*types.AggregateStats, error)
}

type reconcileService struct {
	db            *gorm.DB
	log           *logger.Logger
	userEntryRepo repos.UserEntryRepo
	statsRepo     repos.AggregateStatsRepo
	cache         statsInvalidator
}

func NewReconcileService(
	db *gorm.DB,
	log *logger.Logger,
	userEntryRepo repos.UserEntryRepo,
	statsRepo repos.AggregateStatsRepo,
	cache statsInvalidator,
) ReconcileService {
	serviceLog := log.With("service", "ReconcileService")
	return &reconcileService{
		db:            db,
		log:           serviceLog,
		userEntryRepo: userEntryRepo,
		statsRepo:     statsRepo,
		cache:         cache,
	}
}

func (s *reconcileService) ReconcileUser(ctx context.Context, userID uuid.UUID) (map[types.MediaType]*types.AggregateStats, error) {
	perCatalog := make([]*types.AggregateStats, len(types.AllMediaTypes))

	// Each catalog recomputes independently; the reads are outside any
	// transaction so they can fan out.
	group, groupCtx := errgroup.WithContext(ctx)
	for i, mt := range types.AllMediaTypes {
		i, mt := i, mt
		group.Go(func() error {
			row, err := s.recomputeMediaType(groupCtx, userID, mt)
			if err != nil {
				return fmt.Errorf("recompute %s: %w", mt, err)
			}
			perCatalog[i] = row
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	rollup := &types.AggregateStats{UserID: userID, MediaType: types.MediaTypeAll}
	for _, row := range perCatalog {
		addStats(rollup, row)
	}

	out := make(map[types.MediaType]*types.AggregateStats, len(perCatalog)+1)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range append(perCatalog, rollup) {
			if err := s.statsRepo.Overwrite(ctx, tx, row); err != nil {
				return fmt.Errorf("overwrite %s stats: %w", row.MediaType, err)
			}
			out[row.MediaType] = row
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	if s.cache != nil {
		s.cache.InvalidateUser(ctx, userID)
	}
	s.log.Info("reconciled aggregate stats", "user_id", userID, "total_entries", rollup.TotalEntries)
	return out, nil
}

func (s *reconcileService) recomputeMediaType(ctx context.Context, userID uuid.UUID, mt types.MediaType) (*types.AggregateStats, error) {
	desc, err := mediatype.For(mt)
	if err != nil {
		return nil, err
	}
	entries, err := s.userEntryRepo.ListAllByUserAndMediaType(ctx, nil, userID, mt)
	if err != nil {
		return nil, err
	}

	row := &types.AggregateStats{UserID: userID, MediaType: mt}
	for _, e := range entries {
		unitMax := 0
		if e.Entry != nil {
			unitMax = e.Entry.UnitCount
		}
		delta := tracking.ComputeDelta(nil, e, unitMax, desc)
		tracking.ApplyToStats(row, delta)
	}
	return row, nil
}

func addStats(dst, src *types.AggregateStats) {
	dst.TotalEntries += src.TotalEntries
	dst.PlannedCount += src.PlannedCount
	dst.CurrentCount += src.CurrentCount
	dst.CompletedCount += src.CompletedCount
	dst.PausedCount += src.PausedCount
	dst.DroppedCount += src.DroppedCount
	dst.RepeatingCount += src.RepeatingCount
	dst.TimeSpentMinutes += src.TimeSpentMinutes
	dst.UnitsConsumed += src.UnitsConsumed
	dst.RatedCount += src.RatedCount
	dst.CommentedCount += src.CommentedCount
	dst.FavoriteCount += src.FavoriteCount
	dst.RedoCount += src.RedoCount
}
