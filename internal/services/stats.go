package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/types"
)

const (
	statsCacheKeyPrefix = "medialog:stats:"
	statsCacheTTL       = 5 * time.Minute
)

// StatsService serves the aggregate stats read path. Reads go through a
// short-lived redis cache when one is configured; every committed mutation
// invalidates the user's cached snapshot, so the TTL only covers the
// window between an external write and a crash before invalidation.
type StatsService interface {
	GetUserStats(ctx context.Context, userID uuid.UUID) (map[types.MediaType]*types.AggregateStats, error)
	GetUserStatsForMediaType(ctx context.Context, userID uuid.UUID, mt types.MediaType) (*types.AggregateStats, error)
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

type statsService struct {
	db        *gorm.DB
	log       *logger.Logger
	statsRepo repos.AggregateStatsRepo
	rdb       *redis.Client
}

func NewStatsService(db *gorm.DB, log *logger.Logger, statsRepo repos.AggregateStatsRepo, rdb *redis.Client) StatsService {
	serviceLog := log.With("service", "StatsService")
	return &statsService{db: db, log: serviceLog, statsRepo: statsRepo, rdb: rdb}
}

func statsCacheKey(userID uuid.UUID) string {
	return statsCacheKeyPrefix + userID.String()
}

func (s *statsService) GetUserStats(ctx context.Context, userID uuid.UUID) (map[types.MediaType]*types.AggregateStats, error) {
	if cached := s.readCache(ctx, userID); cached != nil {
		return cached, nil
	}

	rows, err := s.statsRepo.GetAllForUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load aggregate stats: %w", err)
	}
	out := make(map[types.MediaType]*types.AggregateStats, len(types.AllMediaTypes)+1)
	for _, row := range rows {
		out[row.MediaType] = row
	}
	// Absent rows read as zeroed stats so a fresh account has a complete
	// response shape.
	for _, mt := range append([]types.MediaType{types.MediaTypeAll}, types.AllMediaTypes...) {
		if _, ok := out[mt]; !ok {
			out[mt] = &types.AggregateStats{UserID: userID, MediaType: mt}
		}
	}

	s.writeCache(ctx, userID, out)
	return out, nil
}

func (s *statsService) GetUserStatsForMediaType(ctx context.Context, userID uuid.UUID, mt types.MediaType) (*types.AggregateStats, error) {
	all, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	row, ok := all[mt]
	if !ok {
		return &types.AggregateStats{UserID: userID, MediaType: mt}, nil
	}
	return row, nil
}

func (s *statsService) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, statsCacheKey(userID)).Err(); err != nil {
		// A stale cache self-heals at TTL; log and move on.
		s.log.Warn("failed to invalidate stats cache", "user_id", userID, "error", err)
	}
}

func (s *statsService) readCache(ctx context.Context, userID uuid.UUID) map[types.MediaType]*types.AggregateStats {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, statsCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("stats cache read failed", "user_id", userID, "error", err)
		}
		return nil
	}
	var out map[types.MediaType]*types.AggregateStats
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn("stats cache entry corrupt, dropping", "user_id", userID, "error", err)
		s.InvalidateUser(ctx, userID)
		return nil
	}
	return out
}

func (s *statsService) writeCache(ctx context.Context, userID uuid.UUID, stats map[types.MediaType]*types.AggregateStats) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, statsCacheKey(userID), raw, statsCacheTTL).Err(); err != nil {
		s.log.Warn("stats cache write failed", "user_id", userID, "error", err)
	}
}
