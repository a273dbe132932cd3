package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/apierr"
	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/tracking"
	"github.com/medialog/medialog-backend/internal/types"
)

type AchievementService interface {
	// EvaluateForMediaType re-evaluates every achievement scoped to the
	// mutated catalog, plus the cross-catalog ones when requested. Must
	// run inside the mutation transaction.
	EvaluateForMediaType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, includeCrossCatalog bool) error
	// EvaluateAchievement re-evaluates a single achievement against the
	// stats row its scope reads. A media type outside the achievement's
	// scope is a caller error.
	EvaluateAchievement(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ach *types.Achievement, mt types.MediaType) error
	ListProgressForUser(ctx context.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
}

type achievementService struct {
	db        *gorm.DB
	log       *logger.Logger
	achRepo   repos.AchievementRepo
	uaRepo    repos.UserAchievementRepo
	statsRepo repos.AggregateStatsRepo
	now       func() time.Time
}

func NewAchievementService(db *gorm.DB, log *logger.Logger, achRepo repos.AchievementRepo, uaRepo repos.UserAchievementRepo, statsRepo repos.AggregateStatsRepo) AchievementService {
	serviceLog := log.With("service", "AchievementService")
	return &achievementService{
		db:        db,
		log:       serviceLog,
		achRepo:   achRepo,
		uaRepo:    uaRepo,
		statsRepo: statsRepo,
		now:       time.Now,
	}
}

func (s *achievementService) EvaluateForMediaType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, includeCrossCatalog bool) error {
	if userID == uuid.Nil {
		return apierr.Unauthorized("missing user")
	}
	scopes := []types.MediaType{mt}
	if includeCrossCatalog {
		scopes = append(scopes, types.MediaTypeAll)
	}
	achievements, err := s.achRepo.ListByMediaTypes(ctx, tx, scopes)
	if err != nil {
		return fmt.Errorf("list achievements: %w", err)
	}
	for _, ach := range achievements {
		if err := s.EvaluateAchievement(ctx, tx, userID, ach, mt); err != nil {
			return err
		}
	}
	return nil
}

func (s *achievementService) EvaluateAchievement(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ach *types.Achievement, mt types.MediaType) error {
	if ach == nil {
		return nil
	}
	if ach.MediaType != types.MediaTypeAll && ach.MediaType != mt {
		return apierr.BadRequest("achievement %s is scoped to %s, not %s", ach.Slug, ach.MediaType, mt)
	}

	// The tracked metric is read off the already-maintained stats row,
	// never recomputed from the entry table. A missing row reads as zero.
	stats, err := s.statsRepo.Get(ctx, tx, userID, ach.MediaType)
	if err != nil {
		return fmt.Errorf("read stats for %s: %w", ach.MediaType, err)
	}
	count := stats.MetricValue(ach.Metric)

	ua, err := s.uaRepo.Get(ctx, tx, userID, ach.ID)
	if err != nil {
		return fmt.Errorf("read achievement progress: %w", err)
	}
	prevHighest := -1
	if ua != nil {
		prevHighest = ua.HighestTierIndex
	}

	result := tracking.EvaluateTiers(ach.Tiers, count, prevHighest)

	if ua == nil {
		ua = &types.UserAchievement{
			UserID:           userID,
			AchievementID:    ach.ID,
			HighestTierIndex: -1,
		}
	}
	ua.Count = count
	ua.Percent = result.Percent
	ua.HighestTierIndex = result.HighestIndex
	if result.HighestIndex >= 0 && result.HighestIndex < len(ach.Tiers) {
		ua.HighestTierID = &ach.Tiers[result.HighestIndex].ID
	}

	if len(result.NewlyCompleted) > 0 {
		now := s.now()
		ua.CompletedAt = &now
		completions := map[string]string{}
		if len(ua.TierCompletions) > 0 {
			if err := json.Unmarshal(ua.TierCompletions, &completions); err != nil {
				s.log.Warn("resetting unreadable tier completion history", "achievement", ach.Slug, "error", err)
				completions = map[string]string{}
			}
		}
		for _, rank := range result.NewlyCompleted {
			completions[strconv.Itoa(rank)] = now.UTC().Format(time.RFC3339)
		}
		raw, err := json.Marshal(completions)
		if err != nil {
			return fmt.Errorf("encode tier completions: %w", err)
		}
		ua.TierCompletions = datatypes.JSON(raw)
		s.log.Info("achievement tier completed",
			"achievement", ach.Slug,
			"user_id", userID,
			"highest_tier_index", result.HighestIndex,
			"count", count,
		)
	}

	if err := s.uaRepo.Upsert(ctx, tx, ua); err != nil {
		return fmt.Errorf("save achievement progress: %w", err)
	}
	return nil
}

func (s *achievementService) ListProgressForUser(ctx context.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("missing user")
	}
	return s.uaRepo.ListByUser(ctx, nil, userID)
}
