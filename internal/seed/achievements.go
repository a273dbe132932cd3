package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/types"
)

//go:embed achievements.yaml
var defaultCatalog []byte

type achievementSpec struct {
	Slug        string          `yaml:"slug"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	MediaType   types.MediaType `yaml:"media_type"`
	Metric      types.Metric    `yaml:"metric"`
	Tiers       []int64         `yaml:"tiers"`
}

type catalogFile struct {
	Achievements []achievementSpec `yaml:"achievements"`
}

// Achievements upserts the achievement catalog by slug. It runs at every
// startup: existing rows get their name, description, scope, metric, and
// tier list refreshed, and new rows are created. User progress is untouched.
// ACHIEVEMENTS_FILE overrides the embedded default catalog.
func Achievements(ctx context.Context, db *gorm.DB, log *logger.Logger, achievementRepo repos.AchievementRepo) error {
	seedLog := log.With("component", "seed")

	raw := defaultCatalog
	if path := os.Getenv("ACHIEVEMENTS_FILE"); path != "" {
		fileRaw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read achievements file %s: %w", path, err)
		}
		raw = fileRaw
	}

	var catalog catalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parse achievements catalog: %w", err)
	}
	if err := validateCatalog(catalog); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, spec := range catalog.Achievements {
			if err := upsertAchievement(ctx, tx, achievementRepo, seedLog, spec); err != nil {
				return fmt.Errorf("seed achievement %q: %w", spec.Slug, err)
			}
		}
		seedLog.Info("achievement catalog seeded", "count", len(catalog.Achievements))
		return nil
	})
}

func validateCatalog(catalog catalogFile) error {
	seen := map[string]bool{}
	for _, spec := range catalog.Achievements {
		if spec.Slug == "" || spec.Name == "" {
			return fmt.Errorf("achievement %q needs a slug and a name", spec.Slug)
		}
		if seen[spec.Slug] {
			return fmt.Errorf("duplicate achievement slug %q", spec.Slug)
		}
		seen[spec.Slug] = true
		if spec.MediaType != types.MediaTypeAll && !spec.MediaType.Valid() {
			return fmt.Errorf("achievement %q has unknown media type %q", spec.Slug, spec.MediaType)
		}
		if !spec.Metric.Valid() {
			return fmt.Errorf("achievement %q has unknown metric %q", spec.Slug, spec.Metric)
		}
		if len(spec.Tiers) == 0 {
			return fmt.Errorf("achievement %q has no tiers", spec.Slug)
		}
		prev := int64(0)
		for i, threshold := range spec.Tiers {
			if threshold <= prev {
				return fmt.Errorf("achievement %q tier %d threshold %d must exceed %d", spec.Slug, i, threshold, prev)
			}
			prev = threshold
		}
	}
	return nil
}

func upsertAchievement(ctx context.Context, tx *gorm.DB, achievementRepo repos.AchievementRepo, log *logger.Logger, spec achievementSpec) error {
	existing, err := achievementRepo.GetBySlug(ctx, tx, spec.Slug)
	if err != nil {
		return err
	}

	if existing == nil {
		row := &types.Achievement{
			ID:          uuid.New(),
			Slug:        spec.Slug,
			Name:        spec.Name,
			Description: spec.Description,
			MediaType:   spec.MediaType,
			Metric:      spec.Metric,
		}
		for i, threshold := range spec.Tiers {
			row.Tiers = append(row.Tiers, &types.AchievementTier{
				ID:            uuid.New(),
				AchievementID: row.ID,
				Rank:          i,
				Name:          tierName(i),
				Threshold:     threshold,
			})
		}
		log.Info("creating achievement", "slug", spec.Slug, "tiers", len(spec.Tiers))
		return achievementRepo.Create(ctx, tx, row)
	}

	existing.Name = spec.Name
	existing.Description = spec.Description
	existing.MediaType = spec.MediaType
	existing.Metric = spec.Metric
	if err := achievementRepo.Save(ctx, tx, existing); err != nil {
		return err
	}

	byRank := map[int]*types.AchievementTier{}
	for _, tier := range existing.Tiers {
		byRank[tier.Rank] = tier
	}
	for i, threshold := range spec.Tiers {
		tier, ok := byRank[i]
		if !ok {
			tier = &types.AchievementTier{
				ID:            uuid.New(),
				AchievementID: existing.ID,
				Rank:          i,
			}
		}
		tier.Name = tierName(i)
		tier.Threshold = threshold
		if err := achievementRepo.SaveTier(ctx, tx, tier); err != nil {
			return err
		}
	}
	// A shrunk tier list would otherwise leave the old higher ranks behind.
	return achievementRepo.DeleteTiersFromRank(ctx, tx, existing.ID, len(spec.Tiers))
}

func tierName(rank int) string {
	if rank < len(types.TierNames) {
		return types.TierNames[rank]
	}
	return fmt.Sprintf("Tier %d", rank+1)
}
