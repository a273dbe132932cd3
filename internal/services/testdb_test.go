package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/types"
)

type testEnv struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	entryRepo     repos.MediaEntryRepo
	userEntryRepo repos.UserEntryRepo
	statsRepo     repos.AggregateStatsRepo
	achRepo       repos.AchievementRepo
	uaRepo        repos.UserAchievementRepo
	logRepo       repos.UpdateLogRepo

	achievements AchievementService
	updateLog    *updateLogService
	list         ListService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.MediaEntry{},
		&types.UserEntry{},
		&types.AggregateStats{},
		&types.Achievement{},
		&types.AchievementTier{},
		&types.UserAchievement{},
		&types.UpdateLog{},
	))

	log, err := logger.New("development")
	require.NoError(t, err)

	env := &testEnv{
		db:            db,
		log:           log,
		userRepo:      repos.NewUserRepo(db, log),
		entryRepo:     repos.NewMediaEntryRepo(db, log),
		userEntryRepo: repos.NewUserEntryRepo(db, log),
		statsRepo:     repos.NewAggregateStatsRepo(db, log),
		achRepo:       repos.NewAchievementRepo(db, log),
		uaRepo:        repos.NewUserAchievementRepo(db, log),
		logRepo:       repos.NewUpdateLogRepo(db, log),
	}
	env.achievements = NewAchievementService(db, log, env.achRepo, env.uaRepo, env.statsRepo)
	env.updateLog = NewUpdateLogService(db, log, env.logRepo).(*updateLogService)
	env.list = NewListService(db, log, env.entryRepo, env.userEntryRepo, env.statsRepo, env.achievements, env.updateLog, nil)
	return env
}

func (e *testEnv) createUser(t *testing.T) uuid.UUID {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("%s@example.com", uuid.New()),
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
	}
	_, err := e.userRepo.Create(context.Background(), nil, []*types.User{user})
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) createEntry(t *testing.T, mt types.MediaType, unitCount int) uuid.UUID {
	t.Helper()
	entry := &types.MediaEntry{
		ID:        uuid.New(),
		MediaType: mt,
		Title:     fmt.Sprintf("entry-%s", uuid.New()),
		UnitCount: unitCount,
	}
	_, err := e.entryRepo.Create(context.Background(), nil, []*types.MediaEntry{entry})
	require.NoError(t, err)
	return entry.ID
}

func (e *testEnv) createAchievement(t *testing.T, slug string, mt types.MediaType, metric types.Metric, thresholds ...int64) *types.Achievement {
	t.Helper()
	ach := &types.Achievement{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      slug,
		MediaType: mt,
		Metric:    metric,
	}
	for i, threshold := range thresholds {
		ach.Tiers = append(ach.Tiers, &types.AchievementTier{
			ID:            uuid.New(),
			AchievementID: ach.ID,
			Rank:          i,
			Name:          fmt.Sprintf("tier-%d", i),
			Threshold:     threshold,
		})
	}
	require.NoError(t, e.achRepo.Create(context.Background(), nil, ach))
	return ach
}

func (e *testEnv) stats(t *testing.T, userID uuid.UUID, mt types.MediaType) *types.AggregateStats {
	t.Helper()
	row, err := e.statsRepo.Get(context.Background(), nil, userID, mt)
	require.NoError(t, err)
	if row == nil {
		return &types.AggregateStats{UserID: userID, MediaType: mt}
	}
	return row
}

func statusPtr(s types.Status) *types.Status { return &s }
func intPtr(v int) *int                      { return &v }
func boolPtr(v bool) *bool                   { return &v }
func strPtr(v string) *string                { return &v }

func fixedClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	return func() time.Time { return current }, func(d time.Duration) { current = current.Add(d) }
}
