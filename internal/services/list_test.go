package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/apierr"
	"github.com/medialog/medialog-backend/internal/types"
)

func TestAddEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeAnime, 12)

	ue, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeAnime, nil)
	require.NoError(t, err)
	require.Equal(t, types.StatusPlanned, ue.Status)
	require.Equal(t, 0, ue.Progress)

	anime := env.stats(t, userID, types.MediaTypeAnime)
	require.EqualValues(t, 1, anime.TotalEntries)
	require.EqualValues(t, 1, anime.PlannedCount)
	require.EqualValues(t, 0, anime.TimeSpentMinutes)

	all := env.stats(t, userID, types.MediaTypeAll)
	require.EqualValues(t, 1, all.TotalEntries)
	require.EqualValues(t, 1, all.PlannedCount)
}

func TestAddEntryDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeBook, 300)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeBook, nil)
	require.NoError(t, err)

	_, err = env.list.AddEntry(ctx, userID, entryID, types.MediaTypeBook, nil)
	require.Error(t, err)
	require.True(t, apierr.IsCode(err, apierr.CodeAlreadyExists))

	book := env.stats(t, userID, types.MediaTypeBook)
	require.EqualValues(t, 1, book.TotalEntries)
}

func TestAddEntryUnknownCatalogEntry(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t)

	_, err := env.list.AddEntry(context.Background(), userID, uuid.New(), types.MediaTypeMovie, nil)
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestAddEntryWrongCatalog(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeAnime, 12)

	_, err := env.list.AddEntry(context.Background(), userID, entryID, types.MediaTypeManga, nil)
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestUpdateEntryCompletionClampsProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeAnime, 12)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeAnime, statusPtr(types.StatusCurrent))
	require.NoError(t, err)
	_, err = env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeAnime, ChangeSet{Progress: intPtr(5)})
	require.NoError(t, err)

	ue, err := env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeAnime, ChangeSet{Status: statusPtr(types.StatusCompleted)})
	require.NoError(t, err)
	require.Equal(t, 12, ue.Progress)

	anime := env.stats(t, userID, types.MediaTypeAnime)
	require.EqualValues(t, 1, anime.CompletedCount)
	require.EqualValues(t, 0, anime.CurrentCount)
	require.EqualValues(t, 12, anime.UnitsConsumed)
	require.EqualValues(t, 12*24, anime.TimeSpentMinutes)
}

func TestUpdateEntryBackToPlannedResets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeManga, 100)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeManga, statusPtr(types.StatusCompleted))
	require.NoError(t, err)
	_, err = env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeManga, ChangeSet{RedoIncrement: 2})
	require.NoError(t, err)

	ue, err := env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeManga, ChangeSet{Status: statusPtr(types.StatusPlanned)})
	require.NoError(t, err)
	require.Equal(t, 0, ue.Progress)
	require.Equal(t, 0, ue.RedoCount)
	require.Nil(t, ue.StartedAt)
	require.Nil(t, ue.FinishedAt)

	manga := env.stats(t, userID, types.MediaTypeManga)
	require.EqualValues(t, 1, manga.PlannedCount)
	require.EqualValues(t, 0, manga.CompletedCount)
	require.EqualValues(t, 0, manga.UnitsConsumed)
	require.EqualValues(t, 0, manga.TimeSpentMinutes)
	require.EqualValues(t, 0, manga.RedoCount)
}

func TestUpdateEntryValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeMovie, 120)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeMovie, nil)
	require.NoError(t, err)

	cases := []struct {
		name   string
		change ChangeSet
	}{
		{"empty change", ChangeSet{}},
		{"negative progress", ChangeSet{Progress: intPtr(-1)}},
		{"rating too high", ChangeSet{Rating: intPtr(11)}},
		{"negative redo", ChangeSet{RedoIncrement: -1}},
		{"bad status", ChangeSet{Status: statusPtr(types.Status("bingeing"))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeMovie, tc.change)
			require.True(t, apierr.IsCode(err, apierr.CodeBadRequest))
		})
	}
}

func TestUpdateEntryNotOnList(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeTV, 10)

	_, err := env.list.UpdateEntry(context.Background(), userID, entryID, types.MediaTypeTV, ChangeSet{Progress: intPtr(3)})
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestRemoveEntryNetsToZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeTV, 8)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeTV, statusPtr(types.StatusCurrent))
	require.NoError(t, err)
	_, err = env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeTV, ChangeSet{
		Progress: intPtr(4),
		Rating:   intPtr(8),
		Favorite: boolPtr(true),
		Comment:  strPtr("good so far"),
	})
	require.NoError(t, err)

	delta, err := env.list.RemoveEntry(ctx, userID, entryID, types.MediaTypeTV)
	require.NoError(t, err)
	require.EqualValues(t, -1, delta.TotalEntries)

	for _, mt := range []types.MediaType{types.MediaTypeTV, types.MediaTypeAll} {
		row := env.stats(t, userID, mt)
		require.EqualValues(t, 0, row.TotalEntries, "media type %s", mt)
		require.EqualValues(t, 0, row.StatusTotal(), "media type %s", mt)
		require.EqualValues(t, 0, row.TimeSpentMinutes, "media type %s", mt)
		require.EqualValues(t, 0, row.UnitsConsumed, "media type %s", mt)
		require.EqualValues(t, 0, row.RatedCount, "media type %s", mt)
		require.EqualValues(t, 0, row.FavoriteCount, "media type %s", mt)
		require.EqualValues(t, 0, row.CommentedCount, "media type %s", mt)
	}

	_, err = env.list.RemoveEntry(ctx, userID, entryID, types.MediaTypeTV)
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestGameProgressIsUnbounded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeGame, 0)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeGame, statusPtr(types.StatusCurrent))
	require.NoError(t, err)
	ue, err := env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeGame, ChangeSet{Progress: intPtr(5000)})
	require.NoError(t, err)
	require.Equal(t, 5000, ue.Progress)

	ue, err = env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeGame, ChangeSet{Status: statusPtr(types.StatusCompleted)})
	require.NoError(t, err)
	require.Equal(t, 5000, ue.Progress)

	game := env.stats(t, userID, types.MediaTypeGame)
	require.EqualValues(t, 5000, game.TimeSpentMinutes)
}

func TestAchievementTierUnlockedByCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	ach := env.createAchievement(t, "anime-finisher", types.MediaTypeAnime, types.MetricCompletedEntries, 1, 3)

	entryID := env.createEntry(t, types.MediaTypeAnime, 12)
	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeAnime, statusPtr(types.StatusCompleted))
	require.NoError(t, err)

	ua, err := env.uaRepo.Get(ctx, nil, userID, ach.ID)
	require.NoError(t, err)
	require.NotNil(t, ua)
	require.Equal(t, 0, ua.HighestTierIndex)
	require.EqualValues(t, 1, ua.Count)
	require.NotNil(t, ua.CompletedAt)
	require.InDelta(t, 100.0/3.0, ua.Percent, 0.01)
}

func TestAchievementTierIsNeverRevoked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	ach := env.createAchievement(t, "one-and-done", types.MediaTypeBook, types.MetricCompletedEntries, 1)

	entryID := env.createEntry(t, types.MediaTypeBook, 200)
	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeBook, statusPtr(types.StatusCompleted))
	require.NoError(t, err)

	_, err = env.list.RemoveEntry(ctx, userID, entryID, types.MediaTypeBook)
	require.NoError(t, err)

	ua, err := env.uaRepo.Get(ctx, nil, userID, ach.ID)
	require.NoError(t, err)
	require.NotNil(t, ua)
	require.Equal(t, 0, ua.HighestTierIndex, "completed tier must survive a metric drop")
	require.EqualValues(t, 0, ua.Count)
}

func TestCrossCatalogAchievementTracksRollup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	ach := env.createAchievement(t, "collector", types.MediaTypeAll, types.MetricTotalEntries, 2)

	movieID := env.createEntry(t, types.MediaTypeMovie, 100)
	bookID := env.createEntry(t, types.MediaTypeBook, 250)

	_, err := env.list.AddEntry(ctx, userID, movieID, types.MediaTypeMovie, nil)
	require.NoError(t, err)
	ua, err := env.uaRepo.Get(ctx, nil, userID, ach.ID)
	require.NoError(t, err)
	require.NotNil(t, ua)
	require.Equal(t, -1, ua.HighestTierIndex)

	_, err = env.list.AddEntry(ctx, userID, bookID, types.MediaTypeBook, nil)
	require.NoError(t, err)
	ua, err = env.uaRepo.Get(ctx, nil, userID, ach.ID)
	require.NoError(t, err)
	require.Equal(t, 0, ua.HighestTierIndex)
}

func TestCrossCatalogAchievementSeesRatingUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	ach := env.createAchievement(t, "critic", types.MediaTypeAll, types.MetricRatedEntries, 1)
	entryID := env.createEntry(t, types.MediaTypeMovie, 120)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeMovie, nil)
	require.NoError(t, err)

	// The rating mutation never changes the entry count, but it moves the
	// roll-up metric this achievement reads.
	_, err = env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeMovie, ChangeSet{Rating: intPtr(9)})
	require.NoError(t, err)

	rollup := env.stats(t, userID, types.MediaTypeAll)
	require.Equal(t, int64(1), rollup.RatedCount)

	ua, err := env.uaRepo.Get(ctx, nil, userID, ach.ID)
	require.NoError(t, err)
	require.NotNil(t, ua)
	require.Equal(t, int64(1), ua.Count)
	require.Equal(t, 0, ua.HighestTierIndex)
}

func TestLockedEntryReadMatchesCurrentState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeAnime, 12)

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeAnime, nil)
	require.NoError(t, err)

	err = env.db.Transaction(func(tx *gorm.DB) error {
		row, err := env.userEntryRepo.GetForUpdate(ctx, tx, userID, types.MediaTypeAnime, entryID)
		if err != nil {
			return err
		}
		require.NotNil(t, row)
		require.Equal(t, types.StatusPlanned, row.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestMutationsWriteFeedRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeManga, 50)

	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	env.updateLog.now = now

	_, err := env.list.AddEntry(ctx, userID, entryID, types.MediaTypeManga, nil)
	require.NoError(t, err)

	advance(CoalesceWindow + time.Minute)
	_, err = env.list.UpdateEntry(ctx, userID, entryID, types.MediaTypeManga, ChangeSet{Status: statusPtr(types.StatusCurrent)})
	require.NoError(t, err)

	logs, err := env.updateLog.ListForUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, types.UpdateKindStatus, logs[0].Kind)
	require.Equal(t, string(types.StatusPlanned), logs[0].OldValue)
	require.Equal(t, string(types.StatusCurrent), logs[0].NewValue)
	require.Equal(t, types.UpdateKindAdd, logs[1].Kind)
}

func TestReconcileMatchesDeltaMaintainedStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	animeID := env.createEntry(t, types.MediaTypeAnime, 24)
	gameID := env.createEntry(t, types.MediaTypeGame, 0)

	_, err := env.list.AddEntry(ctx, userID, animeID, types.MediaTypeAnime, statusPtr(types.StatusCompleted))
	require.NoError(t, err)
	_, err = env.list.AddEntry(ctx, userID, gameID, types.MediaTypeGame, statusPtr(types.StatusCurrent))
	require.NoError(t, err)
	_, err = env.list.UpdateEntry(ctx, userID, gameID, types.MediaTypeGame, ChangeSet{Progress: intPtr(90), Rating: intPtr(9)})
	require.NoError(t, err)

	before := map[types.MediaType]*types.AggregateStats{}
	for _, mt := range append([]types.MediaType{types.MediaTypeAll}, types.AllMediaTypes...) {
		before[mt] = env.stats(t, userID, mt)
	}

	reconcile := NewReconcileService(env.db, env.log, env.userEntryRepo, env.statsRepo, nil)
	after, err := reconcile.ReconcileUser(ctx, userID)
	require.NoError(t, err)

	for mt, want := range before {
		got := after[mt]
		require.NotNil(t, got, "media type %s", mt)
		require.Equal(t, want.TotalEntries, got.TotalEntries, "media type %s", mt)
		require.Equal(t, want.StatusTotal(), got.StatusTotal(), "media type %s", mt)
		require.Equal(t, want.TimeSpentMinutes, got.TimeSpentMinutes, "media type %s", mt)
		require.Equal(t, want.UnitsConsumed, got.UnitsConsumed, "media type %s", mt)
		require.Equal(t, want.RatedCount, got.RatedCount, "media type %s", mt)
	}
}
