package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medialog/medialog-backend/internal/types"
)

func TestRecordCoalescesWithinWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeBook, 320)

	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	env.updateLog.now = now

	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: entryID, MediaType: types.MediaTypeBook,
		Kind: types.UpdateKindProgress, OldValue: "12 pages", NewValue: "40 pages",
	}))

	advance(time.Second)
	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: entryID, MediaType: types.MediaTypeBook,
		Kind: types.UpdateKindProgress, OldValue: "40 pages", NewValue: "55 pages",
	}))

	logs, err := env.updateLog.ListForUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "12 pages", logs[0].OldValue, "merged record keeps the oldest old value")
	require.Equal(t, "55 pages", logs[0].NewValue)
}

func TestRecordKeepsDistinctRecordsOutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeBook, 320)

	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	env.updateLog.now = now

	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: entryID, MediaType: types.MediaTypeBook,
		Kind: types.UpdateKindProgress, OldValue: "12 pages", NewValue: "40 pages",
	}))

	advance(400 * time.Second)
	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: entryID, MediaType: types.MediaTypeBook,
		Kind: types.UpdateKindProgress, OldValue: "40 pages", NewValue: "55 pages",
	}))

	logs, err := env.updateLog.ListForUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "55 pages", logs[0].NewValue)
	require.Equal(t, "40 pages", logs[1].NewValue)
}

func TestRecordCoalescesAcrossKinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeAnime, 12)

	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	env.updateLog.now = now

	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: entryID, MediaType: types.MediaTypeAnime,
		Kind: types.UpdateKindProgress, OldValue: "3 episodes", NewValue: "7 episodes",
	}))

	advance(30 * time.Second)
	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: entryID, MediaType: types.MediaTypeAnime,
		Kind: types.UpdateKindStatus, OldValue: "current", NewValue: "completed",
	}))

	logs, err := env.updateLog.ListForUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, types.UpdateKindStatus, logs[0].Kind, "merged record carries the newest kind")
	require.Equal(t, "3 episodes", logs[0].OldValue)
}

func TestRecordDoesNotCoalesceAcrossEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	firstID := env.createEntry(t, types.MediaTypeGame, 0)
	secondID := env.createEntry(t, types.MediaTypeGame, 0)

	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	env.updateLog.now = now

	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: firstID, MediaType: types.MediaTypeGame,
		Kind: types.UpdateKindProgress, NewValue: "60 minutes",
	}))
	advance(time.Second)
	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: userID, EntryID: secondID, MediaType: types.MediaTypeGame,
		Kind: types.UpdateKindProgress, NewValue: "90 minutes",
	}))

	logs, err := env.updateLog.ListForUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
}

func TestDeleteForUserIgnoresForeignRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t)
	other := env.createUser(t)
	entryID := env.createEntry(t, types.MediaTypeMovie, 90)

	require.NoError(t, env.updateLog.Record(ctx, nil, &types.UpdateLog{
		UserID: owner, EntryID: entryID, MediaType: types.MediaTypeMovie,
		Kind: types.UpdateKindAdd, NewValue: "planned",
	}))
	logs, err := env.updateLog.ListForUser(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.NoError(t, env.updateLog.DeleteForUser(ctx, other, []uint{logs[0].ID}))
	logs, err = env.updateLog.ListForUser(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1, "another user's delete must not remove the record")

	require.NoError(t, env.updateLog.DeleteForUser(ctx, owner, []uint{logs[0].ID}))
	logs, err = env.updateLog.ListForUser(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 0)
}
