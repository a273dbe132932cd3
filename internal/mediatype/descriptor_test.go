package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialog/medialog-backend/internal/types"
)

func TestForCoversAllCatalogs(t *testing.T) {
	for _, mt := range types.AllMediaTypes {
		d, err := For(mt)
		require.NoError(t, err, "descriptor for %s", mt)
		assert.Equal(t, mt, d.MediaType)
		assert.NotEmpty(t, d.Statuses)
		assert.True(t, d.IsCompleted(types.StatusCompleted))
		assert.True(t, d.IsCompleted(types.StatusRepeating))
		assert.False(t, d.IsCompleted(types.StatusCurrent))
		assert.Positive(t, d.MinutesPerUnit)
	}

	_, err := For(types.MediaTypeAll)
	assert.Error(t, err, "the roll-up pseudo type has no descriptor")
}

func TestNormalizePlannedResetsProgressAndRedo(t *testing.T) {
	d, err := For(types.MediaTypeManga)
	require.NoError(t, err)

	e := &types.UserEntry{Status: types.StatusPlanned, Progress: 140, RedoCount: 3}
	d.Normalize(e, 200)

	assert.Zero(t, e.Progress)
	assert.Zero(t, e.RedoCount)
}

func TestNormalizeCompletionClamps(t *testing.T) {
	d, err := For(types.MediaTypeTV)
	require.NoError(t, err)

	e := &types.UserEntry{Status: types.StatusCompleted, Progress: 3, RedoCount: 1}
	d.Normalize(e, 24)

	assert.Equal(t, 24, e.Progress)
	assert.Equal(t, 1, e.RedoCount)
}

func TestNormalizeProgressNeverExceedsMax(t *testing.T) {
	d, err := For(types.MediaTypeBook)
	require.NoError(t, err)

	e := &types.UserEntry{Status: types.StatusCurrent, Progress: 999}
	d.Normalize(e, 340)
	assert.Equal(t, 340, e.Progress)

	// Unknown maximum leaves the recorded value alone.
	e = &types.UserEntry{Status: types.StatusCurrent, Progress: 999}
	d.Normalize(e, 0)
	assert.Equal(t, 999, e.Progress)
}

func TestNormalizeGameIsUnbounded(t *testing.T) {
	d, err := For(types.MediaTypeGame)
	require.NoError(t, err)

	e := &types.UserEntry{Status: types.StatusCompleted, Progress: 4500}
	d.Normalize(e, 0)
	assert.Equal(t, 4500, e.Progress)
}

func TestEffectiveProgressNegativeFloorsAtZero(t *testing.T) {
	d, err := For(types.MediaTypeMovie)
	require.NoError(t, err)

	e := &types.UserEntry{Status: types.StatusCurrent, Progress: -10}
	assert.Zero(t, d.EffectiveProgress(e, 120))
}
