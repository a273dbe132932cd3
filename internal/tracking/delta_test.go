package tracking

import (
	"testing"

	"github.com/medialog/medialog-backend/internal/mediatype"
	"github.com/medialog/medialog-backend/internal/types"
)

func mustDescriptor(t *testing.T, mt types.MediaType) mediatype.Descriptor {
	t.Helper()
	d, err := mediatype.For(mt)
	if err != nil {
		t.Fatalf("descriptor for %s: %v", mt, err)
	}
	return d
}

func TestComputeDeltaAdd(t *testing.T) {
	desc := mustDescriptor(t, types.MediaTypeAnime)
	newE := &types.UserEntry{Status: types.StatusCurrent, Progress: 5}

	d := ComputeDelta(nil, newE, 24, desc)

	if d.TotalEntries != 1 {
		t.Fatalf("TotalEntries=%d, want 1", d.TotalEntries)
	}
	if d.Status.Current != 1 || d.Status.Total() != 1 {
		t.Fatalf("status delta %+v, want current+1 only", d.Status)
	}
	if d.TimeSpentMinutes != 5*24 {
		t.Fatalf("TimeSpentMinutes=%d, want %d", d.TimeSpentMinutes, 5*24)
	}
	if d.UnitsConsumed != 5 {
		t.Fatalf("UnitsConsumed=%d, want 5", d.UnitsConsumed)
	}
}

func TestComputeDeltaCompletionClampsToMax(t *testing.T) {
	// 24-episode entry at 5 episodes, marked completed: full time is
	// credited regardless of the last recorded episode.
	desc := mustDescriptor(t, types.MediaTypeAnime)
	oldE := &types.UserEntry{Status: types.StatusCurrent, Progress: 5}
	newE := &types.UserEntry{Status: types.StatusCompleted, Progress: 5}

	d := ComputeDelta(oldE, newE, 24, desc)

	if d.TimeSpentMinutes != (24-5)*24 {
		t.Fatalf("TimeSpentMinutes=%d, want %d", d.TimeSpentMinutes, (24-5)*24)
	}
	if d.UnitsConsumed != 24-5 {
		t.Fatalf("UnitsConsumed=%d, want %d", d.UnitsConsumed, 24-5)
	}
	if d.Status.Current != -1 || d.Status.Completed != 1 {
		t.Fatalf("status delta %+v, want current-1 completed+1", d.Status)
	}
	if d.TotalEntries != 0 {
		t.Fatalf("TotalEntries=%d, want 0", d.TotalEntries)
	}
}

func TestComputeDeltaPlannedResets(t *testing.T) {
	// completed(progress=24, redo=2) -> planned: progress and redo reset,
	// negative deltas applied exactly once.
	desc := mustDescriptor(t, types.MediaTypeAnime)
	oldE := &types.UserEntry{Status: types.StatusCompleted, Progress: 24, RedoCount: 2}
	newE := &types.UserEntry{Status: types.StatusPlanned, Progress: 24, RedoCount: 2}

	d := ComputeDelta(oldE, newE, 24, desc)

	if d.TimeSpentMinutes != -24*24 {
		t.Fatalf("TimeSpentMinutes=%d, want %d", d.TimeSpentMinutes, -24*24)
	}
	if d.UnitsConsumed != -24 {
		t.Fatalf("UnitsConsumed=%d, want -24", d.UnitsConsumed)
	}
	if d.Redo != -2 {
		t.Fatalf("Redo=%d, want -2", d.Redo)
	}
	if d.Status.Completed != -1 || d.Status.Planned != 1 {
		t.Fatalf("status delta %+v, want completed-1 planned+1", d.Status)
	}
}

func TestComputeDeltaRemoveNegatesAdd(t *testing.T) {
	desc := mustDescriptor(t, types.MediaTypeBook)
	entry := &types.UserEntry{
		Status:    types.StatusCurrent,
		Progress:  120,
		Rating:    8,
		Comment:   "slow burn",
		Favorite:  true,
		RedoCount: 1,
	}

	add := ComputeDelta(nil, entry, 340, desc)
	remove := ComputeDelta(entry, nil, 340, desc)

	sum := StatsDelta{
		TotalEntries: add.TotalEntries + remove.TotalEntries,
		Status: StatusDelta{
			Planned:   add.Status.Planned + remove.Status.Planned,
			Current:   add.Status.Current + remove.Status.Current,
			Completed: add.Status.Completed + remove.Status.Completed,
			Paused:    add.Status.Paused + remove.Status.Paused,
			Dropped:   add.Status.Dropped + remove.Status.Dropped,
			Repeating: add.Status.Repeating + remove.Status.Repeating,
		},
		TimeSpentMinutes: add.TimeSpentMinutes + remove.TimeSpentMinutes,
		UnitsConsumed:    add.UnitsConsumed + remove.UnitsConsumed,
		Rated:            add.Rated + remove.Rated,
		Commented:        add.Commented + remove.Commented,
		Favorited:        add.Favorited + remove.Favorited,
		Redo:             add.Redo + remove.Redo,
	}
	if !sum.IsZero() {
		t.Fatalf("add+remove delta %+v, want zero", sum)
	}
}

func TestComputeDeltaFlagToggles(t *testing.T) {
	desc := mustDescriptor(t, types.MediaTypeMovie)
	cases := []struct {
		name          string
		old, new      types.UserEntry
		rated         int64
		commented     int64
		favorited     int64
	}{
		{
			name:  "rate",
			old:   types.UserEntry{Status: types.StatusCompleted},
			new:   types.UserEntry{Status: types.StatusCompleted, Rating: 9},
			rated: 1,
		},
		{
			name:  "unrate",
			old:   types.UserEntry{Status: types.StatusCompleted, Rating: 9},
			new:   types.UserEntry{Status: types.StatusCompleted},
			rated: -1,
		},
		{
			name:      "comment and favorite",
			old:       types.UserEntry{Status: types.StatusCompleted},
			new:       types.UserEntry{Status: types.StatusCompleted, Comment: "rewatch soon", Favorite: true},
			commented: 1,
			favorited: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := ComputeDelta(&tc.old, &tc.new, 0, desc)
			if d.Rated != tc.rated {
				t.Fatalf("Rated=%d, want %d", d.Rated, tc.rated)
			}
			if d.Commented != tc.commented {
				t.Fatalf("Commented=%d, want %d", d.Commented, tc.commented)
			}
			if d.Favorited != tc.favorited {
				t.Fatalf("Favorited=%d, want %d", d.Favorited, tc.favorited)
			}
			if d.TotalEntries != 0 || d.Status.Total() != 0 {
				t.Fatalf("unexpected entry/status movement: %+v", d)
			}
		})
	}
}

func TestComputeDeltaUnboundedGameProgress(t *testing.T) {
	// Game playtime has no entry maximum, so completion does not clamp.
	desc := mustDescriptor(t, types.MediaTypeGame)
	oldE := &types.UserEntry{Status: types.StatusCurrent, Progress: 600}
	newE := &types.UserEntry{Status: types.StatusCompleted, Progress: 800}

	d := ComputeDelta(oldE, newE, 0, desc)

	if d.TimeSpentMinutes != 200 {
		t.Fatalf("TimeSpentMinutes=%d, want 200", d.TimeSpentMinutes)
	}
	if d.UnitsConsumed != 200 {
		t.Fatalf("UnitsConsumed=%d, want 200", d.UnitsConsumed)
	}
}
