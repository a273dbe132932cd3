package tracking

import (
	"github.com/medialog/medialog-backend/internal/mediatype"
	"github.com/medialog/medialog-backend/internal/types"
)

// StatusDelta carries signed per-status count adjustments.
type StatusDelta struct {
	Planned   int64 `json:"planned"`
	Current   int64 `json:"current"`
	Completed int64 `json:"completed"`
	Paused    int64 `json:"paused"`
	Dropped   int64 `json:"dropped"`
	Repeating int64 `json:"repeating"`
}

func (d *StatusDelta) Add(s types.Status, v int64) {
	switch s {
	case types.StatusPlanned:
		d.Planned += v
	case types.StatusCurrent:
		d.Current += v
	case types.StatusCompleted:
		d.Completed += v
	case types.StatusPaused:
		d.Paused += v
	case types.StatusDropped:
		d.Dropped += v
	case types.StatusRepeating:
		d.Repeating += v
	}
}

// Total must stay equal to the TotalEntries delta of the same mutation.
func (d StatusDelta) Total() int64 {
	return d.Planned + d.Current + d.Completed + d.Paused + d.Dropped + d.Repeating
}

// StatsDelta is the signed adjustment one mutation applies to a user's
// aggregate counters. Individual fields may go negative; only the running
// aggregate itself is required to stay non-negative, which holds by
// construction as long as every mutation flows through ComputeDelta.
type StatsDelta struct {
	TotalEntries     int64       `json:"total_entries"`
	Status           StatusDelta `json:"status"`
	TimeSpentMinutes int64       `json:"time_spent_minutes"`
	UnitsConsumed    int64       `json:"units_consumed"`
	Rated            int64       `json:"rated"`
	Commented        int64       `json:"commented"`
	Favorited        int64       `json:"favorited"`
	Redo             int64       `json:"redo"`
}

func (d StatsDelta) IsZero() bool {
	return d == StatsDelta{}
}

// ComputeDelta derives the aggregate adjustment for one mutation from the
// entry state before (nil = did not exist) and after (nil = removed).
// It is pure and never rejects input; validating the requested change is
// the orchestrator's job.
func ComputeDelta(oldE, newE *types.UserEntry, unitMax int, desc mediatype.Descriptor) StatsDelta {
	var d StatsDelta

	if oldE != nil {
		d.TotalEntries--
		d.Status.Add(oldE.Status, -1)
	}
	if newE != nil {
		d.TotalEntries++
		d.Status.Add(newE.Status, 1)
	}

	oldUnits := desc.EffectiveProgress(oldE, unitMax)
	newUnits := desc.EffectiveProgress(newE, unitMax)
	d.TimeSpentMinutes = desc.Minutes(newUnits) - desc.Minutes(oldUnits)
	d.UnitsConsumed = int64(newUnits) - int64(oldUnits)

	d.Rated = boolCount(isRated(newE)) - boolCount(isRated(oldE))
	d.Commented = boolCount(isCommented(newE)) - boolCount(isCommented(oldE))
	d.Favorited = boolCount(isFavorited(newE)) - boolCount(isFavorited(oldE))
	d.Redo = int64(desc.EffectiveRedo(newE)) - int64(desc.EffectiveRedo(oldE))

	return d
}

// ApplyToStats folds a delta into an in-memory stats row. The datastore
// path applies the same adjustment as relative SQL increments; this is for
// recomputation and invariant checks.
func ApplyToStats(s *types.AggregateStats, d StatsDelta) {
	if s == nil {
		return
	}
	s.TotalEntries += d.TotalEntries
	s.PlannedCount += d.Status.Planned
	s.CurrentCount += d.Status.Current
	s.CompletedCount += d.Status.Completed
	s.PausedCount += d.Status.Paused
	s.DroppedCount += d.Status.Dropped
	s.RepeatingCount += d.Status.Repeating
	s.TimeSpentMinutes += d.TimeSpentMinutes
	s.UnitsConsumed += d.UnitsConsumed
	s.RatedCount += d.Rated
	s.CommentedCount += d.Commented
	s.FavoriteCount += d.Favorited
	s.RedoCount += d.Redo
}

func isRated(e *types.UserEntry) bool     { return e != nil && e.Rating > 0 }
func isCommented(e *types.UserEntry) bool { return e != nil && e.Comment != "" }
func isFavorited(e *types.UserEntry) bool { return e != nil && e.Favorite }

func boolCount(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
