package mediatype

import (
	"fmt"
	"math"

	"github.com/medialog/medialog-backend/internal/types"
)

// Descriptor is the static per-catalog contract the whole mutation
// pipeline is parameterized by. Downstream components read it and contain
// no catalog-specific branching of their own.
type Descriptor struct {
	MediaType types.MediaType

	// Statuses is the valid status vocabulary for the catalog.
	Statuses []types.Status
	// CompletedStatuses is the subset that counts as finished. Repeating
	// entries have already been consumed once, so they count too.
	CompletedStatuses []types.Status

	// UnitName names the progress unit: episodes, chapters, pages, minutes.
	UnitName string
	// MinutesPerUnit converts progress units to time spent.
	MinutesPerUnit float64
	// Bounded marks catalogs whose entries carry a hard unit maximum
	// (episode/chapter/page counts). Game playtime is open-ended.
	Bounded bool

	// ResetOnPlanned zeroes progress and the redo counter when an entry
	// moves back to the plan status.
	ResetOnPlanned bool
	// ClampOnCompleted snaps progress to the entry maximum when an entry
	// is marked finished, crediting full time regardless of the last
	// recorded unit.
	ClampOnCompleted bool
	// SupportsRedo enables the re-consumption counter.
	SupportsRedo bool
}

var defaultStatuses = []types.Status{
	types.StatusPlanned,
	types.StatusCurrent,
	types.StatusCompleted,
	types.StatusPaused,
	types.StatusDropped,
	types.StatusRepeating,
}

var finishedStatuses = []types.Status{
	types.StatusCompleted,
	types.StatusRepeating,
}

var registry = map[types.MediaType]Descriptor{
	types.MediaTypeMovie: {
		MediaType:         types.MediaTypeMovie,
		Statuses:          defaultStatuses,
		CompletedStatuses: finishedStatuses,
		UnitName:          "minutes",
		MinutesPerUnit:    1,
		Bounded:           true,
		ResetOnPlanned:    true,
		ClampOnCompleted:  true,
		SupportsRedo:      true,
	},
	types.MediaTypeTV: {
		MediaType:         types.MediaTypeTV,
		Statuses:          defaultStatuses,
		CompletedStatuses: finishedStatuses,
		UnitName:          "episodes",
		MinutesPerUnit:    45,
		Bounded:           true,
		ResetOnPlanned:    true,
		ClampOnCompleted:  true,
		SupportsRedo:      true,
	},
	types.MediaTypeAnime: {
		MediaType:         types.MediaTypeAnime,
		Statuses:          defaultStatuses,
		CompletedStatuses: finishedStatuses,
		UnitName:          "episodes",
		MinutesPerUnit:    24,
		Bounded:           true,
		ResetOnPlanned:    true,
		ClampOnCompleted:  true,
		SupportsRedo:      true,
	},
	types.MediaTypeManga: {
		MediaType:         types.MediaTypeManga,
		Statuses:          defaultStatuses,
		CompletedStatuses: finishedStatuses,
		UnitName:          "chapters",
		MinutesPerUnit:    8,
		Bounded:           true,
		ResetOnPlanned:    true,
		ClampOnCompleted:  true,
		SupportsRedo:      true,
	},
	types.MediaTypeBook: {
		MediaType:         types.MediaTypeBook,
		Statuses:          defaultStatuses,
		CompletedStatuses: finishedStatuses,
		UnitName:          "pages",
		MinutesPerUnit:    2,
		Bounded:           true,
		ResetOnPlanned:    true,
		ClampOnCompleted:  true,
		SupportsRedo:      true,
	},
	types.MediaTypeGame: {
		MediaType:         types.MediaTypeGame,
		Statuses:          defaultStatuses,
		CompletedStatuses: finishedStatuses,
		UnitName:          "minutes",
		MinutesPerUnit:    1,
		Bounded:           false,
		ResetOnPlanned:    true,
		ClampOnCompleted:  false,
		SupportsRedo:      true,
	},
}

// For returns the descriptor for a catalog.
func For(mt types.MediaType) (Descriptor, error) {
	d, ok := registry[mt]
	if !ok {
		return Descriptor{}, fmt.Errorf("no descriptor for media type %q", mt)
	}
	return d, nil
}

func (d Descriptor) ValidStatus(s types.Status) bool {
	for _, v := range d.Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (d Descriptor) IsCompleted(s types.Status) bool {
	for _, v := range d.CompletedStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Minutes converts a unit count to time spent for this catalog.
func (d Descriptor) Minutes(units int) int64 {
	return int64(math.Round(float64(units) * d.MinutesPerUnit))
}

// EffectiveProgress is the progress value an entry contributes after the
// reset/clamp rules, without mutating the entry. unitMax 0 means unknown.
func (d Descriptor) EffectiveProgress(e *types.UserEntry, unitMax int) int {
	if e == nil {
		return 0
	}
	p := e.Progress
	if p < 0 {
		p = 0
	}
	if d.ResetOnPlanned && e.Status == types.StatusPlanned {
		return 0
	}
	if d.Bounded && unitMax > 0 {
		if d.ClampOnCompleted && d.IsCompleted(e.Status) {
			return unitMax
		}
		if p > unitMax {
			return unitMax
		}
	}
	return p
}

// EffectiveRedo is the redo count an entry contributes after reset rules.
func (d Descriptor) EffectiveRedo(e *types.UserEntry) int {
	if e == nil || !d.SupportsRedo {
		return 0
	}
	if d.ResetOnPlanned && e.Status == types.StatusPlanned {
		return 0
	}
	if e.RedoCount < 0 {
		return 0
	}
	return e.RedoCount
}

// Normalize rewrites the entry in place to the state that will be
// persisted: plan resets progress and redo, completion clamps progress to
// the entry maximum. The delta calculator applies the same rules through
// EffectiveProgress, so normalized and raw inputs yield identical deltas.
func (d Descriptor) Normalize(e *types.UserEntry, unitMax int) {
	if e == nil {
		return
	}
	e.Progress = d.EffectiveProgress(e, unitMax)
	e.RedoCount = d.EffectiveRedo(e)
}
