package tracking

import (
	"reflect"
	"testing"

	"github.com/medialog/medialog-backend/internal/types"
)

func tiersAt(thresholds ...int64) []*types.AchievementTier {
	out := make([]*types.AchievementTier, 0, len(thresholds))
	for i, th := range thresholds {
		out = append(out, &types.AchievementTier{Rank: i, Threshold: th})
	}
	return out
}

func TestEvaluateTiers(t *testing.T) {
	cases := []struct {
		name        string
		thresholds  []int64
		count       int64
		prevHighest int
		wantIndex   int
		wantPercent float64
		wantNew     []int
	}{
		{
			name:        "untouched",
			thresholds:  []int64{10, 50},
			count:       0,
			prevHighest: -1,
			wantIndex:   -1,
			wantPercent: 0,
		},
		{
			name:        "partial progress toward first tier",
			thresholds:  []int64{10, 50},
			count:       5,
			prevHighest: -1,
			wantIndex:   -1,
			wantPercent: 50,
		},
		{
			name:        "first tier crossed exactly",
			thresholds:  []int64{10, 50},
			count:       10,
			prevHighest: -1,
			wantIndex:   0,
			wantPercent: 20,
			wantNew:     []int{0},
		},
		{
			name:        "metric jump crosses one tier, next at 60 percent",
			thresholds:  []int64{50, 100},
			count:       60,
			prevHighest: -1,
			wantIndex:   0,
			wantPercent: 60,
			wantNew:     []int{0},
		},
		{
			name:        "metric jump crosses two tiers at once",
			thresholds:  []int64{10, 50, 100},
			count:       70,
			prevHighest: -1,
			wantIndex:   1,
			wantPercent: 70,
			wantNew:     []int{0, 1},
		},
		{
			name:        "all tiers completed",
			thresholds:  []int64{10, 50},
			count:       80,
			prevHighest: 0,
			wantIndex:   1,
			wantPercent: 100,
			wantNew:     []int{1},
		},
		{
			name:        "completed tiers survive a metric drop",
			thresholds:  []int64{10, 50},
			count:       3,
			prevHighest: 0,
			wantIndex:   0,
			wantPercent: 6,
		},
		{
			name:        "no re-completion of already held tiers",
			thresholds:  []int64{10, 50},
			count:       20,
			prevHighest: 0,
			wantIndex:   0,
			wantPercent: 40,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateTiers(tiersAt(tc.thresholds...), tc.count, tc.prevHighest)
			if got.HighestIndex != tc.wantIndex {
				t.Fatalf("HighestIndex=%d, want %d", got.HighestIndex, tc.wantIndex)
			}
			if got.Percent != tc.wantPercent {
				t.Fatalf("Percent=%v, want %v", got.Percent, tc.wantPercent)
			}
			if !reflect.DeepEqual(got.NewlyCompleted, tc.wantNew) {
				t.Fatalf("NewlyCompleted=%v, want %v", got.NewlyCompleted, tc.wantNew)
			}
		})
	}
}

func TestEvaluateTiersPrefixInvariant(t *testing.T) {
	// Replaying arbitrary count sequences must keep completed tiers a
	// contiguous prefix and never move the highest index backwards.
	tiers := tiersAt(5, 20, 50, 100)
	counts := []int64{0, 3, 5, 4, 30, 10, 120, 0}

	highest := -1
	for _, c := range counts {
		got := EvaluateTiers(tiers, c, highest)
		if got.HighestIndex < highest {
			t.Fatalf("highest index moved backwards: %d -> %d at count %d", highest, got.HighestIndex, c)
		}
		for i, rank := range got.NewlyCompleted {
			if rank != highest+1+i {
				t.Fatalf("newly completed %v is not the next prefix after %d", got.NewlyCompleted, highest)
			}
		}
		highest = got.HighestIndex
	}
	if highest != 3 {
		t.Fatalf("final highest=%d, want 3", highest)
	}
}

func TestEvaluateTiersUnreachableFirstTier(t *testing.T) {
	// A catalog smaller than tier one's threshold just stays in progress;
	// there is no special-casing of impossible tiers.
	got := EvaluateTiers(tiersAt(500), 0, -1)
	if got.HighestIndex != -1 || got.Percent != 0 || got.NewlyCompleted != nil {
		t.Fatalf("got %+v, want untouched at 0%%", got)
	}
}
