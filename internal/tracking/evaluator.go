package tracking

import (
	"github.com/medialog/medialog-backend/internal/types"
)

// TierProgress is the outcome of re-evaluating one achievement for one
// user. HighestIndex is -1 while no tier is completed; completed tiers are
// always the prefix {0..HighestIndex} of the ordered tier list.
type TierProgress struct {
	HighestIndex   int
	Percent        float64
	NewlyCompleted []int
}

// EvaluateTiers scans the ordered tier list against the current tracked
// count. prevHighest is the previously recorded highest completed index;
// the result never moves below it, so completed tiers stay completed even
// when the metric later drops (entries removed from the list).
func EvaluateTiers(tiers []*types.AchievementTier, count int64, prevHighest int) TierProgress {
	if prevHighest < -1 {
		prevHighest = -1
	}
	if prevHighest >= len(tiers) {
		prevHighest = len(tiers) - 1
	}

	crossed := -1
	for i, tier := range tiers {
		if tier == nil || tier.Threshold > count {
			break
		}
		crossed = i
	}

	out := TierProgress{HighestIndex: prevHighest}
	if crossed > prevHighest {
		for i := prevHighest + 1; i <= crossed; i++ {
			out.NewlyCompleted = append(out.NewlyCompleted, i)
		}
		out.HighestIndex = crossed
	}

	next := out.HighestIndex + 1
	if next >= len(tiers) {
		out.Percent = 100
		return out
	}
	threshold := tiers[next].Threshold
	if threshold <= 0 {
		out.Percent = 100
		return out
	}
	pct := float64(count) / float64(threshold) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	out.Percent = pct
	return out
}
