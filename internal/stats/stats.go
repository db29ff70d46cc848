// Package stats contains metric derivation and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/weekboard/internal/model"
)

const sparkChars = " .:-=+*#%@"

// ShowRate returns round(shows/sets*100), 0 when there are no sets and at most 100.
func ShowRate(shows, sets int) int {
	if sets <= 0 || shows <= 0 {
		return 0
	}
	rate := (shows*200 + sets) / (sets * 2)
	if rate > 100 {
		return 100
	}
	return rate
}

// Summarize computes the section figures. Each field uses the explicit totals
// row when it carries a non-zero value and falls back to the sum over reps.
func Summarize(week model.Week) model.Aggregate {
	var sum model.Aggregate
	sum.ClosedWon = decimal.Zero
	for _, r := range week.Reps {
		sum.WeeklySets += r.WeeklySets
		sum.WeeklyShows += r.WeeklyShows
		sum.MonthlySets += r.MonthlySets
		sum.MonthlyShows += r.MonthlyShows
		sum.ClosedWon = sum.ClosedWon.Add(r.ClosedWon)
	}
	agg := sum
	if t := week.Totals; t != nil {
		agg.WeeklySets = preferInt(t.WeeklySets, sum.WeeklySets)
		agg.WeeklyShows = preferInt(t.WeeklyShows, sum.WeeklyShows)
		agg.MonthlySets = preferInt(t.MonthlySets, sum.MonthlySets)
		agg.MonthlyShows = preferInt(t.MonthlyShows, sum.MonthlyShows)
		if !t.ClosedWon.IsZero() {
			agg.ClosedWon = t.ClosedWon
		}
	}
	agg.ShowRate = ShowRate(agg.WeeklyShows, agg.WeeklySets)
	return agg
}

func preferInt(explicit, fallback int) int {
	if explicit != 0 {
		return explicit
	}
	return fallback
}

// Classify maps a delta to its direction.
func Classify(delta int) model.Direction {
	switch {
	case delta > 0:
		return model.Up
	case delta < 0:
		return model.Down
	default:
		return model.Neutral
	}
}

// CompareWeeks computes the sets and shows trend of current against previous.
func CompareWeeks(current, previous model.Week) model.Trend {
	cur := Summarize(current)
	prev := Summarize(previous)
	return model.Trend{
		Sets:  newDelta(cur.WeeklySets - prev.WeeklySets),
		Shows: newDelta(cur.WeeklyShows - prev.WeeklyShows),
	}
}

func newDelta(v int) model.Delta {
	return model.Delta{Value: v, Direction: Classify(v)}
}

// Progress is the fraction of each target reached, clamped to [0,1].
type Progress struct {
	Sets      float64 `json:"sets" yaml:"sets"`
	Shows     float64 `json:"shows" yaml:"shows"`
	Rate      float64 `json:"rate" yaml:"rate"`
	ClosedWon float64 `json:"closedWon" yaml:"closedWon"`
}

// ProgressToward measures an aggregate against targets.
func ProgressToward(agg model.Aggregate, targets model.Targets) Progress {
	closed := 0.0
	if targets.ClosedWon.IsPositive() {
		closed, _ = agg.ClosedWon.Div(targets.ClosedWon).Float64()
	}
	return Progress{
		Sets:      ratio(float64(agg.WeeklySets), float64(targets.WeeklySets)),
		Shows:     ratio(float64(agg.WeeklyShows), float64(targets.WeeklyShows)),
		Rate:      ratio(float64(agg.ShowRate), float64(targets.ShowRate)),
		ClosedWon: clamp01(closed),
	}
}

func ratio(v, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return clamp01(v / target)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := seriesMinMaxSingle(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
