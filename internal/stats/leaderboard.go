package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/weekboard/internal/model"
)

// Rate classes used to color show rates.
const (
	RateGood    = "good"
	RateWarning = "warning"
	RateLow     = "low"
)

// Leaderboard returns the week's reps ordered by weekly sets, highest first.
// Ties keep sheet order. The week itself is not modified.
func Leaderboard(week model.Week) []model.Rep {
	out := append([]model.Rep(nil), week.Reps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WeeklySets > out[j].WeeklySets
	})
	return out
}

// RateClass buckets a show rate.
func RateClass(rate int) string {
	switch {
	case rate >= 50:
		return RateGood
	case rate >= 30:
		return RateWarning
	default:
		return RateLow
	}
}

// MonthlyStandings lists every rep seen in any week with their monthly sets
// from the latest week (zero if they are absent from it).
func MonthlyStandings(weeks []model.Week) []model.Standing {
	if len(weeks) == 0 {
		return nil
	}
	latest := map[string]int{}
	for _, r := range weeks[len(weeks)-1].Reps {
		latest[r.Name] = r.MonthlySets
	}
	seen := map[string]struct{}{}
	var out []model.Standing
	for _, w := range weeks {
		for _, r := range w.Reps {
			if _, ok := seen[r.Name]; ok {
				continue
			}
			seen[r.Name] = struct{}{}
			out = append(out, model.Standing{Name: r.Name, MonthlySets: latest[r.Name]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MonthlySets == out[j].MonthlySets {
			return out[i].Name < out[j].Name
		}
		return out[i].MonthlySets > out[j].MonthlySets
	})
	return out
}

// FirstName is the chart label for a rep.
func FirstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
