package sheet

import (
	"strings"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/stats"
)

// SkipReason explains why a row did not become a rep.
type SkipReason string

// Skip reasons reported by ExtractDetailed.
const (
	SkipOutsideSection SkipReason = "outside_section"
	SkipBlank          SkipReason = "blank"
	SkipInactive       SkipReason = "inactive"
	SkipNoActivity     SkipReason = "no_activity"
	SkipDuplicate      SkipReason = "duplicate"
)

const (
	headerName    = "Rep"
	headerSets    = "Weekly Sets"
	totalsName    = "Totals"
	inactiveMark  = "Deactivated"
	placeholder   = "X"
	blankMarker   = ","
	currencyField = 5
)

// Result is the outcome of a full extraction pass.
type Result struct {
	Weeks   []model.Week
	Skipped map[SkipReason]int
}

// SkippedTotal returns the number of rows that did not become reps.
func (r Result) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// Reps returns the number of reps across all weeks.
func (r Result) Reps() int {
	total := 0
	for _, w := range r.Weeks {
		total += len(w.Reps)
	}
	return total
}

type openSection struct {
	week  model.Week
	names map[string]struct{}
}

// Extract groups rows into weeks. See ExtractDetailed.
func Extract(rows []Row) []model.Week {
	return ExtractDetailed(rows).Weeks
}

// ExtractDetailed walks rows once. A "Rep"/"Weekly Sets" header opens a new
// section and closes the previous one; sections without reps are dropped.
func ExtractDetailed(rows []Row) Result {
	res := Result{Skipped: map[SkipReason]int{}}
	var open *openSection

	flush := func() {
		if open != nil && len(open.week.Reps) > 0 {
			res.Weeks = append(res.Weeks, open.week)
		}
	}

	for _, row := range rows {
		name := row.Field(0)
		if isHeader(row) {
			flush()
			open = &openSection{names: map[string]struct{}{}}
			continue
		}
		if open == nil {
			res.Skipped[SkipOutsideSection]++
			continue
		}
		if name == "" || name == blankMarker {
			res.Skipped[SkipBlank]++
			continue
		}
		if name == totalsName {
			open.week.Totals = parseTotals(row)
			continue
		}
		if strings.Contains(name, inactiveMark) || row.Field(1) == placeholder || row.Field(1) == "" {
			res.Skipped[SkipInactive]++
			continue
		}
		rep, ok := parseRep(row)
		if !ok {
			res.Skipped[SkipNoActivity]++
			continue
		}
		if _, dup := open.names[rep.Name]; dup {
			res.Skipped[SkipDuplicate]++
			continue
		}
		open.names[rep.Name] = struct{}{}
		open.week.Reps = append(open.week.Reps, rep)
	}
	flush()
	return res
}

func isHeader(row Row) bool {
	return row.Field(0) == headerName && row.Field(1) == headerSets
}

func parseTotals(row Row) *model.Totals {
	return &model.Totals{
		WeeklySets:   ParseCount(row.Field(1)),
		WeeklyShows:  ParseCount(row.Field(2)),
		MonthlySets:  ParseCount(row.Field(3)),
		MonthlyShows: ParseCount(row.Field(4)),
		ClosedWon:    ParseCurrency(row.Field(currencyField)),
	}
}

func parseRep(row Row) (model.Rep, bool) {
	rep := model.Rep{
		Name:         strings.TrimSpace(row.Field(0)),
		WeeklySets:   ParseCount(row.Field(1)),
		WeeklyShows:  ParseCount(row.Field(2)),
		MonthlySets:  ParseCount(row.Field(3)),
		MonthlyShows: ParseCount(row.Field(4)),
		ClosedWon:    ParseCurrency(row.Field(currencyField)),
	}
	if rep.WeeklySets == 0 && rep.WeeklyShows == 0 && rep.MonthlySets == 0 {
		return model.Rep{}, false
	}
	rep.ShowRate = stats.ShowRate(rep.WeeklyShows, rep.WeeklySets)
	return rep, true
}
