package stats

import (
	"errors"
	"fmt"
	"io"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/store"
)

var (
	// ErrNoWeeks is returned when the store holds no weeks.
	ErrNoWeeks = errors.New("no weeks found")
	// ErrWeekNotFound is returned for an index outside the store.
	ErrWeekNotFound = errors.New("week not found")
)

// WeekSummary is one point of the weekly history.
type WeekSummary struct {
	Index     int             `json:"index" yaml:"index"`
	Label     string          `json:"label" yaml:"label"`
	Reps      int             `json:"reps" yaml:"reps"`
	Aggregate model.Aggregate `json:"aggregate" yaml:"aggregate"`
}

// Report contains precomputed data for one week's rendering.
type Report struct {
	Index       int              `json:"index" yaml:"index"`
	Label       string           `json:"label" yaml:"label"`
	Aggregate   model.Aggregate  `json:"aggregate" yaml:"aggregate"`
	Trend       *model.Trend     `json:"trend" yaml:"trend"`
	Progress    Progress         `json:"progress" yaml:"progress"`
	Leaderboard []model.Rep      `json:"leaderboard" yaml:"leaderboard"`
	Week        model.Week       `json:"week" yaml:"week"`
	History     []WeekSummary    `json:"history" yaml:"history"`
	Standings   []model.Standing `json:"standings" yaml:"standings"`
}

// Summaries lists every stored week with its aggregate.
func Summaries(st *store.Store) []WeekSummary {
	var out []WeekSummary
	for i, w := range st.All() {
		out = append(out, summarizeWeek(i, w))
	}
	return out
}

func summarizeWeek(index int, w model.Week) WeekSummary {
	return WeekSummary{
		Index:     index,
		Label:     WeekLabel(index),
		Reps:      len(w.Reps),
		Aggregate: Summarize(w),
	}
}

// BuildReport prepares the report for the week at index, or for the current
// week when index is negative.
func BuildReport(st *store.Store, index int, targets model.Targets) (Report, error) {
	weeks := st.Weeks()
	if len(weeks) == 0 {
		return Report{}, ErrNoWeeks
	}
	if index < 0 {
		index = st.CurrentIndex()
	}
	if index < 0 || index >= len(weeks) {
		return Report{}, fmt.Errorf("%w: %d", ErrWeekNotFound, index+1)
	}
	return buildReport(weeks, index, targets), nil
}

func buildReport(weeks []model.Week, index int, targets model.Targets) Report {
	week := weeks[index]
	agg := Summarize(week)
	r := Report{
		Index:       index,
		Label:       WeekLabel(index),
		Aggregate:   agg,
		Progress:    ProgressToward(agg, targets),
		Leaderboard: Leaderboard(week),
		Week:        week,
		Standings:   MonthlyStandings(weeks),
	}
	if index > 0 {
		trend := CompareWeeks(week, weeks[index-1])
		r.Trend = &trend
	}
	for i, w := range weeks {
		r.History = append(r.History, summarizeWeek(i, w))
	}
	return r
}

// TrendText describes a delta against the previous week.
func TrendText(d *model.Delta) string {
	if d == nil {
		return "first week"
	}
	return FormatDelta(*d) + " vs last week"
}

// RenderText prints a plain-text report: stat cards, month summary,
// leaderboard and charts.
func RenderText(w io.Writer, r Report, width int) error {
	if width <= 0 {
		width = terminalWidth()
	}
	var setsTrend, showsTrend *model.Delta
	if r.Trend != nil {
		setsTrend, showsTrend = &r.Trend.Sets, &r.Trend.Shows
	}
	agg := r.Aggregate
	lines := []string{
		r.Label,
		"",
		fmt.Sprintf("Weekly Sets   %-8d %-18s %3.0f%% of target", agg.WeeklySets, TrendText(setsTrend), r.Progress.Sets*100),
		fmt.Sprintf("Weekly Shows  %-8d %-18s %3.0f%% of target", agg.WeeklyShows, TrendText(showsTrend), r.Progress.Shows*100),
		fmt.Sprintf("Show Rate     %-8s %-18s %3.0f%% of target", fmt.Sprintf("%d%%", agg.ShowRate), "", r.Progress.Rate*100),
		fmt.Sprintf("Closed Won    %-8s %-18s %3.0f%% of target", FormatCurrency(agg.ClosedWon), "", r.Progress.ClosedWon*100),
		"",
		MonthSummary(agg),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if err := RenderLeaderboard(w, r.Leaderboard); err != nil {
		return err
	}
	if err := RenderBars(w, "Sets by Rep", RepSetBars(r.Week), width); err != nil {
		return err
	}
	if len(r.History) > 1 {
		sets, shows, labels := HistorySeries(r.History)
		err := PlotSeries(w, "Weekly Trend", []Series{
			{Name: "Sets", Values: sets},
			{Name: "Shows", Values: shows},
		}, labels, PlotWidthFor(width), defaultPlotHeight)
		if err != nil {
			return err
		}
	}
	return RenderBars(w, "Monthly Standings", StandingBars(r.Standings), width)
}

// MonthSummary is the one-line monthly recap.
func MonthSummary(agg model.Aggregate) string {
	return fmt.Sprintf("Month: %d sets · %d shows · %s closed won", agg.MonthlySets, agg.MonthlyShows, FormatCurrency(agg.ClosedWon))
}

// HistorySeries splits the history into chart series and x labels.
func HistorySeries(history []WeekSummary) (sets, shows []float64, labels []string) {
	for _, h := range history {
		sets = append(sets, float64(h.Aggregate.WeeklySets))
		shows = append(shows, float64(h.Aggregate.WeeklyShows))
		labels = append(labels, h.Label)
	}
	return sets, shows, labels
}
