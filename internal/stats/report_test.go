package stats

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/store"
)

func testTargets() model.Targets {
	return model.Targets{WeeklySets: 40, WeeklyShows: 25, ShowRate: 100, ClosedWon: decimal.NewFromInt(100000)}
}

func testStore() *store.Store {
	st := store.New()
	st.Rebuild([]model.Week{
		{Reps: []model.Rep{
			{Name: "Ann Lee", WeeklySets: 20, WeeklyShows: 8, MonthlySets: 20, ShowRate: 40},
			{Name: "Bob Stone", WeeklySets: 10, WeeklyShows: 2, MonthlySets: 10, ShowRate: 20},
		}},
		{Reps: []model.Rep{
			{Name: "Ann Lee", WeeklySets: 10, WeeklyShows: 6, MonthlySets: 30, ShowRate: 60, ClosedWon: decimal.NewFromInt(45000)},
			{Name: "Bob Stone", WeeklySets: 15, WeeklyShows: 4, MonthlySets: 25, ShowRate: 27},
		}},
	})
	return st
}

func TestBuildReport(t *testing.T) {
	st := testStore()

	report, err := BuildReport(st, -1, testTargets())
	require.NoError(t, err)
	require.Equal(t, 1, report.Index)
	require.Equal(t, "Week 2", report.Label)
	require.Equal(t, 25, report.Aggregate.WeeklySets)
	require.NotNil(t, report.Trend)
	require.Equal(t, model.Delta{Value: -5, Direction: model.Down}, report.Trend.Sets)
	require.Equal(t, "Bob Stone", report.Leaderboard[0].Name)
	require.Len(t, report.History, 2)
	require.Equal(t, "Ann Lee", report.Standings[0].Name)

	first, err := BuildReport(st, 0, testTargets())
	require.NoError(t, err)
	require.Nil(t, first.Trend)

	_, err = BuildReport(st, 2, testTargets())
	require.True(t, errors.Is(err, ErrWeekNotFound))

	_, err = BuildReport(store.New(), -1, testTargets())
	require.ErrorIs(t, err, ErrNoWeeks)
}

func TestSummaries(t *testing.T) {
	got := Summaries(testStore())
	require.Len(t, got, 2)
	require.Equal(t, "Week 1", got[0].Label)
	require.Equal(t, 30, got[0].Aggregate.WeeklySets)
	require.Equal(t, 2, got[1].Reps)
}

func TestRenderText(t *testing.T) {
	report, err := BuildReport(testStore(), -1, testTargets())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, report, 80))
	out := buf.String()
	for _, want := range []string{
		"Week 2",
		"-5 vs last week",
		"Month: 55 sets",
		"$45K closed won",
		"Leaderboard",
		"Sets by Rep",
		"Weekly Trend",
		"Monthly Standings",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMarkdown(t *testing.T) {
	report, err := BuildReport(testStore(), 0, testTargets())
	require.NoError(t, err)

	doc := Markdown(report)
	require.True(t, strings.HasPrefix(doc, "# Week 1\n"))
	require.Contains(t, doc, "| Weekly Sets | 30 | first week | 75% |")
	require.Contains(t, doc, "| 1 | Ann Lee | 20 | 8 | ◐ 40% | 20 |")
	require.Contains(t, doc, "1. Ann Lee: 30 sets")

	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, report, 80, false))
	require.Equal(t, doc, buf.String())
}
