package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders the report as a markdown document.
func Markdown(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Label)

	setsTrend, showsTrend := TrendText(nil), TrendText(nil)
	if r.Trend != nil {
		setsTrend = TrendText(&r.Trend.Sets)
		showsTrend = TrendText(&r.Trend.Shows)
	}
	agg := r.Aggregate
	b.WriteString("| Metric | Value | Trend | Target |\n|---|---:|---|---:|\n")
	fmt.Fprintf(&b, "| Weekly Sets | %d | %s | %.0f%% |\n", agg.WeeklySets, setsTrend, r.Progress.Sets*100)
	fmt.Fprintf(&b, "| Weekly Shows | %d | %s | %.0f%% |\n", agg.WeeklyShows, showsTrend, r.Progress.Shows*100)
	fmt.Fprintf(&b, "| Show Rate | %d%% |  | %.0f%% |\n", agg.ShowRate, r.Progress.Rate*100)
	fmt.Fprintf(&b, "| Closed Won | %s |  | %.0f%% |\n\n", FormatCurrency(agg.ClosedWon), r.Progress.ClosedWon*100)
	fmt.Fprintf(&b, "%s\n\n", MonthSummary(agg))

	b.WriteString("## Leaderboard\n\n")
	if len(r.Leaderboard) == 0 {
		b.WriteString("No reps found.\n\n")
	} else {
		b.WriteString("| " + strings.Join(LeaderboardHeaders, " | ") + " |\n")
		b.WriteString("|---:|---|---:|---:|---:|---:|\n")
		for _, row := range LeaderboardRows(r.Leaderboard) {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		b.WriteString("\n")
	}

	if len(r.Standings) > 0 {
		b.WriteString("## Monthly Standings\n\n")
		for i, s := range r.Standings {
			fmt.Fprintf(&b, "%d. %s: %d sets\n", i+1, s.Name, s.MonthlySets)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkdown writes the markdown report, styled for a terminal when
// styled is true.
func RenderMarkdown(w io.Writer, r Report, width int, styled bool) error {
	doc := Markdown(r)
	if styled {
		if width <= 0 {
			width = terminalWidth()
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		doc, err = renderer.Render(doc)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
	}
	_, err := io.WriteString(w, doc)
	return err
}
