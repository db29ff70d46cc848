package dashboard

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/stats"
)

const (
	cardInnerWidth = 24
	wideLayout     = 4 * (cardInnerWidth + 4)
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	weekStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	weekActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Underline(true)
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Width(cardInnerWidth + 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	trendStyles     = map[model.Direction]lipgloss.Style{
		model.Up:      lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		model.Down:    errorStyle,
		model.Neutral: headerStyle,
	}
)

func (m *Model) renderViewTabs() string {
	parts := make([]string, 0, len(m.views))
	for i, view := range m.views {
		if i == m.activeView {
			parts = append(parts, activeNavStyle.Render(view))
		} else {
			parts = append(parts, inactiveNavStyle.Render(view))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderViewTabs(), m.width)
	return tabs + "\n" + m.renderWeekTabs()
}

// renderWeekTabs shows a window of week labels that keeps the current week
// visible.
func (m *Model) renderWeekTabs() string {
	count := m.store.Len()
	if count == 0 {
		return headerStyle.Render("No weeks")
	}
	labels := make([]string, count)
	for i := range labels {
		labels[i] = stats.WeekLabel(i)
	}
	current := m.store.CurrentIndex()
	start, end := weekWindow(labels, current, m.width)
	parts := make([]string, 0, end-start+2)
	if start > 0 {
		parts = append(parts, headerStyle.Render("‹"))
	}
	for i := start; i < end; i++ {
		if i == current {
			parts = append(parts, weekActive.Render(labels[i]))
		} else {
			parts = append(parts, weekStyle.Render(labels[i]))
		}
	}
	if end < count {
		parts = append(parts, headerStyle.Render("›"))
	}
	return strings.Join(parts, "  ")
}

// weekWindow returns the [start, end) range of labels that fits in width
// columns, separated by two spaces, with current inside it.
func weekWindow(labels []string, current, width int) (int, int) {
	if len(labels) == 0 {
		return 0, 0
	}
	current = max(0, min(current, len(labels)-1))
	if width <= 0 {
		return 0, len(labels)
	}
	budget := width - 6
	used := runewidth.StringWidth(labels[current])
	start, end := current, current+1
	for {
		grew := false
		if end < len(labels) {
			if w := runewidth.StringWidth(labels[end]) + 2; used+w <= budget {
				used += w
				end++
				grew = true
			}
		}
		if start > 0 {
			if w := runewidth.StringWidth(labels[start-1]) + 2; used+w <= budget {
				used += w
				start--
				grew = true
			}
		}
		if !grew {
			return start, end
		}
	}
}

func (m *Model) renderHelp() string {
	help := "←/→: week  tab: view  ↑/↓: scroll  r: refresh  q: quit"
	return headerStyle.Render(truncateLine(help, m.width/2))
}

func (m *Model) renderStatus() string {
	label := m.status.Label()
	switch {
	case m.status.Refreshing():
		return headerStyle.Render("Last updated: ") + m.spinner.View() + headerStyle.Render(label)
	case label == "Error":
		return headerStyle.Render("Last updated: ") + errorStyle.Render(label)
	case label == "":
		return headerStyle.Render("Last updated: never")
	default:
		return headerStyle.Render("Last updated: " + label)
	}
}

func (m *Model) renderFooter() string {
	help := m.renderHelp()
	status := m.renderStatus()
	gap := max(1, m.width-lipgloss.Width(help)-lipgloss.Width(status))
	line := help + strings.Repeat(" ", gap) + status
	switch {
	case m.errMsg != "":
		return line + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	case m.status.LastError != "":
		return line + "\n" + errorStyle.Render(truncateLine("Refresh failed: "+m.status.LastError, m.width))
	}
	return line
}

func (m *Model) renderBody(height int) string {
	if m.activeView == viewLeaderboard && m.hasReport {
		if len(m.report.Leaderboard) == 0 {
			return headerStyle.Render("No reps found.")
		}
		return tableMutedStyle.Render(m.leaderboard.View())
	}
	vp := m.viewports[m.activeView]
	if vp.Height == 0 {
		vp.Height = height
	}
	return vp.View()
}

func renderOverview(r stats.Report, width int) string {
	lines := []string{
		cardValueStyle.Render(r.Label),
		renderCards(r, width),
		"",
		headerStyle.Render(stats.MonthSummary(r.Aggregate)),
	}
	return strings.Join(lines, "\n")
}

func renderCards(r stats.Report, width int) string {
	agg := r.Aggregate
	var setsTrend, showsTrend *model.Delta
	if r.Trend != nil {
		setsTrend, showsTrend = &r.Trend.Sets, &r.Trend.Shows
	}
	cards := []string{
		metricCard("Weekly Sets", fmt.Sprintf("%d", agg.WeeklySets), trendLine(setsTrend), r.Progress.Sets),
		metricCard("Weekly Shows", fmt.Sprintf("%d", agg.WeeklyShows), trendLine(showsTrend), r.Progress.Shows),
		metricCard("Show Rate", fmt.Sprintf("%d%%", agg.ShowRate), rateLine(agg.ShowRate), r.Progress.Rate),
		metricCard("Closed Won", stats.FormatCurrency(agg.ClosedWon), "", r.Progress.ClosedWon),
	}
	switch {
	case width >= wideLayout:
		return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	case width >= wideLayout/2:
		top := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1])
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3])
		return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	default:
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
}

func metricCard(label, value, trend string, pct float64) string {
	lines := []string{
		cardTitleStyle.Render(label),
		cardValueStyle.Render(value),
	}
	if trend == "" {
		trend = " "
	}
	lines = append(lines, trend, progressBar(pct))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func trendLine(d *model.Delta) string {
	if d == nil {
		return headerStyle.Render(stats.TrendText(nil))
	}
	style, ok := trendStyles[d.Direction]
	if !ok {
		style = headerStyle
	}
	return style.Render(stats.TrendText(d))
}

func rateLine(rate int) string {
	switch stats.RateClass(rate) {
	case stats.RateGood:
		return trendStyles[model.Up].Render("on track")
	case stats.RateWarning:
		return accentStyle.Render("needs attention")
	default:
		return errorStyle.Render("low")
	}
}

func progressBar(pct float64) string {
	pct = max(0, min(1, pct))
	bar := progress.New(
		progress.WithGradient("#C89A3A", "#52C41A"),
		progress.WithWidth(cardInnerWidth),
	)
	return bar.ViewAs(pct)
}

func renderCharts(r stats.Report, width int) string {
	var buf bytes.Buffer
	sets, shows, labels := stats.HistorySeries(r.History)
	err := stats.PlotSeriesWithColor(&buf, "Weekly Trend", []stats.Series{
		{Name: "Sets", Values: sets},
		{Name: "Shows", Values: shows},
	}, labels, stats.PlotWidthFor(width), plotHeight, true)
	if err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	sections := []string{strings.TrimRight(buf.String(), "\n")}
	if bars := stats.RepSetBars(r.Week); len(bars) > 0 {
		sections = append(sections, barSection("Sets by Rep", bars, width))
	}
	if bars := stats.StandingBars(r.Standings); len(bars) > 0 {
		sections = append(sections, barSection("Monthly Standings", bars, width))
	}
	return strings.Join(sections, "\n\n")
}

func barSection(title string, bars []stats.Bar, width int) string {
	lines := []string{cardTitleStyle.Render(title)}
	for _, line := range stats.BarLines(bars, width-1) {
		lines = append(lines, accentStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func newLeaderboardTable() table.Model {
	widths := []int{3, 22, 6, 6, 8, 8}
	columns := make([]table.Column, len(stats.LeaderboardHeaders))
	for i, title := range stats.LeaderboardHeaders {
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}
	return table.New(
		table.WithColumns(columns),
		table.WithStyles(leaderboardStyles()),
	)
}

func leaderboardRows(reps []model.Rep, ok bool) []table.Row {
	if !ok {
		return nil
	}
	cells := stats.LeaderboardRows(reps)
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		rows[i] = table.Row(row)
	}
	return rows
}

func leaderboardStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
