package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/weekboard/internal/model"
)

var rateMarkers = map[string]string{
	RateGood:    "●",
	RateWarning: "◐",
	RateLow:     "○",
}

// LeaderboardHeaders are the column titles shared by the text and TUI tables.
var LeaderboardHeaders = []string{"#", "Rep", "Sets", "Shows", "Rate", "Monthly"}

// LeaderboardRows formats ranked reps as table cells.
func LeaderboardRows(reps []model.Rep) [][]string {
	rows := make([][]string, 0, len(reps))
	for i, r := range reps {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			r.Name,
			fmt.Sprintf("%d", r.WeeklySets),
			fmt.Sprintf("%d", r.WeeklyShows),
			fmt.Sprintf("%s %d%%", rateMarkers[RateClass(r.ShowRate)], r.ShowRate),
			fmt.Sprintf("%d", r.MonthlySets),
		})
	}
	return rows
}

// RenderLeaderboard prints the ranked reps of a week.
func RenderLeaderboard(w io.Writer, reps []model.Rep) error {
	if len(reps) == 0 {
		_, err := fmt.Fprintln(w, "No reps found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Leaderboard"); err != nil {
		return err
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(LeaderboardHeaders, LeaderboardRows(reps), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	cells := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		cells[i] = padCell(cell, widths[i], rightAlignCols[i])
	}
	return strings.Join(cells, " ")
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
