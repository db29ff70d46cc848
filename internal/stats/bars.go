package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/weekboard/internal/model"
)

const (
	barFull    = "█"
	minBarSpan = 5
)

// Bar is one labelled value of a horizontal bar chart.
type Bar struct {
	Label string
	Value int
}

// RepSetBars lists weekly sets per rep in sheet order, labelled by first name.
func RepSetBars(week model.Week) []Bar {
	bars := make([]Bar, 0, len(week.Reps))
	for _, r := range week.Reps {
		bars = append(bars, Bar{Label: FirstName(r.Name), Value: r.WeeklySets})
	}
	return bars
}

// StandingBars lists cumulative monthly sets per rep.
func StandingBars(standings []model.Standing) []Bar {
	bars := make([]Bar, 0, len(standings))
	for _, s := range standings {
		bars = append(bars, Bar{Label: FirstName(s.Name), Value: s.MonthlySets})
	}
	return bars
}

// BarLines renders bars scaled to the largest value so the whole chart,
// label and value included, fits in width columns.
func BarLines(bars []Bar, width int) []string {
	if len(bars) == 0 {
		return nil
	}
	labelWidth, valueWidth, maxVal := 0, 0, 0
	for _, b := range bars {
		labelWidth = max(labelWidth, runewidth.StringWidth(b.Label))
		valueWidth = max(valueWidth, len(fmt.Sprint(b.Value)))
		maxVal = max(maxVal, b.Value)
	}
	span := max(minBarSpan, width-labelWidth-valueWidth-2)

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		n := 0
		if maxVal > 0 && b.Value > 0 {
			n = max(1, b.Value*span/maxVal)
		}
		bar := runewidth.FillRight(strings.Repeat(barFull, n), span)
		lines = append(lines, fmt.Sprintf("%s %s %*d", runewidth.FillRight(b.Label, labelWidth), bar, valueWidth, b.Value))
	}
	return lines
}

// RenderBars prints a titled bar chart.
func RenderBars(w io.Writer, title string, bars []Bar, width int) error {
	if len(bars) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	var out strings.Builder
	out.WriteString(title + "\n")
	for _, line := range BarLines(bars, width) {
		out.WriteString(line + "\n")
	}
	out.WriteByte('\n')
	_, err := io.WriteString(w, out.String())
	return err
}
