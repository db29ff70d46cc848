package stats

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/weekboard/internal/model"
)

var (
	thousand = decimal.NewFromInt(1000)
	million  = decimal.NewFromInt(1000000)
)

// FormatCurrency renders an amount compactly: $1.2M, $45K, $980.5, $0.
func FormatCurrency(d decimal.Decimal) string {
	if !d.IsPositive() {
		return "$0"
	}
	switch {
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(1) + "M"
	case d.GreaterThanOrEqual(thousand):
		return "$" + d.Div(thousand).StringFixed(0) + "K"
	default:
		return "$" + d.Round(3).String()
	}
}

// FormatDelta renders a delta with an explicit sign.
func FormatDelta(d model.Delta) string {
	if d.Value >= 0 {
		return fmt.Sprintf("+%d", d.Value)
	}
	return fmt.Sprintf("%d", d.Value)
}

// WeekLabel is the 1-based tab label for a store index.
func WeekLabel(index int) string {
	return fmt.Sprintf("Week %d", index+1)
}
