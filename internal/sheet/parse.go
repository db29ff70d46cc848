package sheet

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseCurrency converts a formatted amount like "$1,234.56" to a decimal.
// Only the leading number counts, so "$12.50 paid" is 12.50. Blank, "X",
// "$0.00", non-numeric and negative inputs all yield zero.
func ParseCurrency(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "X" || s == "$0.00" {
		return decimal.Zero
	}
	num := leadingDecimal(currencyReplacer.Replace(s))
	if num == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(num)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// leadingDecimal returns the longest prefix of s shaped like [sign]digits[.digits].
func leadingDecimal(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	intStart := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	intDigits := end - intStart
	fracDigits := 0
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && isDigit(s[frac]) {
			frac++
		}
		fracDigits = frac - end - 1
		if fracDigits > 0 {
			end = frac
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return ""
	}
	if intDigits == 0 {
		// ".5" has no integer part.
		return s[:intStart] + "0" + s[intStart:end]
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseCount reads the leading integer of s the way spreadsheet exports are
// usually read: "12", "12 sets" and "12.7" are all 12. Anything without a
// leading digit, and any negative value, is zero.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
