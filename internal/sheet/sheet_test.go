package sheet

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSplitLineRoundTrip(t *testing.T) {
	for _, line := range []string{"a,b,c", "Rep,Weekly Sets,Weekly Shows", "one", "x, y ,z"} {
		row := SplitLine(line)
		want := strings.Join(trimAll(strings.Split(line, ",")), ",")
		require.Equal(t, want, strings.Join(row, ","), "line %q", line)
	}
}

func TestSplitLineQuotedComma(t *testing.T) {
	got := SplitLine(`Name,"1,234",5`)
	if diff := cmp.Diff(Row{"Name", "1,234", "5"}, got); diff != "" {
		t.Fatalf("unexpected row (-want +got):\n%s", diff)
	}
}

func TestSplitLineUnbalancedQuote(t *testing.T) {
	got := SplitLine(`Jane,"5,6,7`)
	if diff := cmp.Diff(Row{"Jane", "5,6,7"}, got); diff != "" {
		t.Fatalf("unexpected row (-want +got):\n%s", diff)
	}
}

func TestSplitLineDoubledQuoteToggles(t *testing.T) {
	got := SplitLine(`a,"say ""hi""",b`)
	if diff := cmp.Diff(Row{"a", "say hi", "b"}, got); diff != "" {
		t.Fatalf("unexpected row (-want +got):\n%s", diff)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("\nRep,Weekly Sets\r\n\r\nAnn,3,1\n")
	want := []Row{{"Rep", "Weekly Sets"}, {""}, {"Ann", "3", "1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Row{{""}}, Tokenize("")); diff != "" {
		t.Fatalf("empty input (-want +got):\n%s", diff)
	}
}

func TestParseCurrency(t *testing.T) {
	cases := map[string]string{
		"$1,234.56":   "1234.56",
		"$0.00":       "0",
		"":            "0",
		"X":           "0",
		"$ 12,000":    "12000",
		"n/a":         "0",
		"-$5.00":      "0",
		"$1,000,000":  "1000000",
		" $99.9 ":     "99.9",
		"$12.50 paid": "12.5",
		"$1,234.56*":  "1234.56",
		"$.75":        "0.75",
		"12.":         "12",
		"$-":          "0",
	}
	for in, want := range cases {
		got := ParseCurrency(in)
		require.True(t, got.Equal(decimal.RequireFromString(want)), "ParseCurrency(%q) = %s, want %s", in, got, want)
	}
	require.Equal(t, int64(1234), ParseCurrency("$1,234.56").IntPart())
}

func TestParseCount(t *testing.T) {
	cases := map[string]int{
		"12":     12,
		" 7 ":    7,
		"3.9":    3,
		"5 sets": 5,
		"":       0,
		"X":      0,
		"-4":     0,
		"+6":     6,
		"1,234":  1,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseCount(in), "ParseCount(%q)", in)
	}
}

func TestExtractFlushesFinalSection(t *testing.T) {
	weeks := Extract(Tokenize("Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won\nAnn,4,2,9,5,$1,000.00"))
	require.Len(t, weeks, 1)
	require.Len(t, weeks[0].Reps, 1)
	rep := weeks[0].Reps[0]
	require.Equal(t, "Ann", rep.Name)
	require.Equal(t, 4, rep.WeeklySets)
	require.Equal(t, 2, rep.WeeklyShows)
	require.Equal(t, 9, rep.MonthlySets)
	require.Equal(t, 5, rep.MonthlyShows)
	require.Equal(t, 50, rep.ShowRate)
	require.Nil(t, weeks[0].Totals)
}

func TestExtractQuotedCurrency(t *testing.T) {
	csv := strings.Join([]string{
		`"Rep","Weekly Sets","Weekly Shows","Monthly Sets","Monthly Shows","Closed Won"`,
		`"Ann","4","2","9","5","$12,500.75"`,
	}, "\n")
	weeks := Extract(Tokenize(csv))
	require.Len(t, weeks, 1)
	require.True(t, weeks[0].Reps[0].ClosedWon.Equal(decimal.RequireFromString("12500.75")))
}

func TestExtractFiltersInactiveRows(t *testing.T) {
	csv := strings.Join([]string{
		"Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won",
		"John Deactivated,5,3,10,4,$500.00",
		"Placeholder,X,X,X,X,X",
		"Empty,,,,,",
		",,,,,",
		"Idle,0,0,0,3,$0.00",
		"Ann,2,1,2,1,",
	}, "\n")
	res := ExtractDetailed(Tokenize(csv))
	require.Len(t, res.Weeks, 1)
	names := make([]string, 0, len(res.Weeks[0].Reps))
	for _, r := range res.Weeks[0].Reps {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"Ann"}, names)
	require.Equal(t, 3, res.Skipped[SkipInactive])
	require.Equal(t, 1, res.Skipped[SkipBlank])
	require.Equal(t, 1, res.Skipped[SkipNoActivity])
	require.Equal(t, 6, res.SkippedTotal()+res.Reps())
}

func TestExtractTotalsAndSections(t *testing.T) {
	csv := strings.Join([]string{
		"Weekly report",
		"Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won",
		"Ann,10,5,10,5,$100.00",
		"Bob,10,5,10,5,$200.00",
		"Totals,20,10,20,10,$300.00",
		"",
		"Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won",
		"Nobody,0,0,0,0,",
		"Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won",
		"Ann,15,8,25,13,$1,000.00",
		"Ann,1,1,1,1,",
		"Cy,15,7,15,7,",
		"Totals,30,15,40,20,$1,000.00",
	}, "\n")
	res := ExtractDetailed(Tokenize(csv))
	require.Len(t, res.Weeks, 2, "empty middle section must be dropped")
	require.Equal(t, 1, res.Skipped[SkipOutsideSection])
	require.Equal(t, 1, res.Skipped[SkipDuplicate])

	first, second := res.Weeks[0], res.Weeks[1]
	require.NotNil(t, first.Totals)
	require.Equal(t, 20, first.Totals.WeeklySets)
	require.True(t, first.Totals.ClosedWon.Equal(decimal.NewFromInt(300)))
	require.Len(t, second.Reps, 2)
	require.Equal(t, "Ann", second.Reps[0].Name)
	require.Equal(t, 15, second.Reps[0].WeeklySets)
	require.Equal(t, 30, second.Totals.WeeklySets)
}

func TestExtractHeaderless(t *testing.T) {
	require.Empty(t, Extract(Tokenize("Ann,1,2,3,4,$5.00\nTotals,1,2,3,4,")))
	require.Empty(t, Extract(Tokenize("")))
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	rows := [][]interface{}{
		{"Rep", "Weekly Sets", "Weekly Shows", "Monthly Sets", "Monthly Shows", "Closed Won"},
		{"Ann ", 6, 3, 12, 6, "$2,500.00"},
		{},
		{"Totals", 6, 3, 12, 6, "$2,500.00"},
	}
	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := ReadWorkbook(buf, "")
	require.NoError(t, err)
	weeks := Extract(got)
	require.Len(t, weeks, 1)
	require.Equal(t, "Ann", weeks[0].Reps[0].Name)
	require.Equal(t, 6, weeks[0].Reps[0].WeeklySets)
	require.True(t, weeks[0].Reps[0].ClosedWon.Equal(decimal.NewFromInt(2500)))
	require.NotNil(t, weeks[0].Totals)

	_, err = ReadWorkbook(strings.NewReader("not a workbook"), "")
	require.Error(t, err)
}

func trimAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
