package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/weekboard/internal/config"
)

const sheetCSV = `Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won
Ann Lee,12,6,12,6,"$1,200.00"
Bob Stone,8,4,8,4,$0.00
Totals,20,10,20,10,"$1,200.00"
,,,,,
Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won
Ann Lee,18,9,30,15,"$2,500.50"
Bob Stone,12,6,20,10,X
Totals,30,15,50,25,"$2,500.50"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveConfigPrecedence(t *testing.T) {
	cfgPath := writeFile(t, "config.toml", `
[source]
path = "file.csv"

[refresh]
interval = "1m"

[targets]
weekly-sets = 45
weekly-shows = 30
`)
	t.Setenv("WEEKBOARD_TARGET_WEEKLY_SETS", "50")
	t.Setenv("WEEKBOARD_REFRESH_INTERVAL", "2m")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--interval", "3m", "--path", "flag.csv"}))
	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)

	require.Equal(t, "flag.csv", cfg.Source.Path)
	require.Equal(t, 3*time.Minute, cfg.RefreshInterval)
	require.Equal(t, 50, cfg.Targets.WeeklySets)
	require.Equal(t, 30, cfg.Targets.WeeklyShows)
	require.Equal(t, config.DefaultShowRate, cfg.Targets.ShowRate)
	require.Equal(t, config.DefaultAddr, cfg.Serve.Addr)
}

func TestResolveConfigRequiresSource(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}))
	_, err := resolveConfig(cmd)
	require.ErrorIs(t, err, config.ErrNoSource)
}

func TestResolveConfigRejectsInvalidInterval(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--path", "file.csv",
		"--interval", "10ms",
	}))
	_, err := resolveConfig(cmd)
	require.ErrorContains(t, err, "RefreshInterval")
}

func TestReportJSON(t *testing.T) {
	csvPath := writeFile(t, "sheet.csv", sheetCSV)
	missing := filepath.Join(t.TempDir(), "missing.toml")

	out, err := runCLI(t, "report", "--config", missing, "--path", csvPath, "--format", "json")
	require.NoError(t, err)

	var report struct {
		Label     string `json:"label"`
		Aggregate struct {
			WeeklySets int    `json:"weeklySets"`
			ShowRate   int    `json:"showRate"`
			ClosedWon  string `json:"closedWon"`
		} `json:"aggregate"`
		Trend *struct {
			Sets struct {
				Value     int    `json:"value"`
				Direction string `json:"direction"`
			} `json:"sets"`
		} `json:"trend"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, "Week 2", report.Label)
	require.Equal(t, 30, report.Aggregate.WeeklySets)
	require.Equal(t, 50, report.Aggregate.ShowRate)
	require.Equal(t, "2500.5", report.Aggregate.ClosedWon)
	require.NotNil(t, report.Trend)
	require.Equal(t, 10, report.Trend.Sets.Value)
	require.Equal(t, "up", report.Trend.Sets.Direction)
}

func TestReportFormats(t *testing.T) {
	csvPath := writeFile(t, "sheet.csv", sheetCSV)
	missing := filepath.Join(t.TempDir(), "missing.toml")

	out, err := runCLI(t, "report", "--config", missing, "--path", csvPath, "--week", "1", "--width", "80")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Week 1\n"), out)
	require.Contains(t, out, "first week")
	require.Contains(t, out, "Leaderboard")

	out, err = runCLI(t, "report", "--config", missing, "--path", csvPath, "--format", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "label: Week 2")

	out, err = runCLI(t, "report", "--config", missing, "--path", csvPath, "--format", "md")
	require.NoError(t, err)
	require.Contains(t, out, "# Week 2")
	require.Contains(t, out, "## Leaderboard")
}

func TestReportEmptySheet(t *testing.T) {
	csvPath := writeFile(t, "sheet.csv", "")
	missing := filepath.Join(t.TempDir(), "missing.toml")

	out, err := runCLI(t, "report", "--config", missing, "--path", csvPath)
	require.NoError(t, err)
	require.Equal(t, "No weeks found.\n", out)
}

func TestReportErrors(t *testing.T) {
	csvPath := writeFile(t, "sheet.csv", sheetCSV)
	missing := filepath.Join(t.TempDir(), "missing.toml")

	_, err := runCLI(t, "report", "--config", missing, "--path", csvPath, "--format", "pdf")
	require.ErrorContains(t, err, "unknown --format")

	_, err = runCLI(t, "report", "--config", missing, "--path", csvPath, "--week", "9")
	require.ErrorContains(t, err, "week not found")

	_, err = runCLI(t, "report", "--config", missing, "--path", filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorContains(t, err, "failed to load weeks")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"TEXT": "text", " md ": "markdown", "yml": "yaml", "json": "json"} {
		got, err := parseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
