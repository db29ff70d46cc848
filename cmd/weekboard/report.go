package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/weekboard/internal/config"
	"github.com/verte-zerg/weekboard/internal/logging"
	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/refresh"
	"github.com/verte-zerg/weekboard/internal/source"
	"github.com/verte-zerg/weekboard/internal/stats"
	"github.com/verte-zerg/weekboard/internal/store"
)

const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatYAML     = "yaml"
)

var (
	reportWeek   int
	reportFormat string
	reportWidth  int
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch the sheet once and print a week's report",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&reportWeek, "week", 0, "week number, 1-based (default: latest)")
	cmd.Flags().StringVar(&reportFormat, "format", formatText, "output format: text, markdown, json, yaml")
	cmd.Flags().IntVar(&reportWidth, "width", 0, "output width (default: terminal width)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	format, err := parseFormat(reportFormat)
	if err != nil {
		return err
	}
	if reportWeek < 0 {
		return fmt.Errorf("--week must be >= 0")
	}
	cfg, err := resolveConfig(cmd, func(cfg *model.Config) {
		// Only warnings unless a level was asked for.
		if !cmd.Flags().Changed("log-level") && cfg.Log.Level == config.DefaultLogLevel {
			cfg.Log.Level = "warn"
		}
	})
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	src, err := source.New(cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}
	st := store.New()
	if _, err := refresh.NewPipeline(src, st, log, nil).Run(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load weeks: %w", err)
	}

	report, err := stats.BuildReport(st, reportWeek-1, cfg.Targets)
	if errors.Is(err, stats.ErrNoWeeks) {
		_, werr := fmt.Fprintln(cmd.OutOrStdout(), "No weeks found.")
		return werr
	}
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, format, reportWidth)
}

func parseFormat(value string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(value)); format {
	case formatText, formatMarkdown, formatJSON, formatYAML:
		return format, nil
	case "md":
		return formatMarkdown, nil
	case "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown --format %q (want text, markdown, json or yaml)", value)
	}
}

func writeReport(w io.Writer, r stats.Report, format string, width int) error {
	switch format {
	case formatMarkdown:
		return stats.RenderMarkdown(w, r, width, isTerminal(w))
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return stats.RenderText(w, r, width)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
