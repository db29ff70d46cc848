// Package main provides the CLI entrypoint for weekboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/weekboard/internal/config"
	"github.com/verte-zerg/weekboard/internal/dashboard"
	"github.com/verte-zerg/weekboard/internal/logging"
	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/refresh"
	"github.com/verte-zerg/weekboard/internal/source"
	"github.com/verte-zerg/weekboard/internal/store"
)

var (
	configPath      string
	sourceURL       string
	sourcePath      string
	sheetID         string
	sheetGID        string
	sheetName       string
	fetchTimeout    time.Duration
	refreshInterval time.Duration
	logLevel        string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "weekboard",
		Short:         "Weekly sales dashboard",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&sourceURL, "url", "", "CSV or .xlsx export URL")
	flags.StringVar(&sourcePath, "path", "", "local CSV or .xlsx file")
	flags.StringVar(&sheetID, "sheet-id", "", "Google Sheets document id")
	flags.StringVar(&sheetGID, "gid", "", "Google Sheets tab id (default: first tab)")
	flags.StringVar(&sheetName, "sheet", "", "workbook sheet name (default: first sheet)")
	flags.DurationVar(&fetchTimeout, "fetch-timeout", 0, "retrieval timeout (0 waits indefinitely)")
	flags.DurationVar(&refreshInterval, "interval", config.DefaultRefreshInterval, "auto-refresh interval")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// resolveConfig layers flags over the config file and environment, then
// validates the result. overrides run after the shared flags.
func resolveConfig(cmd *cobra.Command, overrides ...func(*model.Config)) (model.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlag(cmd, "url", &cfg.Source.URL, sourceURL)
	applyFlag(cmd, "path", &cfg.Source.Path, sourcePath)
	applyFlag(cmd, "sheet-id", &cfg.Source.SheetID, sheetID)
	applyFlag(cmd, "gid", &cfg.Source.GID, sheetGID)
	applyFlag(cmd, "sheet", &cfg.Source.Sheet, sheetName)
	applyFlag(cmd, "fetch-timeout", &cfg.Source.FetchTimeout, fetchTimeout)
	applyFlag(cmd, "interval", &cfg.RefreshInterval, refreshInterval)
	applyFlag(cmd, "log-level", &cfg.Log.Level, logLevel)
	for _, override := range overrides {
		override(&cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	if err := config.RequireSource(cfg.Source); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func applyFlag[T any](cmd *cobra.Command, name string, target *T, value T) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = config.DefaultLogPath()
	}
	log, err := logging.New(cfg.Log.Level, logFile)
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
	log.Info("starting dashboard", zap.Stringer("source", src), zap.Duration("interval", cfg.RefreshInterval))

	st := store.New()
	pipeline := refresh.NewPipeline(src, st, log, nil)
	dash := dashboard.NewModel(st, pipeline, dashboard.Options{
		Targets:  cfg.Targets,
		Interval: cfg.RefreshInterval,
	}, log)
	program := tea.NewProgram(dash, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if fileSrc, ok := src.(*source.FileSource); ok {
		watcher, err := source.NewWatcher(fileSrc.Path, source.DefaultDebounce, log)
		if err != nil {
			log.Warn("file watch disabled", zap.Error(err))
		} else {
			go func() {
				if err := watcher.Run(ctx, func() { program.Send(dashboard.RefreshMsg{}) }); err != nil {
					log.Warn("file watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logErrf("Wrote %s\n", path)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
