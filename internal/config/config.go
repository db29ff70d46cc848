package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/weekboard/internal/model"
)

// Defaults.
const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultWeeklySets      = 40
	DefaultWeeklyShows     = 25
	DefaultShowRate        = 100
	DefaultClosedWon       = 100000
	DefaultAddr            = "127.0.0.1:8080"
	DefaultRefreshRPS      = 0.2
	DefaultRefreshBurst    = 3
	DefaultLogLevel        = "info"
)

// ErrNoSource is returned when no data source is configured.
var ErrNoSource = errors.New("no data source configured (set source url, path or sheet-id)")

// Defaults returns the built-in configuration.
func Defaults() model.Config {
	return model.Config{
		RefreshInterval: DefaultRefreshInterval,
		Targets: model.Targets{
			WeeklySets:  DefaultWeeklySets,
			WeeklyShows: DefaultWeeklyShows,
			ShowRate:    DefaultShowRate,
			ClosedWon:   decimal.NewFromInt(DefaultClosedWon),
		},
		Serve: model.ServeConfig{
			Addr:         DefaultAddr,
			RefreshRPS:   DefaultRefreshRPS,
			RefreshBurst: DefaultRefreshBurst,
		},
		Log: model.LogConfig{Level: DefaultLogLevel},
	}
}

// Load resolves defaults, then the TOML file at path, then WEEKBOARD_*
// environment overrides. Flags are applied by the caller on top.
func Load(path string) (model.Config, error) {
	cfg := Defaults()
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return model.Config{}, err
	}
	ApplyFile(&cfg, fileCfg)
	env, err := LoadEnv()
	if err != nil {
		return model.Config{}, err
	}
	if err := ApplyEnv(&cfg, env); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// ApplyFile overlays values present in the file.
func ApplyFile(cfg *model.Config, f FileConfig) {
	set(&cfg.Source.URL, f.Source.URL)
	set(&cfg.Source.Path, f.Source.Path)
	set(&cfg.Source.SheetID, f.Source.SheetID)
	set(&cfg.Source.GID, f.Source.GID)
	set(&cfg.Source.Sheet, f.Source.Sheet)
	setDuration(&cfg.Source.FetchTimeout, f.Source.FetchTimeout)
	setDuration(&cfg.RefreshInterval, f.Refresh.Interval)
	set(&cfg.Targets.WeeklySets, f.Targets.WeeklySets)
	set(&cfg.Targets.WeeklyShows, f.Targets.WeeklyShows)
	set(&cfg.Targets.ShowRate, f.Targets.ShowRate)
	set(&cfg.Targets.ClosedWon, f.Targets.ClosedWon)
	set(&cfg.Serve.Addr, f.Serve.Addr)
	set(&cfg.Serve.RefreshRPS, f.Serve.RefreshRPS)
	set(&cfg.Serve.RefreshBurst, f.Serve.RefreshBurst)
	set(&cfg.Log.Level, f.Log.Level)
	set(&cfg.Log.File, f.Log.File)
}

// ApplyEnv overlays environment overrides.
func ApplyEnv(cfg *model.Config, env EnvConfig) error {
	closedWon, err := env.ClosedWon()
	if err != nil {
		return err
	}
	set(&cfg.Source.URL, env.SourceURL)
	set(&cfg.Source.Path, env.SourcePath)
	set(&cfg.Source.SheetID, env.SheetID)
	set(&cfg.Source.GID, env.GID)
	set(&cfg.Source.Sheet, env.Sheet)
	set(&cfg.Source.FetchTimeout, env.FetchTimeout)
	set(&cfg.RefreshInterval, env.RefreshInterval)
	set(&cfg.Targets.WeeklySets, env.TargetSets)
	set(&cfg.Targets.WeeklyShows, env.TargetShows)
	set(&cfg.Targets.ShowRate, env.TargetShowRate)
	set(&cfg.Targets.ClosedWon, closedWon)
	set(&cfg.Serve.Addr, env.Addr)
	set(&cfg.Serve.RefreshRPS, env.RefreshRPS)
	set(&cfg.Serve.RefreshBurst, env.RefreshBurst)
	set(&cfg.Log.Level, env.LogLevel)
	set(&cfg.Log.File, env.LogFile)
	return nil
}

func set[T any](target *T, value *T) {
	if value != nil {
		*target = *value
	}
}

func setDuration(target *time.Duration, value *Duration) {
	if value != nil {
		*target = time.Duration(*value)
	}
}

var validate = validator.New()

// Validate checks the resolved configuration.
func Validate(cfg model.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			return fmt.Errorf("invalid config value %s: must satisfy %s", fe.Namespace(), rule)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Targets.ClosedWon.IsNegative() {
		return fmt.Errorf("invalid config value Config.Targets.ClosedWon: must be >= 0")
	}
	return nil
}

// RequireSource reports ErrNoSource when nothing can be fetched.
func RequireSource(src model.SourceConfig) error {
	if src.URL == "" && src.Path == "" && src.SheetID == "" {
		return ErrNoSource
	}
	return nil
}

// Template returns the commented config file written by `weekboard config`.
func Template() string {
	return fmt.Sprintf(`# weekboard configuration
# Uncomment a value to enable it. CLI flags and WEEKBOARD_* variables override config values.

[source]
# url = ""                 # CSV or .xlsx export URL
# path = ""                # Local CSV or .xlsx file (watched for changes)
# sheet-id = ""            # Google Sheets id, used with gid
# gid = "0"                # Google Sheets tab id
# sheet = ""               # Workbook sheet name (default: first sheet)
# fetch-timeout = "0s"     # 0 waits indefinitely

[refresh]
# interval = %q            # Auto-refresh period

[targets]
# weekly-sets = %d
# weekly-shows = %d
# show-rate = %d           # Percent
# closed-won = %d

[serve]
# addr = %q
# refresh-rps = %.1f       # Manual refresh rate limit
# refresh-burst = %d

[log]
# level = %q               # debug, info, warn, error
# file = ""                # Dashboard log file (default: XDG state dir)
`,
		DefaultRefreshInterval.String(),
		DefaultWeeklySets,
		DefaultWeeklyShows,
		DefaultShowRate,
		DefaultClosedWon,
		DefaultAddr,
		DefaultRefreshRPS,
		DefaultRefreshBurst,
		DefaultLogLevel,
	)
}
