// Package config provides configuration loading, XDG paths and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Source  SourceFileConfig  `toml:"source"`
	Refresh RefreshFileConfig `toml:"refresh"`
	Targets TargetsFileConfig `toml:"targets"`
	Serve   ServeFileConfig   `toml:"serve"`
	Log     LogFileConfig     `toml:"log"`
}

// SourceFileConfig maps the [source] table.
type SourceFileConfig struct {
	URL          *string   `toml:"url"`
	Path         *string   `toml:"path"`
	SheetID      *string   `toml:"sheet-id"`
	GID          *string   `toml:"gid"`
	Sheet        *string   `toml:"sheet"`
	FetchTimeout *Duration `toml:"fetch-timeout"`
}

// RefreshFileConfig maps the [refresh] table.
type RefreshFileConfig struct {
	Interval *Duration `toml:"interval"`
}

// TargetsFileConfig maps the [targets] table.
type TargetsFileConfig struct {
	WeeklySets  *int             `toml:"weekly-sets"`
	WeeklyShows *int             `toml:"weekly-shows"`
	ShowRate    *int             `toml:"show-rate"`
	ClosedWon   *decimal.Decimal `toml:"closed-won"`
}

// ServeFileConfig maps the [serve] table.
type ServeFileConfig struct {
	Addr         *string  `toml:"addr"`
	RefreshRPS   *float64 `toml:"refresh-rps"`
	RefreshBurst *int     `toml:"refresh-burst"`
}

// LogFileConfig maps the [log] table.
type LogFileConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// Duration decodes TOML strings such as "5m" or "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
