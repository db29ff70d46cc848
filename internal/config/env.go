package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WEEKBOARD"

// EnvConfig holds WEEKBOARD_* overrides. Unset variables stay nil.
// envconfig allocates pointers to structs, so decimal values are kept as
// strings and parsed by ClosedWon.
type EnvConfig struct {
	SourceURL       *string        `envconfig:"SOURCE_URL"`
	SourcePath      *string        `envconfig:"SOURCE_PATH"`
	SheetID         *string        `envconfig:"SHEET_ID"`
	GID             *string        `envconfig:"GID"`
	Sheet           *string        `envconfig:"SHEET"`
	FetchTimeout    *time.Duration `envconfig:"FETCH_TIMEOUT"`
	RefreshInterval *time.Duration `envconfig:"REFRESH_INTERVAL"`
	TargetSets      *int           `envconfig:"TARGET_WEEKLY_SETS"`
	TargetShows     *int           `envconfig:"TARGET_WEEKLY_SHOWS"`
	TargetShowRate  *int           `envconfig:"TARGET_SHOW_RATE"`
	TargetClosedWon *string        `envconfig:"TARGET_CLOSED_WON"`
	Addr            *string        `envconfig:"ADDR"`
	RefreshRPS      *float64       `envconfig:"REFRESH_RPS"`
	RefreshBurst    *int           `envconfig:"REFRESH_BURST"`
	LogLevel        *string        `envconfig:"LOG_LEVEL"`
	LogFile         *string        `envconfig:"LOG_FILE"`
}

// LoadEnv reads overrides from the environment.
func LoadEnv() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to load config from env: %w", err)
	}
	return env, nil
}

// ClosedWon parses TargetClosedWon. It returns nil when the variable is unset or blank.
func (e EnvConfig) ClosedWon() (*decimal.Decimal, error) {
	if e.TargetClosedWon == nil || strings.TrimSpace(*e.TargetClosedWon) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*e.TargetClosedWon))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_TARGET_CLOSED_WON %q: %w", EnvPrefix, *e.TargetClosedWon, err)
	}
	return &d, nil
}
