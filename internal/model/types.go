// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config defines resolved runtime settings.
type Config struct {
	Source          SourceConfig
	RefreshInterval time.Duration `validate:"min=1s"`
	Targets         Targets
	Serve           ServeConfig
	Log             LogConfig
}

// SourceConfig locates the spreadsheet export.
type SourceConfig struct {
	URL          string        `validate:"omitempty,url"`
	Path         string
	SheetID      string
	GID          string
	Sheet        string
	FetchTimeout time.Duration `validate:"gte=0"`
}

// Targets are the goals progress bars are measured against.
type Targets struct {
	WeeklySets  int             `validate:"gt=0"`
	WeeklyShows int             `validate:"gt=0"`
	ShowRate    int             `validate:"gt=0,lte=100"`
	ClosedWon   decimal.Decimal
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr         string  `validate:"required"`
	RefreshRPS   float64 `validate:"gt=0"`
	RefreshBurst int     `validate:"gt=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	File  string
}

// Rep is one representative row within a week.
type Rep struct {
	Name         string          `json:"name" yaml:"name"`
	WeeklySets   int             `json:"weeklySets" yaml:"weeklySets"`
	WeeklyShows  int             `json:"weeklyShows" yaml:"weeklyShows"`
	MonthlySets  int             `json:"monthlySets" yaml:"monthlySets"`
	MonthlyShows int             `json:"monthlyShows" yaml:"monthlyShows"`
	ClosedWon    decimal.Decimal `json:"closedWon" yaml:"closedWon"`
	ShowRate     int             `json:"showRate" yaml:"showRate"`
}

// Totals is an explicit "Totals" row.
type Totals struct {
	WeeklySets   int             `json:"weeklySets" yaml:"weeklySets"`
	WeeklyShows  int             `json:"weeklyShows" yaml:"weeklyShows"`
	MonthlySets  int             `json:"monthlySets" yaml:"monthlySets"`
	MonthlyShows int             `json:"monthlyShows" yaml:"monthlyShows"`
	ClosedWon    decimal.Decimal `json:"closedWon" yaml:"closedWon"`
}

// Week is one section of the sheet: the reps between two header rows.
type Week struct {
	Reps   []Rep   `json:"reps" yaml:"reps"`
	Totals *Totals `json:"totals,omitempty" yaml:"totals,omitempty"`
}

// Aggregate holds the section-level figures shown on stat cards.
type Aggregate struct {
	WeeklySets   int             `json:"weeklySets" yaml:"weeklySets"`
	WeeklyShows  int             `json:"weeklyShows" yaml:"weeklyShows"`
	MonthlySets  int             `json:"monthlySets" yaml:"monthlySets"`
	MonthlyShows int             `json:"monthlyShows" yaml:"monthlyShows"`
	ClosedWon    decimal.Decimal `json:"closedWon" yaml:"closedWon"`
	ShowRate     int             `json:"showRate" yaml:"showRate"`
}

// Direction classifies a delta.
type Direction string

// Trend directions.
const (
	Up      Direction = "up"
	Down    Direction = "down"
	Neutral Direction = "neutral"
)

// Delta is a signed week-over-week change.
type Delta struct {
	Value     int       `json:"value" yaml:"value"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Trend compares a week against the one before it.
type Trend struct {
	Sets  Delta `json:"sets" yaml:"sets"`
	Shows Delta `json:"shows" yaml:"shows"`
}

// Standing is a rep's monthly sets as of the latest week.
type Standing struct {
	Name        string `json:"name" yaml:"name"`
	MonthlySets int    `json:"monthlySets" yaml:"monthlySets"`
}
