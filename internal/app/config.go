package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridexpr/internal/timeindex"
)

const (
	ModeLevel   = "level"
	ModeProfile = "profile"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath string // hcl files

	// Key selects the value to evaluate. An empty key prints a summary of
	// the model instead.
	Key  string
	Mode string
	Unit string // target unit of a level, empty for none
	Year int

	AvgLevel      bool // evaluate average instead of max levels
	Weekly        bool // weekly instead of daily profile periods
	MeanOne       bool // mean-one instead of zero-one profiles
	Float32       bool
	Is52WeekYears bool

	CacheMinElapsed float64 // seconds

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLevel
	}
	switch cfg.Mode {
	case ModeLevel:
	case ModeProfile:
		if cfg.Unit != "" {
			return nil, errors.New("unit can only be set in level mode")
		}
	default:
		return nil, fmt.Errorf("invalid mode %q: must be %q or %q", cfg.Mode, ModeLevel, ModeProfile)
	}
	if cfg.Year < timeindex.MinYear || cfg.Year > timeindex.MaxYear {
		return nil, fmt.Errorf("invalid year %d: must be between %d and %d", cfg.Year, timeindex.MinYear, timeindex.MaxYear)
	}
	if cfg.CacheMinElapsed < 0 {
		return nil, fmt.Errorf("invalid cache min elapsed %v: must not be negative", cfg.CacheMinElapsed)
	}

	return &cfg, nil
}
