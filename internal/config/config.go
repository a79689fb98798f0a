// Package config loads the settings of the sqlshape command.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Output formats accepted by the select command
const (
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// Config holds the command settings merged from flags, environment
// variables, .env files and the config file.
type Config struct {
	// Database is the SQLite file, or ":memory:"
	Database string `mapstructure:"database"`
	// ReadOnly opens the database file read-only
	ReadOnly bool `mapstructure:"readOnly"`
	// BusyTimeout is how long SQLite waits on a locked database
	BusyTimeout time.Duration `mapstructure:"busyTimeout"`
	// LogQueries logs every statement at info level
	LogQueries bool `mapstructure:"logQueries"`
	// Output is the select output format
	Output string `mapstructure:"output"`
	Log    Log    `mapstructure:"log"`
}

// Log holds logger settings
type Log struct {
	Format string `mapstructure:"format"`
	Debug  bool   `mapstructure:"debug"`
	File   string `mapstructure:"file"`
	Quiet  bool   `mapstructure:"quiet"`
}

var (
	// ErrNoDatabase is returned when no database is configured
	ErrNoDatabase = errors.New("database is required (--database or SQLSHAPE_DATABASE)")
)

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	var errs []error
	switch c.Output {
	case OutputJSON, OutputYAML, OutputTable:
	default:
		errs = append(errs, fmt.Errorf("invalid output format: %q (must be json, yaml or table)", c.Output))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %q (must be text or json)", c.Log.Format))
	}
	if c.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("invalid busy timeout: %s", c.BusyTimeout))
	}
	return errors.Join(errs...)
}
