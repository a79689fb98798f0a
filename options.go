package sqlshape

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// config collects the settings applied by Option values
type config struct {
	logger      *slog.Logger
	logQueries  bool
	readOnly    bool
	pragmas     []string
	busyTimeout time.Duration
}

// Option configures a DB
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}

// WithLogger sets the logger used for query logging.
// Without it the DB logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithQueryLogging logs every statement together with its arguments and
// elapsed time. It can be toggled later with DB.SetQueryLogging.
func WithQueryLogging(enabled bool) Option {
	return func(c *config) {
		c.logQueries = enabled
	}
}

// WithReadOnly opens the database file in read-only mode
func WithReadOnly() Option {
	return func(c *config) {
		c.readOnly = true
	}
}

// WithPragma runs a pragma on every new connection, e.g. WithPragma("foreign_keys(1)")
func WithPragma(pragma string) Option {
	return func(c *config) {
		c.pragmas = append(c.pragmas, pragma)
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database before failing
func WithBusyTimeout(d time.Duration) Option {
	return func(c *config) {
		c.busyTimeout = d
	}
}

// dsnPragmas returns the pragmas including the busy timeout
func (c *config) dsnPragmas() []string {
	pragmas := make([]string, 0, len(c.pragmas)+1)
	pragmas = append(pragmas, c.pragmas...)
	if c.busyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("busy_timeout(%d)", c.busyTimeout.Milliseconds()))
	}
	return pragmas
}
