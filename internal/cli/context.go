package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/sqlshape"
	"github.com/nao1215/sqlshape/internal/config"
	"github.com/nao1215/sqlshape/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Context holds what a command needs while it runs.
type Context struct {
	context.Context

	Command *cobra.Command
	Config  *config.Config
	Logger  *slog.Logger

	logFile *os.File
}

// NewContext loads the configuration for cmd and sets up logging.
func NewContext(cmd *cobra.Command, flags []commandLineFlag) (*Context, error) {
	v := viper.New()
	if err := bindFlags(v, cmd, flags...); err != nil {
		return nil, err
	}

	loaderOpts := []config.LoaderOption{config.WithViper(v)}
	if path, _ := cmd.Flags().GetString(configFlag.name); path != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(path))
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts := []logger.Option{
		logger.WithConsole(cmd.ErrOrStderr()),
		logger.WithFormat(cfg.Log.Format),
	}
	if cfg.Log.Debug {
		opts = append(opts, logger.WithDebug())
	}
	if cfg.Log.Quiet {
		opts = append(opts, logger.WithQuiet())
	}

	var logFile *os.File
	if cfg.Log.File != "" {
		logFile, err = os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Log.File, err)
		}
		opts = append(opts, logger.WithWriter(logFile))
	}

	log := logger.NewLogger(opts...)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return &Context{
		Context: logger.WithLogger(ctx, log),
		Command: cmd,
		Config:  cfg,
		Logger:  log,
		logFile: logFile,
	}, nil
}

// Out is where command results are written.
func (c *Context) Out() io.Writer {
	return c.Command.OutOrStdout()
}

// OpenDB opens the configured database.
func (c *Context) OpenDB() (*sqlshape.DB, error) {
	if c.Config.Database == "" {
		return nil, config.ErrNoDatabase
	}
	opts := []sqlshape.Option{
		sqlshape.WithLogger(c.Logger),
		sqlshape.WithQueryLogging(c.Config.LogQueries),
		sqlshape.WithBusyTimeout(c.Config.BusyTimeout),
	}
	if c.Config.ReadOnly {
		opts = append(opts, sqlshape.WithReadOnly())
	}
	return sqlshape.OpenContext(c, c.Config.Database, opts...)
}

// Close releases the log file.
func (c *Context) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// NewCommand wires runFunc into cmd with a Context built from the command
// line flags and configuration.
func NewCommand(cmd *cobra.Command, flags []commandLineFlag, runFunc func(ctx *Context, args []string) error) *cobra.Command {
	initFlags(cmd, flags...)

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		ctx, err := NewContext(cmd, flags)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, ctx.Close())
		}()

		if err := runFunc(ctx, args); err != nil {
			ctx.Logger.Debug("Command failed", "command", cmd.Name(), "err", err)
			return err
		}
		return nil
	}
	return cmd
}
