package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// commandLineFlag describes a flag that is also a configuration key.
type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	// key is the configuration key the flag overrides
	key    string
	isBool bool
}

var (
	configFlag = commandLineFlag{
		name:  "config",
		usage: "config file (default is ./sqlshape.yaml or $XDG_CONFIG_HOME/sqlshape/sqlshape.yaml)",
	}
	databaseFlag = commandLineFlag{
		name:      "database",
		shorthand: "d",
		usage:     "SQLite database file, or :memory:",
		key:       "database",
	}
	readOnlyFlag = commandLineFlag{
		name:   "read-only",
		usage:  "open the database file read-only",
		key:    "readOnly",
		isBool: true,
	}
	logFormatFlag = commandLineFlag{
		name:  "log-format",
		usage: "log format (text or json)",
		key:   "log.format",
	}
	debugFlag = commandLineFlag{
		name:   "debug",
		usage:  "enable debug logging",
		key:    "log.debug",
		isBool: true,
	}
	logFileFlag = commandLineFlag{
		name:  "log-file",
		usage: "also append logs to this file",
		key:   "log.file",
	}
	logQueriesFlag = commandLineFlag{
		name:   "log-queries",
		usage:  "log every SQL statement",
		key:    "logQueries",
		isBool: true,
	}
	quietFlag = commandLineFlag{
		name:      "quiet",
		shorthand: "q",
		usage:     "suppress log output on stderr",
		key:       "log.quiet",
		isBool:    true,
	}
	outputFlag = commandLineFlag{
		name:      "output",
		shorthand: "o",
		usage:     "output format (json, yaml or table)",
		key:       "output",
	}
)

// globalFlags are persistent flags available to every subcommand
var globalFlags = []commandLineFlag{
	configFlag,
	databaseFlag,
	readOnlyFlag,
	logFormatFlag,
	debugFlag,
	logFileFlag,
	logQueriesFlag,
	quietFlag,
}

func initPersistentFlags(cmd *cobra.Command, flags ...commandLineFlag) {
	for _, flag := range flags {
		addFlag(cmd, true, flag)
	}
}

func initFlags(cmd *cobra.Command, flags ...commandLineFlag) {
	for _, flag := range flags {
		addFlag(cmd, false, flag)
	}
}

func addFlag(cmd *cobra.Command, persistent bool, flag commandLineFlag) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	if flag.isBool {
		fs.BoolP(flag.name, flag.shorthand, false, flag.usage)
		return
	}
	fs.StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
}

// bindFlags binds every configuration flag known to cmd to its key in v.
func bindFlags(v *viper.Viper, cmd *cobra.Command, flags ...commandLineFlag) error {
	for _, flag := range append(append([]commandLineFlag{}, globalFlags...), flags...) {
		if flag.key == "" {
			continue
		}
		pf := cmd.Flags().Lookup(flag.name)
		if pf == nil {
			continue
		}
		if err := v.BindPFlag(flag.key, pf); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.name, err)
		}
	}
	return nil
}
