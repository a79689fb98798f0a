// Package cli implements the sqlshape command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the sqlshape command with all subcommands attached.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "sqlshape",
		Short: "Query SQLite and shape the rows into groups and trees",
		Long: `sqlshape runs descriptor-built SQL against a SQLite database and prints
the rows flat, grouped by a column, or nested as a parent/child tree.

Settings are read from flags, SQLSHAPE_* environment variables, a .env file
and sqlshape.yaml, in that order of priority.`,
		SilenceUsage: true,
	}
	initPersistentFlags(root, globalFlags...)

	root.AddCommand(
		Select(),
		Exec(),
		Dump(),
		Version(version),
	)
	return root
}
