package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version prints the binary version.
func Version(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the binary version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
