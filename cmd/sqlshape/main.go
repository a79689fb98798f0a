// Command sqlshape queries SQLite databases and prints the rows flat,
// grouped or as parent/child trees.
package main

import (
	"os"

	"github.com/nao1215/sqlshape/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
