package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sqlshape"
	"github.com/spf13/cobra"
)

// Exec runs a SQL script against the database.
func Exec() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [file]",
		Short: "Run a SQL script",
		Long: `Run a SQL script read from a file, from --sql, or from standard input.

Script files may be compressed with gzip, bzip2, xz or zstandard; the
compression is detected from the file extension.

Example:
  sqlshape exec -d app.db schema.sql
  sqlshape exec -d app.db seed.sql.gz
  sqlshape exec -d app.db --sql "DELETE FROM sessions"`,
		Args: cobra.MaximumNArgs(1),
	}
	cmd.Flags().String("sql", "", "inline SQL to run instead of a file")

	return NewCommand(cmd, nil, runExec)
}

func runExec(ctx *Context, args []string) error {
	script, source, err := readScript(ctx.Command, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("no SQL to run from %s", source)
	}

	db, err := ctx.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Exec(ctx, script); err != nil {
		return err
	}
	ctx.Logger.Info("Script executed", "source", source, "database", ctx.Config.Database)
	return nil
}

// readScript returns the script text and a description of where it came from.
func readScript(cmd *cobra.Command, args []string) (string, string, error) {
	inline, _ := cmd.Flags().GetString("sql")
	if inline != "" {
		if len(args) > 0 {
			return "", "", errors.New("--sql cannot be combined with a script file")
		}
		return inline, "--sql", nil
	}

	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	path := args[0]
	reader, err := sqlshape.OpenCompressed(path)
	if err != nil {
		return "", "", err
	}
	defer reader.Close() //nolint:errcheck

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), path, nil
}
