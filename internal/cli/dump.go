package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/sqlshape"
	"github.com/spf13/cobra"
)

// Dump exports tables to files.
func Dump() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export tables as CSV, TSV, LTSV, Parquet or XLSX",
		Long: `Export tables into a directory, one file per table, or a single table
into one file whose format and compression follow its name.

Example:
  sqlshape dump -d app.db --dir out --format tsv --compression zstd
  sqlshape dump -d app.db --dir out --table users --table orders
  sqlshape dump -d app.db --query-table users --out users.parquet`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().String("dir", "", "output directory")
	cmd.Flags().StringArray("table", nil, "table to export, repeatable (default all tables)")
	cmd.Flags().String("format", "csv", "file format (csv, tsv, ltsv, parquet or xlsx)")
	cmd.Flags().String("compression", "none", "compression (none, gz, xz or zstd)")
	cmd.Flags().String("query-table", "", "table to export into --out")
	cmd.Flags().String("out", "", "output file; the extension selects format and compression")
	cmd.MarkFlagsMutuallyExclusive("dir", "out")
	cmd.MarkFlagsRequiredTogether("query-table", "out")

	return NewCommand(cmd, nil, runDump)
}

func runDump(ctx *Context, _ []string) error {
	flags := ctx.Command.Flags()
	out, _ := flags.GetString("out")
	dir, _ := flags.GetString("dir")
	if out == "" && dir == "" {
		return errors.New("either --dir or --query-table with --out is required")
	}

	db, err := ctx.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if out != "" {
		table, _ := flags.GetString("query-table")
		return dumpToFile(ctx, db, table, out)
	}

	opts, err := dumpOptionsFromFlags(ctx.Command)
	if err != nil {
		return err
	}

	tables, _ := flags.GetStringArray("table")
	var paths []string
	if len(tables) == 0 {
		if paths, err = db.DumpDatabase(ctx, dir, opts); err != nil {
			return err
		}
	} else {
		for _, table := range tables {
			path, err := db.DumpTable(ctx, table, dir, opts)
			if err != nil {
				return err
			}
			paths = append(paths, path)
		}
	}

	for _, path := range paths {
		fmt.Fprintln(ctx.Out(), path)
	}
	ctx.Logger.Info("Tables exported", "count", len(paths), "dir", dir)
	return nil
}

func dumpToFile(ctx *Context, db *sqlshape.DB, table, path string) (err error) {
	opts, err := sqlshape.DumpOptionsForFile(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := db.DumpQuery(ctx, f, sqlshape.SelectQuery{Table: table}, opts); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out(), path)
	return nil
}

func dumpOptionsFromFlags(cmd *cobra.Command) (sqlshape.DumpOptions, error) {
	formatName, _ := cmd.Flags().GetString("format")
	compressionName, _ := cmd.Flags().GetString("compression")

	format, err := sqlshape.ParseOutputFormat(formatName)
	if err != nil {
		return sqlshape.DumpOptions{}, err
	}
	compression, err := sqlshape.ParseCompressionType(compressionName)
	if err != nil {
		return sqlshape.DumpOptions{}, err
	}
	return sqlshape.NewDumpOptions().WithFormat(format).WithCompression(compression), nil
}
