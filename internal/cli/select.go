package cli

import (
	"fmt"
	"strings"

	"github.com/nao1215/sqlshape"
	"github.com/spf13/cobra"
)

// Select queries one table and prints the rows, optionally grouped or nested.
func Select() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Select rows from a table",
		Long: `Select rows from a table and print them flat, grouped or as a tree.

Example:
  sqlshape select users -d app.db --where dept=dev --order age --limit 10
  sqlshape select users -d app.db --group-by dept -o table
  sqlshape select categories -d app.db --tree children:id:parent_id -o yaml`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringSlice("fields", nil, "result expressions (default all columns)")
	cmd.Flags().StringArray("where", nil, "equality filter as column=value, repeatable")
	cmd.Flags().String("clause", "", "raw WHERE clause with ? placeholders")
	cmd.Flags().StringArray("param", nil, "value bound to the next ? in --clause, repeatable")
	cmd.Flags().String("order", "", "ORDER BY expression")
	cmd.Flags().Int("limit", 0, "maximum number of rows")
	cmd.Flags().Int("offset", 0, "number of rows to skip")
	cmd.Flags().String("group-by", "", "group rows by this column")
	cmd.Flags().String("tree", "", "build a tree, given as children:id:parent")
	cmd.Flags().String("orphans", "promote", "rows whose parent is missing (promote or drop)")
	cmd.Flags().String("cycles", "drop", "rows on a parent cycle (drop, error or break)")
	cmd.MarkFlagsMutuallyExclusive("group-by", "tree")
	cmd.MarkFlagsMutuallyExclusive("where", "clause")

	return NewCommand(cmd, []commandLineFlag{outputFlag}, runSelect)
}

func runSelect(ctx *Context, args []string) error {
	q, err := selectQueryFromFlags(ctx.Command, args[0])
	if err != nil {
		return err
	}

	groupBy, _ := ctx.Command.Flags().GetString("group-by")
	treeSpec, _ := ctx.Command.Flags().GetString("tree")
	var treeOpts sqlshape.TreeOptions
	if treeSpec != "" {
		if treeOpts, err = treeOptionsFromFlags(ctx.Command, treeSpec); err != nil {
			return err
		}
	}

	db, err := ctx.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	columns, rows, err := db.SelectColumns(ctx, q)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("Rows selected", "table", q.Table, "rows", len(rows))

	r := newRenderer(ctx.Out(), ctx.Config.Output)
	switch {
	case groupBy != "":
		return r.groups(columns, sqlshape.GroupBy(rows, groupBy))
	case treeSpec != "":
		tree, err := sqlshape.BuildTree(rows, treeOpts)
		if err != nil {
			return err
		}
		if len(tree.Dropped) > 0 || len(tree.Cyclic) > 0 {
			ctx.Logger.Warn("Rows left out of tree", "orphans", len(tree.Dropped), "cyclic", len(tree.Cyclic))
		}
		return r.tree(columns, tree)
	default:
		return r.rows(columns, rows)
	}
}

func selectQueryFromFlags(cmd *cobra.Command, table string) (sqlshape.SelectQuery, error) {
	flags := cmd.Flags()
	fields, _ := flags.GetStringSlice("fields")
	wheres, _ := flags.GetStringArray("where")
	clause, _ := flags.GetString("clause")
	params, _ := flags.GetStringArray("param")
	order, _ := flags.GetString("order")
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")

	b := sqlshape.NewQuery(table).OrderBy(order).Limit(limit).Offset(offset)
	if len(fields) > 0 {
		b.Fields(fields...)
	}
	for _, w := range wheres {
		column, value, ok := strings.Cut(w, "=")
		if !ok {
			return sqlshape.SelectQuery{}, fmt.Errorf("invalid --where %q: expected column=value", w)
		}
		b.WhereEq(strings.TrimSpace(column), value)
	}
	if clause != "" {
		bound := make([]any, len(params))
		for i, p := range params {
			bound[i] = p
		}
		b.Where(clause, bound...)
	} else if len(params) > 0 {
		return sqlshape.SelectQuery{}, fmt.Errorf("--param requires --clause")
	}
	return b.Build()
}

func treeOptionsFromFlags(cmd *cobra.Command, spec string) (sqlshape.TreeOptions, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return sqlshape.TreeOptions{}, fmt.Errorf("invalid --tree %q: expected children:id:parent", spec)
	}
	opts := sqlshape.TreeOptions{
		ChildrenField: parts[0],
		IDField:       parts[1],
		ParentField:   parts[2],
	}

	orphans, _ := cmd.Flags().GetString("orphans")
	switch strings.ToLower(orphans) {
	case "promote":
		opts.Orphans = sqlshape.OrphanPromote
	case "drop":
		opts.Orphans = sqlshape.OrphanDrop
	default:
		return opts, fmt.Errorf("invalid --orphans %q: must be promote or drop", orphans)
	}

	cycles, _ := cmd.Flags().GetString("cycles")
	switch strings.ToLower(cycles) {
	case "drop":
		opts.Cycles = sqlshape.CycleDrop
	case "error":
		opts.Cycles = sqlshape.CycleError
	case "break":
		opts.Cycles = sqlshape.CycleBreak
	default:
		return opts, fmt.Errorf("invalid --cycles %q: must be drop, error or break", cycles)
	}
	return opts, nil
}
