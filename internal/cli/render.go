package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/sqlshape"
	"github.com/nao1215/sqlshape/internal/config"
)

// renderer prints shaped rows in the configured output format.
// JSON objects have sorted keys; YAML mappings keep column order.
type renderer struct {
	w      io.Writer
	format string
}

func newRenderer(w io.Writer, format string) *renderer {
	return &renderer{w: w, format: format}
}

func (r *renderer) rows(columns []string, rows []sqlshape.Row) error {
	if r.format == config.OutputTable {
		t := r.newTable(columns)
		for _, row := range rows {
			t.AppendRow(tableRow(columns, row))
		}
		t.Render()
		return nil
	}

	doc := make([]any, len(rows))
	for i, row := range rows {
		doc[i] = r.object(columns, row)
	}
	return r.encode(doc)
}

func (r *renderer) groups(columns []string, groups *sqlshape.Groups) error {
	if r.format == config.OutputTable {
		t := r.newTable(append([]string{"group"}, columns...))
		first := true
		groups.Each(func(key string, rows []sqlshape.Row) bool {
			if !first {
				t.AppendSeparator()
			}
			first = false
			for _, row := range rows {
				t.AppendRow(append(table.Row{key}, tableRow(columns, row)...))
			}
			return true
		})
		t.Render()
		return nil
	}

	doc := make([]any, 0, groups.Len())
	groups.Each(func(key string, rows []sqlshape.Row) bool {
		items := make([]any, len(rows))
		for i, row := range rows {
			items[i] = r.object(columns, row)
		}
		doc = append(doc, r.object([]string{"key", "rows"}, sqlshape.Row{"key": key, "rows": items}))
		return true
	})
	return r.encode(doc)
}

func (r *renderer) tree(columns []string, tree *sqlshape.Tree) error {
	childrenField := tree.ChildrenField()
	if r.format == config.OutputTable {
		t := r.newTable(columns)
		tree.Walk(func(n *sqlshape.Node) bool {
			row := tableRow(columns, n.Row)
			if len(row) > 0 {
				row[0] = strings.Repeat("  ", n.Depth) + fmt.Sprint(row[0])
			}
			t.AppendRow(row)
			return true
		})
		t.Render()
		return nil
	}

	fields := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		if c != childrenField {
			fields = append(fields, c)
		}
	}
	fields = append(fields, childrenField)
	type pending struct {
		node *sqlshape.Node
		slot *any
	}
	// Each object holds its children slice before the slice is filled, so
	// the document is built top-down without recursion.
	doc := make([]any, len(tree.Roots))
	stack := make([]pending, 0, len(tree.Roots))
	for i := len(tree.Roots) - 1; i >= 0; i-- {
		stack = append(stack, pending{node: tree.Roots[i], slot: &doc[i]})
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := make([]any, len(p.node.Children))
		row := p.node.Row.Clone()
		if row == nil {
			row = sqlshape.Row{}
		}
		row[childrenField] = children
		*p.slot = r.object(fields, row)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pending{node: p.node.Children[i], slot: &children[i]})
		}
	}
	return r.encode(doc)
}

// object converts row into a JSON object or an ordered YAML mapping.
func (r *renderer) object(columns []string, row sqlshape.Row) any {
	if r.format == config.OutputYAML {
		ms := make(yaml.MapSlice, 0, len(columns))
		for _, c := range columns {
			ms = append(ms, yaml.MapItem{Key: c, Value: displayValue(row[c])})
		}
		return ms
	}
	m := make(map[string]any, len(columns))
	for _, c := range columns {
		m[c] = displayValue(row[c])
	}
	return m
}

func (r *renderer) encode(doc any) error {
	if r.format == config.OutputYAML {
		if len(doc.([]any)) == 0 {
			_, err := io.WriteString(r.w, "[]\n")
			return err
		}
		b, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = r.w.Write(b)
		return err
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (r *renderer) newTable(columns []string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)
	return t
}

func tableRow(columns []string, row sqlshape.Row) table.Row {
	out := make(table.Row, len(columns))
	for i, c := range columns {
		out[i] = cellText(row[c])
	}
	return out
}

// displayValue turns driver values into values both encoders print as text.
func displayValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return v
	}
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}
