package sqlshape

import (
	"fmt"
	"sort"

	"github.com/nao1215/sqlshape/domain/model"
)

// DefaultChildrenField is the column Tree.Rows stores child rows under when
// TreeOptions.ChildrenField is empty.
const DefaultChildrenField = "children"

// OrphanPolicy decides what happens to rows whose parent reference points at
// no existing row.
type OrphanPolicy int

const (
	// OrphanPromote makes orphans roots (default)
	OrphanPromote OrphanPolicy = iota
	// OrphanDrop leaves orphans and their descendants out of the tree and
	// lists them in Tree.Dropped
	OrphanDrop
)

// CyclePolicy decides what happens to rows that cannot be reached from any
// root because their parent references form a cycle.
type CyclePolicy int

const (
	// CycleDrop leaves them out of the tree and lists them in Tree.Cyclic (default)
	CycleDrop CyclePolicy = iota
	// CycleError makes BuildTree fail with ErrCycle
	CycleError
	// CycleBreak promotes one row of each cycle to a root, cutting the
	// reference that closes the loop
	CycleBreak
)

// TreeOptions names the columns that link rows into a tree.
type TreeOptions struct {
	// ChildrenField is the column Tree.Rows stores child rows under
	ChildrenField string
	// IDField is the column holding each row's id
	IDField string
	// ParentField is the column referencing the parent's id
	ParentField string
	// Orphans selects the orphan policy
	Orphans OrphanPolicy
	// Cycles selects the cycle policy
	Cycles CyclePolicy
	// Less orders siblings (and roots). Nil keeps input order.
	Less func(a, b Row) bool
}

// Node is a row placed in a tree.
type Node struct {
	Row      Row
	Parent   *Node
	Children []*Node
	// Depth is 0 for roots
	Depth int
}

// Path returns the nodes from the root down to n
func (n *Node) Path() []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IsLeaf reports whether n has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is the result of BuildTree.
type Tree struct {
	// Roots are the top-level nodes
	Roots []*Node
	// Dropped are orphan rows and their descendants removed by OrphanDrop
	Dropped []Row
	// Cyclic are rows left out because of CycleDrop
	Cyclic []Row

	childrenField string
	size          int
}

// validate checks the options and fills in defaults
func (o TreeOptions) validate() (TreeOptions, error) {
	if o.IDField == "" || o.ParentField == "" {
		return o, fmt.Errorf("%w: id and parent fields are required", ErrInvalidTreeOptions)
	}
	if o.IDField == o.ParentField {
		return o, fmt.Errorf("%w: id and parent fields must differ", ErrInvalidTreeOptions)
	}
	if o.ChildrenField == "" {
		o.ChildrenField = DefaultChildrenField
	}
	if o.ChildrenField == o.IDField || o.ChildrenField == o.ParentField {
		return o, fmt.Errorf("%w: children field %q collides with a link field", ErrInvalidTreeOptions, o.ChildrenField)
	}
	switch o.Orphans {
	case OrphanPromote, OrphanDrop:
	default:
		return o, fmt.Errorf("%w: unknown orphan policy %d", ErrInvalidTreeOptions, o.Orphans)
	}
	switch o.Cycles {
	case CycleDrop, CycleError, CycleBreak:
	default:
		return o, fmt.Errorf("%w: unknown cycle policy %d", ErrInvalidTreeOptions, o.Cycles)
	}
	return o, nil
}

// treeBuilder holds the indexes shared by one BuildTree call
type treeBuilder struct {
	rows    []Row
	opts    TreeOptions
	parents []string
	// hasParent[i] is false when row i has no parent reference
	hasParent []bool
	// children maps an id to the indexes of rows referencing it, in input order
	children map[string][]int
	// firstByID maps an id to the first row carrying it
	firstByID map[string]int
	placed    []bool
	size      int
}

// BuildTree links rows into a forest using opts.IDField and opts.ParentField.
//
// Input order is not assumed to be sorted: a child may come before its parent.
// Ids and references are compared after normalization, so an INTEGER id of 3
// matches a TEXT reference "3".
//
// Roots are rows without a parent reference plus, under OrphanPromote, rows
// whose reference matches no id. A NULL, empty, zero or false reference counts
// as no parent, so the "parent_id = 0" convention yields roots. Roots,
// including rows promoted by CycleBreak, keep input order unless Less is set. Every row appears at most once. When several
// rows share an id, the one visited first in pre-order adopts all children
// referencing that id.
//
// The walk uses an explicit stack, so deep chains do not grow the call stack.
// The rows themselves are never modified; use Tree.Rows for nested copies.
func BuildTree(rows []Row, opts TreeOptions) (*Tree, error) {
	opts, err := opts.validate()
	if err != nil {
		return nil, err
	}

	b := newTreeBuilder(rows, opts)
	tree := &Tree{
		Roots:         make([]*Node, 0),
		childrenField: opts.ChildrenField,
	}

	var roots, orphans []int
	for i := range rows {
		if !b.hasParent[i] {
			roots = append(roots, i)
			continue
		}
		if _, ok := b.firstByID[b.parents[i]]; !ok {
			orphans = append(orphans, i)
		}
	}

	switch opts.Orphans {
	case OrphanPromote:
		roots = mergeSorted(roots, orphans)
	case OrphanDrop:
		for _, i := range orphans {
			b.placed[i] = true
		}
	}

	// Claim every root before descending so that no root ends up as
	// another root's child.
	for _, i := range roots {
		b.placed[i] = true
	}
	entries := make([]rootEntry, len(roots))
	for k, i := range roots {
		entries[k] = rootEntry{index: i, node: &Node{Row: rows[i], Children: make([]*Node, 0)}}
	}
	// Descend in sibling order so that duplicate ids are claimed by the
	// first root in the final order.
	ordered := make([]*Node, len(entries))
	for k, e := range entries {
		ordered[k] = e.node
	}
	b.sortNodes(ordered)
	for _, n := range ordered {
		b.descend(n)
	}

	if opts.Orphans == OrphanDrop {
		for _, i := range orphans {
			ghost := &Node{Row: rows[i], Children: make([]*Node, 0)}
			b.descend(ghost)
			walkNodes([]*Node{ghost}, func(n *Node) bool {
				tree.Dropped = append(tree.Dropped, n.Row)
				return true
			})
		}
		b.size -= len(tree.Dropped)
	}

	promoted, err := b.resolveCycles(tree)
	if err != nil {
		return nil, err
	}
	entries = append(entries, promoted...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})
	for _, e := range entries {
		tree.Roots = append(tree.Roots, e.node)
	}
	b.sortNodes(tree.Roots)

	tree.size = b.size
	return tree, nil
}

func newTreeBuilder(rows []Row, opts TreeOptions) *treeBuilder {
	b := &treeBuilder{
		rows:      rows,
		opts:      opts,
		parents:   make([]string, len(rows)),
		hasParent: make([]bool, len(rows)),
		children:  make(map[string][]int),
		firstByID: make(map[string]int),
		placed:    make([]bool, len(rows)),
	}
	for i, row := range rows {
		if id, ok := model.KeyOf(row[opts.IDField]); ok {
			if _, seen := b.firstByID[id]; !seen {
				b.firstByID[id] = i
			}
		}
		if ref, ok := model.KeyOf(row[opts.ParentField]); ok {
			b.parents[i] = ref
			b.hasParent[i] = true
			b.children[ref] = append(b.children[ref], i)
		}
	}
	return b
}

// descend attaches every unclaimed descendant of root, depth first.
func (b *treeBuilder) descend(root *Node) {
	b.size++
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id, ok := model.KeyOf(n.Row[b.opts.IDField])
		if !ok {
			continue
		}
		for _, c := range b.children[id] {
			if b.placed[c] {
				continue
			}
			b.placed[c] = true
			n.Children = append(n.Children, &Node{
				Row:      b.rows[c],
				Parent:   n,
				Children: make([]*Node, 0),
				Depth:    n.Depth + 1,
			})
		}
		b.size += len(n.Children)
		b.sortNodes(n.Children)
		for k := len(n.Children) - 1; k >= 0; k-- {
			stack = append(stack, n.Children[k])
		}
	}
}

// rootEntry pairs a root with its input position
type rootEntry struct {
	index int
	node  *Node
}

// resolveCycles handles rows still unplaced after walking from every root.
// Such a row's ancestor chain never ends at a root, so it leads into a cycle.
// Under CycleBreak it returns the rows promoted to roots.
func (b *treeBuilder) resolveCycles(tree *Tree) ([]rootEntry, error) {
	var pending []int
	for i, placed := range b.placed {
		if !placed {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	switch b.opts.Cycles {
	case CycleError:
		return nil, fmt.Errorf("%w: %d rows are not reachable from any root", ErrCycle, len(pending))
	case CycleDrop:
		for _, i := range pending {
			tree.Cyclic = append(tree.Cyclic, b.rows[i])
		}
		return nil, nil
	}

	var promoted []rootEntry
	for _, i := range pending {
		if b.placed[i] {
			continue
		}
		start := b.cycleMember(i)
		b.placed[start] = true
		root := &Node{Row: b.rows[start], Children: make([]*Node, 0)}
		b.descend(root)
		promoted = append(promoted, rootEntry{index: start, node: root})
	}
	return promoted, nil
}

// cycleMember follows parent references from row i until a row repeats and
// returns that row, which lies on the cycle. Rows on the chain are unplaced,
// so every reference resolves to an unplaced row.
func (b *treeBuilder) cycleMember(i int) int {
	seen := make(map[int]bool)
	cur := i
	for !seen[cur] {
		seen[cur] = true
		next, ok := b.firstByID[b.parents[cur]]
		if !ok || !b.hasParent[cur] {
			return cur
		}
		cur = next
	}
	return cur
}

func (b *treeBuilder) sortNodes(nodes []*Node) {
	if b.opts.Less == nil || len(nodes) < 2 {
		return
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return b.opts.Less(nodes[i].Row, nodes[j].Row)
	})
}

// mergeSorted merges two ascending index lists
func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Len returns the number of nodes in the tree
func (t *Tree) Len() int {
	return t.size
}

// ChildrenField returns the column Rows stores children under
func (t *Tree) ChildrenField() string {
	return t.childrenField
}

// Walk visits every node in pre-order until fn returns false
func (t *Tree) Walk(fn func(n *Node) bool) {
	walkNodes(t.Roots, fn)
}

// Flatten returns every node in pre-order
func (t *Tree) Flatten() []*Node {
	out := make([]*Node, 0, t.size)
	t.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Rows renders the tree as nested row copies. Each copy carries its child
// copies as a []Row under the children field; leaves carry an empty slice.
// The input rows are left untouched.
func (t *Tree) Rows() []Row {
	type frame struct {
		node *Node
		dst  []Row
		idx  int
	}

	out := make([]Row, len(t.Roots))
	stack := make([]frame, 0, len(t.Roots))
	for i := len(t.Roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: t.Roots[i], dst: out, idx: i})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		row := f.node.Row.Clone()
		if row == nil {
			row = make(Row, 1)
		}
		children := make([]Row, len(f.node.Children))
		row[t.childrenField] = children
		f.dst[f.idx] = row

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], dst: children, idx: i})
		}
	}
	return out
}

// walkNodes visits nodes and their descendants in pre-order until fn returns false
func walkNodes(roots []*Node, fn func(n *Node) bool) {
	stack := make([]*Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}
