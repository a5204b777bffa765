// Package navigator keeps the view state of the category tree: which nodes
// are expanded, the active search and the selection.
package navigator

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/editor"
	"jewelry/catalog/internal/tree"
)

// Row is one visible line of the tree
type Row struct {
	Node        *domain.CategoryNode
	Depth       int
	Expanded    bool
	HasChildren bool
	Editing     bool
	Staged      string
}

type Navigator struct {
	mu       sync.RWMutex
	forest   *tree.Forest
	expanded map[string]bool
	search   string
	selected string
	editor   *editor.RenameEditor
}

// New returns an empty navigator. ed may be nil when renaming is not needed.
func New(ed *editor.RenameEditor) *Navigator {
	return &Navigator{
		forest:   tree.Build(nil),
		expanded: make(map[string]bool),
		editor:   ed,
	}
}

// Load replaces the tree with one built from records. Expansion and
// selection survive for ids that still exist.
func (n *Navigator) Load(records []domain.CategoryRecord) tree.Report {
	forest := tree.Build(records)

	n.mu.Lock()
	defer n.mu.Unlock()

	n.forest = forest
	for id := range n.expanded {
		if tree.Find(forest.Roots, id) == nil {
			delete(n.expanded, id)
		}
	}
	if n.selected != "" && tree.Find(forest.Roots, n.selected) == nil {
		n.selected = ""
	}
	return forest.Report
}

// Roots returns the full, unfiltered forest
func (n *Navigator) Roots() []*domain.CategoryNode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.forest.Roots
}

func (n *Navigator) Report() tree.Report {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.forest.Report
}

func (n *Navigator) Toggle(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.expanded[id] {
		delete(n.expanded, id)
		return
	}
	n.expanded[id] = true
}

func (n *Navigator) Expand(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expanded[id] = true
}

func (n *Navigator) Collapse(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.expanded, id)
}

// ExpandAll expands every node that has children
func (n *Navigator) ExpandAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	tree.Walk(n.forest.Roots, func(node *domain.CategoryNode, _ int) bool {
		if len(node.Children) > 0 {
			n.expanded[node.ID] = true
		}
		return true
	})
}

func (n *Navigator) CollapseAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expanded = make(map[string]bool)
}

func (n *Navigator) IsExpanded(id string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.expanded[id]
}

// SetSearch filters the visible tree. An empty term shows everything again.
func (n *Navigator) SetSearch(term string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.search = term
}

func (n *Navigator) Search() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.search
}

// Visible returns the rows currently shown, depth-first. While a search is
// active every matching branch is shown expanded.
func (n *Navigator) Visible() []Row {
	editingID, staged := "", ""
	if n.editor != nil && n.editor.State() == editor.Editing {
		editingID, staged = n.editor.EditingID(), n.editor.Staged()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	searching := n.search != ""
	roots := tree.Filter(n.forest.Roots, n.search)

	rows := make([]Row, 0, tree.Count(roots))
	tree.Walk(roots, func(node *domain.CategoryNode, depth int) bool {
		expanded := searching || n.expanded[node.ID]
		row := Row{
			Node:        node,
			Depth:       depth,
			Expanded:    expanded && len(node.Children) > 0,
			HasChildren: len(node.Children) > 0,
			Editing:     node.ID == editingID,
		}
		if row.Editing {
			row.Staged = staged
		}
		rows = append(rows, row)
		return expanded
	})
	return rows
}

// Select marks id as the category the form works on
func (n *Navigator) Select(id string) (domain.CategoryRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	node := tree.Find(n.forest.Roots, id)
	if node == nil {
		return domain.CategoryRecord{}, fmt.Errorf("category %s not found", id)
	}
	n.selected = id
	return node.CategoryRecord, nil
}

func (n *Navigator) Selected() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.selected
}

// StartRename puts the node into editing state with its current name staged
func (n *Navigator) StartRename(id string) error {
	if n.editor == nil {
		return fmt.Errorf("renaming is not enabled")
	}

	n.mu.RLock()
	node := tree.Find(n.forest.Roots, id)
	n.mu.RUnlock()
	if node == nil {
		return fmt.Errorf("category %s not found", id)
	}

	n.editor.StartEdit(id, node.Name)
	return nil
}

// Render writes the visible rows as an indented text tree
func (n *Navigator) Render(w io.Writer) error {
	rows := n.Visible()
	if len(rows) == 0 {
		_, err := io.WriteString(w, "(no categories)\n")
		return err
	}

	for _, row := range rows {
		if _, err := io.WriteString(w, renderRow(row)); err != nil {
			return err
		}
	}
	return nil
}

func renderRow(row Row) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", row.Depth))

	switch {
	case row.Expanded:
		b.WriteString("▾ ")
	case row.HasChildren:
		b.WriteString("▸ ")
	default:
		b.WriteString("• ")
	}

	if row.Editing {
		fmt.Fprintf(&b, "✎ %q", row.Staged)
	} else {
		b.WriteString(row.Node.Name)
	}
	fmt.Fprintf(&b, " (%s)", row.Node.ID)

	if row.HasChildren && !row.Expanded {
		fmt.Fprintf(&b, " +%d", len(row.Node.Children))
	}
	if row.Node.Orphaned {
		b.WriteString(" [orphaned]")
	}
	if row.Node.InCycle {
		b.WriteString(" [cycle]")
	}
	b.WriteString("\n")
	return b.String()
}
