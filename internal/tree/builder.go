// Package tree turns flat category records into a hierarchy and filters it.
package tree

import (
	"fmt"
	"strings"

	"jewelry/catalog/internal/domain"
)

// Forest is the result of building the category hierarchy
type Forest struct {
	Roots  []*domain.CategoryNode
	Report Report
}

// Report lists the data problems found while building
type Report struct {
	Orphans      []string   // ids whose parent is not in the fetched set
	Cycles       [][]string // each cycle, starting at the member promoted to root
	Duplicates   []string   // ids seen more than once; the first record wins
	Unidentified int        // records without an id, skipped
}

// Clean reports whether the input needed no fallbacks
func (r Report) Clean() bool {
	return len(r.Orphans) == 0 && len(r.Cycles) == 0 && len(r.Duplicates) == 0 && r.Unidentified == 0
}

// Err returns a *CycleError when parent cycles were found
func (r Report) Err() error {
	if len(r.Cycles) == 0 {
		return nil
	}
	return &CycleError{Cycles: r.Cycles}
}

// CycleError describes parent references that loop back on themselves
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, cycle := range e.Cycles {
		parts = append(parts, strings.Join(cycle, " -> ")+" -> "+cycle[0])
	}
	return fmt.Sprintf("category parent cycle detected: %s", strings.Join(parts, "; "))
}

const (
	unvisited = iota
	visiting
	visited
)

// Build links records into a forest in a single pass over a lookup map.
// Sibling order follows input order. A record whose parent is unknown becomes
// a root marked Orphaned; one member of every parent cycle becomes a root
// marked InCycle, so every distinct id appears exactly once.
func Build(records []domain.CategoryRecord) *Forest {
	forest := &Forest{Roots: make([]*domain.CategoryNode, 0)}
	if len(records) == 0 {
		return forest
	}

	nodes := make(map[string]*domain.CategoryNode, len(records))
	order := make([]*domain.CategoryNode, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			forest.Report.Unidentified++
			continue
		}
		if _, exists := nodes[record.ID]; exists {
			forest.Report.Duplicates = append(forest.Report.Duplicates, record.ID)
			continue
		}

		node := &domain.CategoryNode{
			CategoryRecord: record,
			Children:       make([]*domain.CategoryNode, 0),
		}
		nodes[record.ID] = node
		order = append(order, node)
	}

	breakers := findCycles(order, nodes, &forest.Report)

	for _, node := range order {
		if node.ParentID == "" {
			forest.Roots = append(forest.Roots, node)
			continue
		}

		if breakers[node.ID] {
			node.InCycle = true
			forest.Roots = append(forest.Roots, node)
			continue
		}

		parent, ok := nodes[node.ParentID]
		if !ok {
			node.Orphaned = true
			forest.Report.Orphans = append(forest.Report.Orphans, node.ID)
			forest.Roots = append(forest.Roots, node)
			continue
		}

		parent.Children = append(parent.Children, node)
	}

	return forest
}

// findCycles walks every parent chain once and returns the ids that must be
// detached from their parent to break the cycles found.
func findCycles(order []*domain.CategoryNode, nodes map[string]*domain.CategoryNode, report *Report) map[string]bool {
	position := make(map[string]int, len(order))
	for i, node := range order {
		position[node.ID] = i
	}

	state := make(map[string]int, len(order))
	breakers := make(map[string]bool)

	for _, start := range order {
		if state[start.ID] != unvisited {
			continue
		}

		var path []*domain.CategoryNode
		current := start
		for {
			state[current.ID] = visiting
			path = append(path, current)

			if current.ParentID == "" {
				break
			}
			parent, ok := nodes[current.ParentID]
			if !ok || state[parent.ID] == visited {
				break
			}
			if state[parent.ID] == visiting {
				cycle := cycleFrom(path, parent, position)
				breakers[cycle[0]] = true
				report.Cycles = append(report.Cycles, cycle)
				break
			}
			current = parent
		}

		for _, node := range path {
			state[node.ID] = visited
		}
	}

	return breakers
}

// cycleFrom extracts the loop that re-enters path at entry and rotates it so
// the member that came first in the input leads.
func cycleFrom(path []*domain.CategoryNode, entry *domain.CategoryNode, position map[string]int) []string {
	start := 0
	for i, node := range path {
		if node.ID == entry.ID {
			start = i
			break
		}
	}

	members := path[start:]
	lead := 0
	for i, node := range members {
		if position[node.ID] < position[members[lead].ID] {
			lead = i
		}
	}

	cycle := make([]string, 0, len(members))
	for i := range members {
		cycle = append(cycle, members[(lead+i)%len(members)].ID)
	}
	return cycle
}

// Count returns the number of nodes in the forest
func Count(roots []*domain.CategoryNode) int {
	total := 0
	Walk(roots, func(*domain.CategoryNode, int) bool {
		total++
		return true
	})
	return total
}

// Walk visits nodes depth-first. Returning false from fn skips the node's children.
func Walk(roots []*domain.CategoryNode, fn func(node *domain.CategoryNode, depth int) bool) {
	var walk func(nodes []*domain.CategoryNode, depth int)
	walk = func(nodes []*domain.CategoryNode, depth int) {
		for _, node := range nodes {
			if fn(node, depth) {
				walk(node.Children, depth+1)
			}
		}
	}
	walk(roots, 0)
}

// Find returns the node with the given id
func Find(roots []*domain.CategoryNode, id string) *domain.CategoryNode {
	var found *domain.CategoryNode
	Walk(roots, func(node *domain.CategoryNode, _ int) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}
