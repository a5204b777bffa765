package tree

import (
	"strings"

	"jewelry/catalog/internal/domain"
)

// Filter prunes the forest to nodes whose name contains term
// (case-insensitive) and their ancestors. A matching node keeps all of its
// original children; a non-matching ancestor keeps only the surviving ones.
// An empty term returns roots unchanged.
func Filter(roots []*domain.CategoryNode, term string) []*domain.CategoryNode {
	if term == "" {
		return roots
	}
	return filterNodes(roots, strings.ToLower(term))
}

// Matches reports whether the node's name contains term, ignoring case
func Matches(node *domain.CategoryNode, term string) bool {
	return strings.Contains(strings.ToLower(node.Name), strings.ToLower(term))
}

func filterNodes(nodes []*domain.CategoryNode, needle string) []*domain.CategoryNode {
	result := make([]*domain.CategoryNode, 0)
	for _, node := range nodes {
		if strings.Contains(strings.ToLower(node.Name), needle) {
			result = append(result, node.Clone())
			continue
		}

		children := filterNodes(node.Children, needle)
		if len(children) > 0 {
			clone := node.Clone()
			clone.Children = children
			result = append(result, clone)
		}
	}
	return result
}
