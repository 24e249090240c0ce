// Package tree converts between the flat persisted rows of a budget plan and
// the nested forest the rest of the system works with.
package tree

import (
	"sort"

	"github.com/alexanderramin/sisara/internal/domain"
)

// index groups rows by parent id. Roots live under the empty key. Each
// sibling group is sorted by order; ties keep input order.
type index map[string][]*domain.LineItem

func newIndex(rows []*domain.LineItem) index {
	idx := make(index, len(rows))
	for _, r := range rows {
		key := r.ParentKey()
		idx[key] = append(idx[key], r)
	}
	for _, siblings := range idx {
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].Order < siblings[j].Order
		})
	}
	return idx
}

// Build assembles the forest hanging under rootParentID (nil for the top
// level) from a single slice of rows. Every node gets a non-nil Children
// slice. Rows whose parent is missing, or that sit on a parent cycle, are
// not reachable and are left out.
func Build(rows []*domain.LineItem, rootParentID *string) []*domain.TreeNode {
	idx := newIndex(rows)
	key := ""
	if rootParentID != nil {
		key = *rootParentID
	}
	visited := make(map[string]bool, len(rows))
	if rootParentID != nil {
		visited[key] = true
	}
	return idx.assemble(key, visited)
}

func (idx index) assemble(parentKey string, visited map[string]bool) []*domain.TreeNode {
	siblings := idx[parentKey]
	nodes := make([]*domain.TreeNode, 0, len(siblings))
	for _, r := range siblings {
		if visited[r.ID] {
			continue
		}
		visited[r.ID] = true
		node := r.ToNode()
		node.Children = idx.assemble(r.ID, visited)
		nodes = append(nodes, node)
	}
	return nodes
}

// Subtree returns the node with the given id together with its descendants.
func Subtree(rows []*domain.LineItem, id string) (*domain.TreeNode, bool) {
	for _, r := range rows {
		if r.ID == id {
			node := r.ToNode()
			node.Children = Build(rows, &id)
			return node, true
		}
	}
	return nil, false
}

// Descendants returns id followed by the ids of every row below it, in
// breadth-first order. The result is empty when id is not among rows.
func Descendants(rows []*domain.LineItem, id string) []string {
	idx := newIndex(rows)
	found := false
	for _, r := range rows {
		if r.ID == id {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	seen := map[string]bool{id: true}
	out := []string{id}
	for i := 0; i < len(out); i++ {
		for _, child := range idx[out[i]] {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, child.ID)
		}
	}
	return out
}

// Orphans returns the rows Build cannot reach from the top level, in input
// order.
func Orphans(rows []*domain.LineItem) []*domain.LineItem {
	reachable := make(map[string]bool, len(rows))
	var mark func(nodes []*domain.TreeNode)
	mark = func(nodes []*domain.TreeNode) {
		for _, n := range nodes {
			reachable[n.ID] = true
			mark(n.Children)
		}
	}
	mark(Build(rows, nil))

	var out []*domain.LineItem
	for _, r := range rows {
		if !reachable[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of nodes in the forest.
func Count(forest []*domain.TreeNode) int {
	n := 0
	for _, node := range forest {
		n += 1 + Count(node.Children)
	}
	return n
}
