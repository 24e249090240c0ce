package tree

import (
	"time"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/google/uuid"
)

// Flatten turns a forest into persistable rows in depth-first pre-order.
// Each node's order is its position among its siblings and its parent comes
// from the nesting; the top level hangs under parentID. Node ids are kept
// when set and generated otherwise. The input is not modified.
func Flatten(forest []*domain.TreeNode, parentID *string) []*domain.LineItem {
	now := time.Now().UTC()
	rows := make([]*domain.LineItem, 0, Count(forest))
	var walk func(nodes []*domain.TreeNode, parent *string)
	walk = func(nodes []*domain.TreeNode, parent *string) {
		for pos, n := range nodes {
			id := n.ID
			if id == "" {
				id = uuid.New().String()
			}
			row := &domain.LineItem{
				ID:             id,
				LineItemFields: n.LineItemFields.Clone(),
				ParentID:       copyID(parent),
				Order:          pos,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			rows = append(rows, row)
			walk(n.Children, &row.ID)
		}
	}
	walk(forest, parentID)
	return rows
}

// DuplicateIDs returns every explicit node id that occurs more than once in
// the forest, each reported once.
func DuplicateIDs(forest []*domain.TreeNode) []string {
	seen := map[string]int{}
	var dups []string
	var walk func(nodes []*domain.TreeNode)
	walk = func(nodes []*domain.TreeNode) {
		for _, n := range nodes {
			if n.ID != "" {
				seen[n.ID]++
				if seen[n.ID] == 2 {
					dups = append(dups, n.ID)
				}
			}
			walk(n.Children)
		}
	}
	walk(forest)
	return dups
}

// CloneSubtree deep-copies the row with the given id and all its
// descendants. Every clone gets a fresh id and parent links are remapped to
// the clones; the clone of id keeps the original parent and every row keeps
// its order. It returns nil when id is not among rows.
func CloneSubtree(rows []*domain.LineItem, id string) []*domain.LineItem {
	ids := Descendants(rows, id)
	if len(ids) == 0 {
		return nil
	}
	byID := make(map[string]*domain.LineItem, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	now := time.Now().UTC()
	remap := make(map[string]string, len(ids))
	clones := make([]*domain.LineItem, 0, len(ids))
	for _, oldID := range ids {
		src := byID[oldID]
		newID := uuid.New().String()
		remap[oldID] = newID

		parent := copyID(src.ParentID)
		if oldID != id {
			mapped := remap[src.ParentKey()]
			parent = &mapped
		}
		clones = append(clones, &domain.LineItem{
			ID:             newID,
			LineItemFields: src.LineItemFields.Clone(),
			ParentID:       parent,
			Order:          src.Order,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return clones
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
