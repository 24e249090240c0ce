package formatter

import (
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a rendered tree.
type TreeItem struct {
	ID     string
	Title  string
	Level  int
	IsLast bool
	// Ancestors holds IsLast for each enclosing level, outermost first.
	Ancestors []bool
	Status    domain.ChangeStatus
	Detail    string
	Collapsed bool
	HasKids   bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// ForestItems walks a forest depth-first and returns one TreeItem per node.
// Children of nodes marked closed are skipped when honourOpen is set.
func ForestItems(forest []*domain.TreeNode, honourOpen bool) []TreeItem {
	var items []TreeItem
	var walk func(nodes []*domain.TreeNode, level int, ancestors []bool)
	walk = func(nodes []*domain.TreeNode, level int, ancestors []bool) {
		for i, n := range nodes {
			last := i == len(nodes)-1
			collapsed := honourOpen && !n.Open() && len(n.Children) > 0
			items = append(items, TreeItem{
				ID:        n.ID,
				Title:     nodeTitle(n),
				Level:     level,
				IsLast:    last,
				Ancestors: ancestors,
				Status:    domain.ChangeStatusOf(n.LineItemFields),
				Detail:    amountDetail(n.LineItemFields),
				Collapsed: collapsed,
				HasKids:   len(n.Children) > 0,
			})
			if collapsed {
				continue
			}
			next := make([]bool, len(ancestors), len(ancestors)+1)
			copy(next, ancestors)
			walk(n.Children, level+1, append(next, last))
		}
	}
	walk(forest, 0, nil)
	return items
}

func nodeTitle(n *domain.TreeNode) string {
	title := n.Code
	if n.Description != "" {
		if title != "" {
			title += " "
		}
		title += n.Description
	}
	return KindLabel(n.Kind) + " " + title
}

// amountDetail shows the after amount, falling back to before for lines
// that were removed in the revision.
func amountDetail(f domain.LineItemFields) string {
	switch {
	case f.AfterAmount != nil:
		return Rupiah(f.AfterAmount.Total)
	case f.BeforeAmount != nil:
		return Rupiah(f.BeforeAmount.Total)
	default:
		return ""
	}
}

// treePrefix draws the connectors for an item. Levels below a last child
// get blank space instead of a pipe.
func treePrefix(item TreeItem) string {
	if item.Level == 0 {
		return ""
	}
	var b strings.Builder
	// Ancestors[0] is the root level, which draws no connector.
	for i := 1; i < item.Level && i < len(item.Ancestors); i++ {
		if item.Ancestors[i] {
			b.WriteString(treeBlank)
		} else {
			b.WriteString(treePipe)
		}
	}
	if item.IsLast {
		b.WriteString(treeCorner)
	} else {
		b.WriteString(treeBranch)
	}
	return b.String()
}

// RenderLine renders a single tree line without the amount column.
func RenderLine(item TreeItem) string {
	marker := ""
	if item.Collapsed {
		marker = StyleDim.Render("▸ ")
	}
	line := treePrefix(item) + marker + ChangeStyle(item.Status).Render(item.Title)
	if badge := ChangeBadge(item.Status); badge != "" {
		line += " " + badge
	}
	return line
}

// RenderTree renders items as an indented tree with box-drawing connectors.
// Lines are colored by change status and amounts are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, len(items))
	maxWidth := 0
	for i, item := range items {
		lines[i] = RenderLine(item)
		if w := lipgloss.Width(lines[i]); w > maxWidth {
			maxWidth = w
		}
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(lines[i])
		if item.Detail != "" {
			pad := maxWidth - lipgloss.Width(lines[i])
			b.WriteString(strings.Repeat(" ", pad) + "  " + StyleBlue.Render(item.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatForest renders a whole forest.
func FormatForest(forest []*domain.TreeNode) string {
	return RenderTree(ForestItems(forest, false))
}
