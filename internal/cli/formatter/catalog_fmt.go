package formatter

import (
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
)

// FormatMasterDataKind renders the entries of one kind as a table.
func FormatMasterDataKind(kind domain.RowKind, items []domain.MasterDataItem) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Code, OrDash(it.Description)})
	}
	return Header(string(kind)) + "\n" + RenderTable([]string{"CODE", "DESCRIPTION"}, rows)
}

// FormatMasterData renders the whole catalog, kinds in hierarchy order.
// Kinds with no entries are left out.
func FormatMasterData(byKind map[domain.RowKind][]domain.MasterDataItem) string {
	var sections []string
	for _, kind := range domain.RowKinds {
		if items := byKind[kind]; len(items) > 0 {
			sections = append(sections, FormatMasterDataKind(kind, items))
		}
	}
	return strings.Join(sections, "\n")
}

// FormatKindCounts renders a per-kind count summary in hierarchy order.
func FormatKindCounts(counts map[domain.RowKind]int) string {
	var rows [][]string
	for _, kind := range domain.RowKinds {
		if n, ok := counts[kind]; ok {
			rows = append(rows, []string{string(kind), GroupThousands(int64(n))})
		}
	}
	return RenderTable([]string{"KIND", "ENTRIES"}, rows, 1)
}
