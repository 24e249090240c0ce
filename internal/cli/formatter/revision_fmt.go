package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/tree"
)

// FormatRevisionList renders revision metadata, newest first as given.
func FormatRevisionList(metas []domain.RevisionMeta) string {
	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		rows = append(rows, []string{
			TruncID(m.ID),
			OrDash(m.Note),
			m.Timestamp.Local().Format("2006-01-02 15:04"),
			Dim(HumanTimestamp(m.Timestamp)),
		})
	}
	return RenderTable([]string{"ID", "NOTE", "SAVED", ""}, rows)
}

// FormatRevision renders a snapshot header followed by its tree.
func FormatRevision(rev *domain.Revision) string {
	var b strings.Builder
	b.WriteString(Header("Revision " + rev.ID[:min(8, len(rev.ID))]))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Note "), OrDash(rev.Note)))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Saved"), rev.Timestamp.Local().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("%s  %d\n\n", Dim("Lines"), tree.Count(rev.Tree)))
	if len(rev.Tree) == 0 {
		b.WriteString(Dim("(empty tree)") + "\n")
		return b.String()
	}
	b.WriteString(FormatForest(rev.Tree))
	return b.String()
}

// FormatVerify renders a store health report: row counts per table, in the
// order given, and any unreachable rows.
func FormatVerify(tables []string, counts map[string]int, orphans []*domain.LineItem) string {
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{t, GroupThousands(int64(counts[t]))})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"TABLE", "ROWS"}, rows, 1))
	b.WriteString("\n")
	if len(orphans) == 0 {
		b.WriteString(StyleGreen.Render("✔ Every line item is reachable") + "\n")
		return b.String()
	}

	b.WriteString(StyleRed.Render(fmt.Sprintf("✖ %d unreachable line item(s)", len(orphans))) + "\n")
	orphanRows := make([][]string, 0, len(orphans))
	for _, o := range orphans {
		orphanRows = append(orphanRows, []string{TruncID(o.ID), string(o.Kind), o.Code, o.ParentKey()})
	}
	b.WriteString(RenderTable([]string{"ID", "KIND", "CODE", "PARENT"}, orphanRows))
	return b.String()
}
