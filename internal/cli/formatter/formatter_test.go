package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/stretchr/testify/assert"
)

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRupiah(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "Rp 0"},
		{999, "Rp 999"},
		{1000, "Rp 1.000"},
		{1500000, "Rp 1.500.000"},
		{1234567.6, "Rp 1.234.568"},
		{-25000, "-Rp 25.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rupiah(tt.in))
	}
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "100", GroupThousands(100))
	assert.Equal(t, "100.000", GroupThousands(100000))
	assert.Equal(t, "-1.000.000", GroupThousands(-1000000))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Jan", MonthName(0))
	assert.Equal(t, "Des", MonthName(11))
	assert.Equal(t, "#12", MonthName(12))
}

func TestHumanTimestamp(t *testing.T) {
	assert.Equal(t, "Just now", HumanTimestamp(time.Now()))
	assert.Equal(t, "5m ago", HumanTimestamp(time.Now().Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "Sep 30, 2022", HumanTimestamp(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)))
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "abcdefgh", stripANSI(TruncID("abcdefgh-1234")))
	assert.Equal(t, "abc", stripANSI(TruncID("abc")))
}

func TestRenderTable_RightAlign(t *testing.T) {
	out := stripANSI(RenderTable([]string{"NAME", "AMOUNT"}, [][]string{
		{"a", "Rp 1"},
		{"longer", "Rp 1.000"},
	}, 1))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "NAME      AMOUNT", lines[0])
	assert.Equal(t, "a           Rp 1", lines[2])
	assert.Equal(t, "longer  Rp 1.000", lines[3])
}

func TestRenderAbsorption(t *testing.T) {
	assert.Equal(t, "[█████░░░░░]  50%", stripANSI(RenderAbsorption(50, 100, 10)))
	assert.Equal(t, "[██████████] 100%", stripANSI(RenderAbsorption(200, 100, 10)))
	assert.Equal(t, "--", stripANSI(RenderAbsorption(10, 0, 10)))
}

func leafNode(id, code string) *domain.TreeNode {
	return &domain.TreeNode{ID: id, LineItemFields: domain.LineItemFields{Code: code, Kind: domain.KindRO}, Children: []*domain.TreeNode{}}
}

func TestRenderTree_Connectors(t *testing.T) {
	a := leafNode("a", "A")
	a1 := leafNode("a1", "A1")
	a1x := leafNode("a1x", "A1X")
	a1.Children = []*domain.TreeNode{a1x}
	a2 := leafNode("a2", "A2")
	a2x := leafNode("a2x", "A2X")
	a2.Children = []*domain.TreeNode{a2x}
	a.Children = []*domain.TreeNode{a1, a2}

	out := stripANSI(FormatForest([]*domain.TreeNode{a}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	var prefixes []string
	for _, l := range lines {
		prefixes = append(prefixes, strings.SplitN(l, "RO", 2)[0])
	}
	assert.Equal(t, []string{
		"",
		"├─ ",
		"│  └─ ",
		"└─ ",
		"   └─ ",
	}, prefixes)
}

func TestRenderTree_StatusAndAmount(t *testing.T) {
	n := leafNode("n", "521211")
	n.Description = "Belanja Bahan"
	n.AfterAmount = &domain.BudgetDetail{Volume: 2, Unit: "Paket", UnitPrice: 150000, Total: 300000}

	out := stripANSI(FormatForest([]*domain.TreeNode{n}))
	assert.Contains(t, out, "521211 Belanja Bahan")
	assert.Contains(t, out, "● NEW")
	assert.Contains(t, out, "Rp 300.000")
}

func TestForestItems_HonourOpen(t *testing.T) {
	root := leafNode("r", "R")
	root.IsOpen = domain.BoolPtr(false)
	root.Children = []*domain.TreeNode{leafNode("c", "C")}

	assert.Len(t, ForestItems([]*domain.TreeNode{root}, false), 2)
	items := ForestItems([]*domain.TreeNode{root}, true)
	assert.Len(t, items, 1)
	assert.True(t, items[0].Collapsed)
	assert.Contains(t, stripANSI(RenderLine(items[0])), "▸")
}

func TestFormatDetail(t *testing.T) {
	d := &domain.BudgetDetail{Volume: 2.5, Unit: "OK", UnitPrice: 1000, Total: 2500}
	assert.Equal(t, "2.5 OK × Rp 1.000 = Rp 2.500", stripANSI(FormatDetail(d)))
	assert.Equal(t, "--", stripANSI(FormatDetail(nil)))
}

func TestFormatMonthly_SortsMonths(t *testing.T) {
	out := stripANSI(FormatMonthly(domain.MonthlyAllocation{
		"10": {Planned: 100},
		"2":  {Planned: 300, Realized: 150, Verified: true},
	}))
	assert.Less(t, strings.Index(out, "Mar"), strings.Index(out, "Nov"))
	assert.Contains(t, out, "Rp 400")
	assert.Contains(t, out, "Absorption")
	assert.Contains(t, out, "38%")
}

func TestFormatMasterData_HierarchyOrder(t *testing.T) {
	out := stripANSI(FormatMasterData(map[domain.RowKind][]domain.MasterDataItem{
		domain.KindUnit:    {{Code: "OK", Description: "Orang Kegiatan"}},
		domain.KindProgram: {{Code: "054.01.GG"}},
	}))
	assert.Less(t, strings.Index(out, "PROGRAM"), strings.Index(out, "UNIT"))
	assert.Contains(t, out, "Orang Kegiatan")
	assert.NotContains(t, out, "ACCOUNT")
}

func TestFormatVerify(t *testing.T) {
	tables := []string{"line_items", "master_data", "revisions"}
	out := stripANSI(FormatVerify(tables, map[string]int{"line_items": 1200}, nil))
	assert.Contains(t, out, "1.200")
	assert.Contains(t, out, "Every line item is reachable")

	parent := "gone"
	orphan := &domain.LineItem{ID: "orphan-id-1", ParentID: &parent, LineItemFields: domain.LineItemFields{Code: "X", Kind: domain.KindDetail}}
	out = stripANSI(FormatVerify(tables, map[string]int{}, []*domain.LineItem{orphan}))
	assert.Contains(t, out, "1 unreachable line item(s)")
	assert.Contains(t, out, "gone")
}
