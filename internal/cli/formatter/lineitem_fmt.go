package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
)

// FormatDetail renders a budget detail as "2 Paket × Rp 150.000 = Rp 300.000".
func FormatDetail(d *domain.BudgetDetail) string {
	if d == nil {
		return Dim("--")
	}
	unit := d.Unit
	if unit != "" {
		unit = " " + unit
	}
	return fmt.Sprintf("%s%s × %s = %s", FormatQuantity(d.Volume), unit, Rupiah(d.UnitPrice), Bold(Rupiah(d.Total)))
}

// FormatLineItem renders the detail view of one line.
func FormatLineItem(item *domain.LineItem) string {
	status := domain.ChangeStatusOf(item.LineItemFields)
	parent := Dim("(root)")
	if item.ParentID != nil {
		parent = *item.ParentID
	}
	blocked := "no"
	if item.IsBlocked != nil && *item.IsBlocked {
		blocked = StylePurple.Render("yes")
	}

	rows := [][2]string{
		{"ID", item.ID},
		{"Kind", string(item.Kind)},
		{"Code", OrDash(item.Code)},
		{"Description", OrDash(item.Description)},
		{"Parent", parent},
		{"Order", strconv.Itoa(item.Order)},
		{"Status", OrDash(ChangeBadge(status))},
		{"Before", FormatDetail(item.BeforeAmount)},
		{"After", FormatDetail(item.AfterAmount)},
		{"Blocked", blocked},
		{"Updated", HumanTimestamp(item.UpdatedAt)},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim(fmt.Sprintf("%-11s", r[0])), r[1]))
	}
	if len(item.MonthlyAllocation) > 0 {
		b.WriteString("\n" + FormatMonthly(item.MonthlyAllocation))
	}
	return RenderBox(item.Code, strings.TrimRight(b.String(), "\n"))
}

// FormatMonthly renders the monthly allocation in month order. Keys that
// are not month indexes are listed last, as stored.
func FormatMonthly(alloc domain.MonthlyAllocation) string {
	keys := make([]string, 0, len(alloc))
	for k := range alloc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	var planned, realized float64
	rows := make([][]string, 0, len(keys)+1)
	for _, k := range keys {
		d := alloc[k]
		label := k
		if m, err := strconv.Atoi(k); err == nil {
			label = MonthName(m)
		}
		verified := ""
		if d.Verified {
			verified = StyleGreen.Render("✔")
		}
		rows = append(rows, []string{
			label,
			Rupiah(d.Planned),
			Rupiah(d.Realized),
			Rupiah(d.DisbursedAmount),
			OrDash(d.PaymentOrderNumber),
			OrDash(d.ExecutionDate),
			verified,
		})
		planned += d.Planned
		realized += d.Realized
	}
	rows = append(rows, []string{Bold("Total"), Bold(Rupiah(planned)), Bold(Rupiah(realized)), "", "", "", ""})

	table := RenderTable(
		[]string{"MONTH", "PLANNED", "REALIZED", "DISBURSED", "SPM", "DATE", "OK"},
		rows, 1, 2, 3,
	)
	return table + Dim("Absorption ") + RenderAbsorption(realized, planned, 20) + "\n"
}
