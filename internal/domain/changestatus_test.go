package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeStatusOf(t *testing.T) {
	detail := func(vol, price float64) *BudgetDetail {
		return &BudgetDetail{Volume: vol, Unit: "Layanan", UnitPrice: price, Total: vol * price}
	}

	tests := []struct {
		name   string
		fields LineItemFields
		want   ChangeStatus
	}{
		{"no amounts", LineItemFields{}, ChangeUnchanged},
		{"same amounts", LineItemFields{BeforeAmount: detail(1, 100), AfterAmount: detail(1, 100)}, ChangeUnchanged},
		{"changed volume", LineItemFields{BeforeAmount: detail(1, 100), AfterAmount: detail(2, 100)}, ChangeChanged},
		{"only before", LineItemFields{BeforeAmount: detail(1, 100)}, ChangeDeleted},
		{"only after", LineItemFields{AfterAmount: detail(1, 100)}, ChangeNew},
		{"blocked wins", LineItemFields{AfterAmount: detail(1, 100), IsBlocked: BoolPtr(true)}, ChangeBlocked},
		{"explicitly unblocked", LineItemFields{IsBlocked: BoolPtr(false)}, ChangeUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangeStatusOf(tt.fields))
		})
	}
}

func TestChangeStatusOf_UnitLabelIgnored(t *testing.T) {
	f := LineItemFields{
		BeforeAmount: &BudgetDetail{Volume: 1, Unit: "OK", UnitPrice: 5, Total: 5},
		AfterAmount:  &BudgetDetail{Volume: 1, Unit: "Paket", UnitPrice: 5, Total: 5},
	}
	assert.Equal(t, ChangeUnchanged, ChangeStatusOf(f))
}
