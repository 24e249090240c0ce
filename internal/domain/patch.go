package domain

// LineItemPatch is a partial update to a line item. Only fields whose
// Optional is set are written. Parent and order are never part of a patch.
type LineItemPatch struct {
	Code              Optional[string]            `json:"code"`
	Description       Optional[string]            `json:"description"`
	Kind              Optional[RowKind]           `json:"kind"`
	BeforeAmount      Optional[*BudgetDetail]     `json:"beforeAmount"`
	AfterAmount       Optional[*BudgetDetail]     `json:"afterAmount"`
	MonthlyAllocation Optional[MonthlyAllocation] `json:"monthlyAllocation"`
	IsBlocked         Optional[*bool]             `json:"isBlocked"`
	IsOpen            Optional[bool]              `json:"isOpen"`
}

// IsEmpty reports whether the patch sets no field.
func (p LineItemPatch) IsEmpty() bool {
	return !p.Code.Set && !p.Description.Set && !p.Kind.Set &&
		!p.BeforeAmount.Set && !p.AfterAmount.Set && !p.MonthlyAllocation.Set &&
		!p.IsBlocked.Set && !p.IsOpen.Set
}

// ApplyTo writes the present fields onto f.
func (p LineItemPatch) ApplyTo(f *LineItemFields) {
	if v, ok := p.Code.Get(); ok {
		f.Code = v
	}
	if v, ok := p.Description.Get(); ok {
		f.Description = v
	}
	if v, ok := p.Kind.Get(); ok {
		f.Kind = v
	}
	if v, ok := p.BeforeAmount.Get(); ok {
		f.BeforeAmount = v
	}
	if v, ok := p.AfterAmount.Get(); ok {
		f.AfterAmount = v
	}
	if v, ok := p.MonthlyAllocation.Get(); ok {
		f.MonthlyAllocation = v.Clone()
	}
	if v, ok := p.IsBlocked.Get(); ok {
		f.IsBlocked = v
	}
	if v, ok := p.IsOpen.Get(); ok {
		f.IsOpen = BoolPtr(v)
	}
}
