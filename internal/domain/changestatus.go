package domain

// ChangeStatusOf classifies a line by comparing its before and after
// amounts. Blocked lines win over everything else. Only volume, unit price
// and total are compared; the unit label is ignored.
func ChangeStatusOf(f LineItemFields) ChangeStatus {
	if f.IsBlocked != nil && *f.IsBlocked {
		return ChangeBlocked
	}
	before, after := f.BeforeAmount, f.AfterAmount
	switch {
	case before != nil && after == nil:
		return ChangeDeleted
	case before == nil && after != nil:
		return ChangeNew
	case before != nil && after != nil:
		if before.Volume != after.Volume || before.UnitPrice != after.UnitPrice || before.Total != after.Total {
			return ChangeChanged
		}
	}
	return ChangeUnchanged
}
