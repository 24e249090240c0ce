package domain

// RowKind is the hierarchy level a line item occupies.
type RowKind string

const (
	KindSatker           RowKind = "SATKER"
	KindProgram          RowKind = "PROGRAM"
	KindActivity         RowKind = "ACTIVITY"
	KindKRO              RowKind = "KRO"
	KindRO               RowKind = "RO"
	KindComponent        RowKind = "COMPONENT"
	KindSubcomponent     RowKind = "SUBCOMPONENT"
	KindAccount          RowKind = "ACCOUNT"
	KindDetail           RowKind = "DETAIL"
	KindUnit             RowKind = "UNIT"
	KindPaymentMechanism RowKind = "PAYMENT_MECHANISM"
)

// RowKinds lists every kind in hierarchy order.
var RowKinds = []RowKind{
	KindSatker, KindProgram, KindActivity, KindKRO, KindRO, KindComponent,
	KindSubcomponent, KindAccount, KindDetail, KindUnit, KindPaymentMechanism,
}

// ValidRowKinds is the canonical set of accepted kind strings.
var ValidRowKinds = map[string]bool{
	"SATKER": true, "PROGRAM": true, "ACTIVITY": true, "KRO": true, "RO": true,
	"COMPONENT": true, "SUBCOMPONENT": true, "ACCOUNT": true, "DETAIL": true,
	"UNIT": true, "PAYMENT_MECHANISM": true,
}

func (k RowKind) Valid() bool {
	return ValidRowKinds[string(k)]
}

// AllowsDuplicateCodes reports whether master data of this kind may reuse a
// code. Upstream numbering reuses component codes across outputs, so
// component entries are told apart by description.
func (k RowKind) AllowsDuplicateCodes() bool {
	return k == KindComponent
}

// Depth returns the position of the kind in the hierarchy, starting at 0.
// Unknown kinds sort last.
func (k RowKind) Depth() int {
	for i, rk := range RowKinds {
		if rk == k {
			return i
		}
	}
	return len(RowKinds)
}

type ChangeStatus string

const (
	ChangeUnchanged ChangeStatus = "UNCHANGED"
	ChangeChanged   ChangeStatus = "CHANGED"
	ChangeNew       ChangeStatus = "NEW"
	ChangeDeleted   ChangeStatus = "DELETED"
	ChangeBlocked   ChangeStatus = "BLOCKED"
)
