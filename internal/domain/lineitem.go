package domain

import (
	"strconv"
	"time"
)

// MonthsPerYear bounds the monthly allocation keys to 0..11.
const MonthsPerYear = 12

// BudgetDetail is the volume/price breakdown of a line before or after a
// revision. Values are stored as given; totals are not recomputed.
type BudgetDetail struct {
	Volume    float64 `json:"volume"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// MonthlyDetail is the planned vs realized disbursement for one month.
type MonthlyDetail struct {
	Planned            float64 `json:"planned"`
	Realized           float64 `json:"realized"`
	PaymentOrderNumber string  `json:"paymentOrderNumber"`
	ExecutionDate      string  `json:"executionDate"`
	Verified           bool    `json:"verified"`
	DisbursedAmount    float64 `json:"disbursedAmount"`
}

// MonthlyAllocation maps a month key ("0".."11") to its detail.
type MonthlyAllocation map[string]MonthlyDetail

// MonthKey returns the allocation key for a zero-based month index.
func MonthKey(month int) string {
	return strconv.Itoa(month)
}

// ValidMonth reports whether month is a zero-based month index.
func ValidMonth(month int) bool {
	return month >= 0 && month < MonthsPerYear
}

// Clone returns an independent copy of the allocation. A nil receiver
// yields an empty, non-nil map.
func (m MonthlyAllocation) Clone() MonthlyAllocation {
	out := make(MonthlyAllocation, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LineItemFields holds the caller-owned content of a budget line. It is
// shared by the flat persisted row and the nested tree view.
type LineItemFields struct {
	Code              string            `json:"code"`
	Description       string            `json:"description"`
	Kind              RowKind           `json:"kind"`
	BeforeAmount      *BudgetDetail     `json:"beforeAmount"`
	AfterAmount       *BudgetDetail     `json:"afterAmount"`
	MonthlyAllocation MonthlyAllocation `json:"monthlyAllocation"`
	IsBlocked         *bool             `json:"isBlocked"`
	IsOpen            *bool             `json:"isOpen,omitempty"`
}

// Open reports the UI expansion flag, which defaults to true.
func (f LineItemFields) Open() bool {
	return BoolFromPtrWithDefault(true, f.IsOpen)
}

// Clone deep-copies pointer and map fields so the result shares no state
// with f. IsOpen is normalised to an explicit value.
func (f LineItemFields) Clone() LineItemFields {
	out := f
	if f.BeforeAmount != nil {
		d := *f.BeforeAmount
		out.BeforeAmount = &d
	}
	if f.AfterAmount != nil {
		d := *f.AfterAmount
		out.AfterAmount = &d
	}
	if f.IsBlocked != nil {
		out.IsBlocked = BoolPtr(*f.IsBlocked)
	}
	out.IsOpen = BoolPtr(f.Open())
	out.MonthlyAllocation = f.MonthlyAllocation.Clone()
	return out
}

// LineItem is one persisted row of the budget tree.
type LineItem struct {
	ID string `json:"id"`
	LineItemFields
	ParentID  *string   `json:"parentId"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRoot reports whether the row has no parent.
func (li *LineItem) IsRoot() bool {
	return li.ParentID == nil
}

// ParentKey returns the parent id, or "" for roots.
func (li *LineItem) ParentKey() string {
	if li.ParentID == nil {
		return ""
	}
	return *li.ParentID
}

// TreeNode is the nested read model built from flat rows. It is also the
// input shape for creating a line with children and for full-tree sync.
type TreeNode struct {
	ID string `json:"id,omitempty"`
	LineItemFields
	Children []*TreeNode `json:"children"`
}

// ToNode returns a childless tree node carrying a copy of the row's content.
func (li *LineItem) ToNode() *TreeNode {
	return &TreeNode{
		ID:             li.ID,
		LineItemFields: li.LineItemFields.Clone(),
		Children:       []*TreeNode{},
	}
}
