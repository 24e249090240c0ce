package testutil

import (
	"time"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/google/uuid"
)

// LineItem options
type ItemOption func(*domain.LineItem)

func WithParent(parentID string) ItemOption {
	return func(it *domain.LineItem) {
		it.ParentID = &parentID
	}
}

func WithOrder(order int) ItemOption {
	return func(it *domain.LineItem) {
		it.Order = order
	}
}

func WithKind(kind domain.RowKind) ItemOption {
	return func(it *domain.LineItem) {
		it.Kind = kind
	}
}

func WithDescription(desc string) ItemOption {
	return func(it *domain.LineItem) {
		it.Description = desc
	}
}

func WithAmounts(before, after *domain.BudgetDetail) ItemOption {
	return func(it *domain.LineItem) {
		it.BeforeAmount = before
		it.AfterAmount = after
	}
}

func WithBlocked(blocked bool) ItemOption {
	return func(it *domain.LineItem) {
		it.IsBlocked = &blocked
	}
}

func WithMonthly(month int, detail domain.MonthlyDetail) ItemOption {
	return func(it *domain.LineItem) {
		if it.MonthlyAllocation == nil {
			it.MonthlyAllocation = domain.MonthlyAllocation{}
		}
		it.MonthlyAllocation[domain.MonthKey(month)] = detail
	}
}

// NewTestItem returns a root ACCOUNT row with the given code.
func NewTestItem(code string, opts ...ItemOption) *domain.LineItem {
	now := time.Now().UTC()
	it := &domain.LineItem{
		ID: uuid.New().String(),
		LineItemFields: domain.LineItemFields{
			Code:              code,
			Description:       "Item " + code,
			Kind:              domain.KindAccount,
			MonthlyAllocation: domain.MonthlyAllocation{},
			IsOpen:            domain.BoolPtr(true),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// NewTestNode returns a tree node with the given children. The node carries
// no id so it reads like client input.
func NewTestNode(code string, kind domain.RowKind, children ...*domain.TreeNode) *domain.TreeNode {
	if children == nil {
		children = []*domain.TreeNode{}
	}
	return &domain.TreeNode{
		LineItemFields: domain.LineItemFields{
			Code:        code,
			Description: "Node " + code,
			Kind:        kind,
		},
		Children: children,
	}
}

// Detail returns a budget detail with total = volume * unitPrice.
func Detail(volume float64, unit string, unitPrice float64) *domain.BudgetDetail {
	return &domain.BudgetDetail{
		Volume:    volume,
		Unit:      unit,
		UnitPrice: unitPrice,
		Total:     volume * unitPrice,
	}
}

// NewTestEntry returns a master data entry.
func NewTestEntry(kind domain.RowKind, code, description string) *domain.MasterDataEntry {
	return &domain.MasterDataEntry{
		ID:          uuid.New().String(),
		Kind:        kind,
		Code:        code,
		Description: description,
	}
}
