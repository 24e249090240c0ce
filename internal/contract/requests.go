// Package contract holds the request shapes accepted at the edge of the
// system and the rules they are checked against before reaching a service.
package contract

import (
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
)

// CreateLineItemRequest adds a line, with optional children, under ParentID
// (nil for the top level).
type CreateLineItemRequest struct {
	ParentID *string          `json:"parentId" validate:"omitempty,min=1"`
	Node     *domain.TreeNode `json:"node" validate:"required"`
}

// Check runs tag validation and then checks the kind of every node.
func (r CreateLineItemRequest) Check() error {
	if err := Validate(r); err != nil {
		return err
	}
	return ValidateForest("node", []*domain.TreeNode{r.Node})
}

// UpdateLineItemRequest patches one line. Absent patch fields are left alone.
type UpdateLineItemRequest struct {
	ID    string               `json:"id" validate:"required"`
	Patch domain.LineItemPatch `json:"patch"`
}

func (r UpdateLineItemRequest) Check() error {
	if err := Validate(r); err != nil {
		return err
	}
	if kind, ok := r.Patch.Kind.Get(); ok {
		if err := ValidateKind(kind); err != nil {
			return err
		}
	}
	if r.Patch.IsOpen.Null {
		return domain.NewValidationError("patch.isOpen", "cannot be null")
	}
	if alloc, ok := r.Patch.MonthlyAllocation.Get(); ok {
		return ValidateMonthlyKeys("patch.monthlyAllocation", alloc)
	}
	return nil
}

// MonthlyAllocationRequest sets one month of a line's allocation.
type MonthlyAllocationRequest struct {
	ID     string               `json:"id" validate:"required"`
	Month  int                  `json:"month" validate:"min=0,max=11"`
	Detail domain.MonthlyDetail `json:"detail"`
}

func (r MonthlyAllocationRequest) Check() error {
	if err := Validate(r); err != nil {
		return err
	}
	return ValidateMonth(r.Month)
}

// SyncTreeRequest replaces the whole tree.
type SyncTreeRequest struct {
	Tree []*domain.TreeNode `json:"tree"`
}

func (r SyncTreeRequest) Check() error {
	return ValidateForest("tree", r.Tree)
}

// MasterDataRequest identifies or creates one catalog entry.
type MasterDataRequest struct {
	Kind        domain.RowKind `json:"kind" validate:"required,rowkind"`
	Code        string         `json:"code" validate:"required"`
	Description string         `json:"description"`
}

func (r MasterDataRequest) Check() error {
	return Validate(r)
}

// MasterDataUpdateRequest rewrites the description of the entry matching
// Kind and Code, narrowed by CurrentDescription when given.
type MasterDataUpdateRequest struct {
	Kind               domain.RowKind `json:"kind" validate:"required,rowkind"`
	Code               string         `json:"code" validate:"required"`
	NewDescription     string         `json:"newDescription" validate:"required"`
	CurrentDescription *string        `json:"currentDescription"`
}

func (r MasterDataUpdateRequest) Check() error {
	return Validate(r)
}

// MasterDataDeleteRequest removes the entry matching Kind and Code, narrowed
// by Description when given.
type MasterDataDeleteRequest struct {
	Kind        domain.RowKind `json:"kind" validate:"required,rowkind"`
	Code        string         `json:"code" validate:"required"`
	Description *string        `json:"description"`
}

func (r MasterDataDeleteRequest) Check() error {
	return Validate(r)
}

// RevisionCreateRequest stores a snapshot of Tree under Note.
type RevisionCreateRequest struct {
	Note string             `json:"note" validate:"max=500"`
	Tree []*domain.TreeNode `json:"tree"`
}

func (r RevisionCreateRequest) Check() error {
	if err := Validate(r); err != nil {
		return err
	}
	return ValidateForest("tree", r.Tree)
}

// ParseKind normalises user-typed kind names, so "payment_mechanism" and
// "PAYMENT_MECHANISM" are the same kind.
func ParseKind(s string) domain.RowKind {
	return domain.RowKind(strings.ToUpper(strings.TrimSpace(s)))
}

// NewMasterDataRequest builds a MasterDataRequest from command-line input.
func NewMasterDataRequest(kind, code, description string) MasterDataRequest {
	return MasterDataRequest{
		Kind:        ParseKind(kind),
		Code:        code,
		Description: description,
	}
}
