package repository

import (
	"context"

	"github.com/alexanderramin/sisara/internal/domain"
)

// LineItemRepo is the flat row store behind the budget tree. It keeps no
// tree-shape invariants; the budget and sync services do.
type LineItemRepo interface {
	Create(ctx context.Context, item *domain.LineItem) error
	BulkCreate(ctx context.Context, items []*domain.LineItem) error
	GetByID(ctx context.Context, id string) (*domain.LineItem, error)
	ListAll(ctx context.Context) ([]*domain.LineItem, error)
	ListChildren(ctx context.Context, parentID *string) ([]*domain.LineItem, error)
	MaxChildOrder(ctx context.Context, parentID *string) (int, bool, error)
	Update(ctx context.Context, id string, patch domain.LineItemPatch) (bool, error)
	SetMonthly(ctx context.Context, id string, month int, detail domain.MonthlyDetail) (bool, error)
	ShiftOrders(ctx context.Context, parentID *string, fromOrder int) (int64, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

type MasterDataRepo interface {
	Create(ctx context.Context, e *domain.MasterDataEntry) error
	BulkCreate(ctx context.Context, entries []*domain.MasterDataEntry) error
	ListAll(ctx context.Context) ([]*domain.MasterDataEntry, error)
	ListByKind(ctx context.Context, kind domain.RowKind) ([]*domain.MasterDataEntry, error)
	Find(ctx context.Context, kind domain.RowKind, code string, description *string) ([]*domain.MasterDataEntry, error)
	UpdateDescription(ctx context.Context, id string, description string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByKind(ctx context.Context, kind domain.RowKind) (int64, error)
	Count(ctx context.Context) (int, error)
}

// RevisionRepo stores immutable snapshots. There is no update.
type RevisionRepo interface {
	Create(ctx context.Context, r *domain.Revision) error
	List(ctx context.Context) ([]domain.RevisionMeta, error)
	GetByID(ctx context.Context, id string) (*domain.Revision, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}
