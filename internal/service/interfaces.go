package service

import (
	"context"

	"github.com/alexanderramin/sisara/internal/domain"
)

// BudgetService reads and edits the budget tree one line (or subtree) at a
// time.
type BudgetService interface {
	GetAll(ctx context.Context) ([]*domain.TreeNode, error)
	GetByID(ctx context.Context, id string) (*domain.LineItem, error)
	GetSubtree(ctx context.Context, id string) (*domain.TreeNode, error)
	Create(ctx context.Context, node *domain.TreeNode, parentID *string) (string, error)
	AddChild(ctx context.Context, parentID string, node *domain.TreeNode) (string, error)
	Update(ctx context.Context, id string, patch domain.LineItemPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Copy(ctx context.Context, id string) (string, error)
	UpdateMonthlyAllocation(ctx context.Context, id string, month int, detail domain.MonthlyDetail) error
}

// SyncService replaces the whole tree in one step.
type SyncService interface {
	SyncAll(ctx context.Context, forest []*domain.TreeNode) (int, error)
}

// MasterDataService manages the code catalog used to fill in new lines.
type MasterDataService interface {
	ListAll(ctx context.Context) (map[domain.RowKind][]domain.MasterDataItem, error)
	ListByKind(ctx context.Context, kind domain.RowKind) ([]domain.MasterDataItem, error)
	Create(ctx context.Context, kind domain.RowKind, code, description string) (string, error)
	BulkCreate(ctx context.Context, entries []domain.MasterDataEntry) (int, error)
	Update(ctx context.Context, kind domain.RowKind, code, newDescription string, currentDescription domain.Optional[string]) (bool, error)
	Delete(ctx context.Context, kind domain.RowKind, code string, description domain.Optional[string]) (bool, error)
	SyncAll(ctx context.Context, byKind map[domain.RowKind][]domain.MasterDataItem) (map[domain.RowKind]int, error)
}

// RevisionService keeps named, immutable snapshots of the tree.
type RevisionService interface {
	Create(ctx context.Context, note string, tree []*domain.TreeNode) (string, error)
	List(ctx context.Context) ([]domain.RevisionMeta, error)
	Get(ctx context.Context, id string) (*domain.Revision, error)
	Delete(ctx context.Context, id string) (bool, error)
	Capture(ctx context.Context, note string) (string, error)
	Restore(ctx context.Context, id string) (int, error)
}

// StoreStats is the result of a store health check.
type StoreStats struct {
	Counts  map[string]int
	Orphans []*domain.LineItem
}

// MaintenanceService seeds an empty store and reports on its health.
type MaintenanceService interface {
	Seed(ctx context.Context, forest []*domain.TreeNode, masterData map[domain.RowKind][]domain.MasterDataItem) (*SeedResult, error)
	Verify(ctx context.Context) (*StoreStats, error)
}

// SeedResult holds the outcome of a seed run.
type SeedResult struct {
	LineItems  int
	MasterData map[domain.RowKind]int
}
