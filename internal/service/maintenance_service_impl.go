package service

import (
	"context"
	"time"

	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/repository"
	"github.com/alexanderramin/sisara/internal/tree"
)

type maintenanceService struct {
	items     repository.LineItemRepo
	entries   repository.MasterDataRepo
	revisions repository.RevisionRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewMaintenanceService(items repository.LineItemRepo, entries repository.MasterDataRepo, revisions repository.RevisionRepo, uow db.UnitOfWork, observers ...UseCaseObserver) MaintenanceService {
	return &maintenanceService{
		items:     items,
		entries:   entries,
		revisions: revisions,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Seed replaces the tree and the catalog kinds named in masterData in one
// transaction. Both payloads are validated before anything is written.
func (s *maintenanceService) Seed(ctx context.Context, forest []*domain.TreeNode, masterData map[domain.RowKind][]domain.MasterDataItem) (result *SeedResult, err error) {
	fields := map[string]any{}
	defer finishUseCase(ctx, s.observer, "seed", time.Now(), fields, &err)

	rows, err := flattenForSync(forest)
	if err != nil {
		return nil, err
	}
	batch, err := catalogBatch(masterData)
	if err != nil {
		return nil, err
	}

	result = &SeedResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := replaceTree(ctx, repository.NewSQLiteLineItemRepo(tx), rows); err != nil {
			return err
		}
		counts, err := replaceCatalog(ctx, repository.NewSQLiteMasterDataRepo(tx), masterData, batch)
		if err != nil {
			return err
		}
		result.LineItems = len(rows)
		result.MasterData = counts
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["line_items"] = result.LineItems
	fields["master_data"] = len(batch)
	return result, nil
}

// Verify counts every table and lists rows whose parent is missing.
func (s *maintenanceService) Verify(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{Counts: make(map[string]int, len(db.Tables))}

	counters := map[string]func(context.Context) (int, error){
		"line_items":  s.items.Count,
		"master_data": s.entries.Count,
		"revisions":   s.revisions.Count,
	}
	for _, table := range db.Tables {
		count, ok := counters[table]
		if !ok {
			continue
		}
		n, err := count(ctx)
		if err != nil {
			return nil, err
		}
		stats.Counts[table] = n
	}

	rows, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.Orphans = tree.Orphans(rows)
	return stats, nil
}
