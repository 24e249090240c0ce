package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/sisara/internal/contract"
	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/repository"
	"github.com/alexanderramin/sisara/internal/tree"
)

type syncService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewSyncService(uow db.UnitOfWork, observers ...UseCaseObserver) SyncService {
	return &syncService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// SyncAll replaces the stored tree with forest and returns the number of
// rows written. Order and parent links are taken from the nesting; ids are
// kept when present. Readers on other connections see either the old tree
// or the new one, never an empty store.
func (s *syncService) SyncAll(ctx context.Context, forest []*domain.TreeNode) (inserted int, err error) {
	fields := map[string]any{}
	defer finishUseCase(ctx, s.observer, "sync-tree", time.Now(), fields, &err)

	rows, err := flattenForSync(forest)
	if err != nil {
		return 0, err
	}
	fields["rows"] = len(rows)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return replaceTree(ctx, repository.NewSQLiteLineItemRepo(tx), rows)
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// flattenForSync validates a full-tree payload and turns it into rows. It
// touches no storage.
func flattenForSync(forest []*domain.TreeNode) ([]*domain.LineItem, error) {
	if err := (contract.SyncTreeRequest{Tree: forest}).Check(); err != nil {
		return nil, err
	}
	if dups := tree.DuplicateIDs(forest); len(dups) > 0 {
		return nil, domain.NewValidationError("tree", "duplicate ids: %s", strings.Join(dups, ", "))
	}
	return tree.Flatten(forest, nil), nil
}

// replaceTree clears the store and writes rows. Callers run it inside a
// transaction.
func replaceTree(ctx context.Context, items repository.LineItemRepo, rows []*domain.LineItem) error {
	if _, err := items.DeleteAll(ctx); err != nil {
		return err
	}
	return items.BulkCreate(ctx, rows)
}
