package service

import (
	"context"
	"time"

	"github.com/alexanderramin/sisara/internal/contract"
	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/repository"
	"github.com/google/uuid"
)

type masterDataService struct {
	entries  repository.MasterDataRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewMasterDataService(entries repository.MasterDataRepo, uow db.UnitOfWork, observers ...UseCaseObserver) MasterDataService {
	return &masterDataService{
		entries:  entries,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// ListAll groups the catalog by kind, keeping insertion order within a kind.
func (s *masterDataService) ListAll(ctx context.Context) (map[domain.RowKind][]domain.MasterDataItem, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RowKind][]domain.MasterDataItem)
	for _, e := range entries {
		out[e.Kind] = append(out[e.Kind], e.Item())
	}
	return out, nil
}

func (s *masterDataService) ListByKind(ctx context.Context, kind domain.RowKind) ([]domain.MasterDataItem, error) {
	if err := contract.ValidateKind(kind); err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	items := make([]domain.MasterDataItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Item())
	}
	return items, nil
}

func (s *masterDataService) Create(ctx context.Context, kind domain.RowKind, code, description string) (id string, err error) {
	defer finishUseCase(ctx, s.observer, "create-master-data", time.Now(), map[string]any{
		"kind": string(kind),
		"code": code,
	}, &err)

	created, err := s.insert(ctx, []domain.MasterDataEntry{{Kind: kind, Code: code, Description: description}})
	if err != nil {
		return "", err
	}
	return created[0].ID, nil
}

// BulkCreate inserts every entry or none. Conflicts with stored entries and
// within the batch are reported before anything is written.
func (s *masterDataService) BulkCreate(ctx context.Context, entries []domain.MasterDataEntry) (inserted int, err error) {
	defer finishUseCase(ctx, s.observer, "bulk-create-master-data", time.Now(), map[string]any{
		"entries": len(entries),
	}, &err)

	created, err := s.insert(ctx, entries)
	if err != nil {
		return 0, err
	}
	return len(created), nil
}

func (s *masterDataService) insert(ctx context.Context, entries []domain.MasterDataEntry) ([]*domain.MasterDataEntry, error) {
	for _, e := range entries {
		if err := (contract.MasterDataRequest{Kind: e.Kind, Code: e.Code, Description: e.Description}).Check(); err != nil {
			return nil, err
		}
	}

	batch := make([]*domain.MasterDataEntry, 0, len(entries))
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLiteMasterDataRepo(tx)
		existing, err := txEntries.ListAll(ctx)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing)+len(entries))
		for _, e := range existing {
			seen[catalogKey(e.Kind, e.Code, e.Description)] = true
		}

		for _, e := range entries {
			key := catalogKey(e.Kind, e.Code, e.Description)
			if seen[key] {
				return &domain.ConflictError{Kind: e.Kind, Code: e.Code}
			}
			seen[key] = true
			batch = append(batch, &domain.MasterDataEntry{
				ID:          uuid.New().String(),
				Kind:        e.Kind,
				Code:        e.Code,
				Description: e.Description,
			})
		}
		return txEntries.BulkCreate(ctx, batch)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Update rewrites the description of the entry matching kind and code. For
// kinds that allow duplicate codes, currentDescription picks the entry; it
// is ignored otherwise. It reports false when nothing matched.
func (s *masterDataService) Update(ctx context.Context, kind domain.RowKind, code, newDescription string, currentDescription domain.Optional[string]) (changed bool, err error) {
	defer finishUseCase(ctx, s.observer, "update-master-data", time.Now(), map[string]any{
		"kind": string(kind),
		"code": code,
	}, &err)

	req := contract.MasterDataUpdateRequest{Kind: kind, Code: code, NewDescription: newDescription}
	if v, ok := currentDescription.Get(); ok {
		req.CurrentDescription = &v
	}
	if err = req.Check(); err != nil {
		return false, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLiteMasterDataRepo(tx)
		target, err := resolveEntry(ctx, txEntries, kind, code, currentDescription)
		if err != nil || target == nil {
			return err
		}
		if kind.AllowsDuplicateCodes() && target.Description != newDescription {
			clash, err := txEntries.Find(ctx, kind, code, &newDescription)
			if err != nil {
				return err
			}
			if len(clash) > 0 {
				return &domain.ConflictError{Kind: kind, Code: code}
			}
		}
		changed, err = txEntries.UpdateDescription(ctx, target.ID, newDescription)
		return err
	})
	return changed, err
}

// Delete removes the entry matching kind and code, with the same matching
// rules as Update. It reports false when nothing matched.
func (s *masterDataService) Delete(ctx context.Context, kind domain.RowKind, code string, description domain.Optional[string]) (removed bool, err error) {
	defer finishUseCase(ctx, s.observer, "delete-master-data", time.Now(), map[string]any{
		"kind": string(kind),
		"code": code,
	}, &err)

	req := contract.MasterDataDeleteRequest{Kind: kind, Code: code}
	if v, ok := description.Get(); ok {
		req.Description = &v
	}
	if err = req.Check(); err != nil {
		return false, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLiteMasterDataRepo(tx)
		target, err := resolveEntry(ctx, txEntries, kind, code, description)
		if err != nil || target == nil {
			return err
		}
		removed, err = txEntries.Delete(ctx, target.ID)
		return err
	})
	return removed, err
}

// SyncAll replaces the entries of every kind present in byKind. Kinds absent
// from the input keep their entries. Returns the count written per kind.
func (s *masterDataService) SyncAll(ctx context.Context, byKind map[domain.RowKind][]domain.MasterDataItem) (counts map[domain.RowKind]int, err error) {
	defer finishUseCase(ctx, s.observer, "sync-master-data", time.Now(), map[string]any{
		"kinds": len(byKind),
	}, &err)

	batch, err := catalogBatch(byKind)
	if err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var txErr error
		counts, txErr = replaceCatalog(ctx, repository.NewSQLiteMasterDataRepo(tx), byKind, batch)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// resolveEntry finds the single entry an update or delete targets. It
// returns nil when nothing matches.
func resolveEntry(ctx context.Context, entries repository.MasterDataRepo, kind domain.RowKind, code string, description domain.Optional[string]) (*domain.MasterDataEntry, error) {
	var filter *string
	if v, ok := description.Get(); ok && kind.AllowsDuplicateCodes() {
		filter = &v
	}
	matches, err := entries.Find(ctx, kind, code, filter)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, &domain.AmbiguousTargetError{Kind: kind, Code: code, Matches: len(matches)}
	}
}

// catalogBatch validates a by-kind catalog and builds the entries to insert,
// in hierarchy order of kinds.
func catalogBatch(byKind map[domain.RowKind][]domain.MasterDataItem) ([]*domain.MasterDataEntry, error) {
	for kind := range byKind {
		if err := contract.ValidateKind(kind); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	var batch []*domain.MasterDataEntry
	for _, kind := range domain.RowKinds {
		for _, item := range byKind[kind] {
			if err := (contract.MasterDataRequest{Kind: kind, Code: item.Code, Description: item.Description}).Check(); err != nil {
				return nil, err
			}
			key := catalogKey(kind, item.Code, item.Description)
			if seen[key] {
				return nil, &domain.ConflictError{Kind: kind, Code: item.Code}
			}
			seen[key] = true
			batch = append(batch, &domain.MasterDataEntry{
				ID:          uuid.New().String(),
				Kind:        kind,
				Code:        item.Code,
				Description: item.Description,
			})
		}
	}
	return batch, nil
}

// replaceCatalog clears each kind named in byKind and writes batch. Callers
// run it inside a transaction.
func replaceCatalog(ctx context.Context, entries repository.MasterDataRepo, byKind map[domain.RowKind][]domain.MasterDataItem, batch []*domain.MasterDataEntry) (map[domain.RowKind]int, error) {
	counts := make(map[domain.RowKind]int, len(byKind))
	for kind := range byKind {
		if _, err := entries.DeleteByKind(ctx, kind); err != nil {
			return nil, err
		}
		counts[kind] = 0
	}
	if err := entries.BulkCreate(ctx, batch); err != nil {
		return nil, err
	}
	for _, e := range batch {
		counts[e.Kind]++
	}
	return counts, nil
}

// catalogKey is the uniqueness key of an entry: kind and code, plus the
// description for kinds that allow duplicate codes.
func catalogKey(kind domain.RowKind, code, description string) string {
	key := string(kind) + "\x00" + code
	if kind.AllowsDuplicateCodes() {
		key += "\x00" + description
	}
	return key
}
