package service

import (
	"context"
	"time"

	"github.com/alexanderramin/sisara/internal/contract"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/repository"
	"github.com/google/uuid"
)

type revisionService struct {
	revisions repository.RevisionRepo
	budget    BudgetService
	sync      SyncService
	observer  UseCaseObserver
	now       func() time.Time
}

func NewRevisionService(revisions repository.RevisionRepo, budget BudgetService, sync SyncService, observers ...UseCaseObserver) RevisionService {
	return &revisionService{
		revisions: revisions,
		budget:    budget,
		sync:      sync,
		observer:  useCaseObserverOrNoop(observers),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a snapshot of tree. The payload is kept as given; it is not
// checked against the live store.
func (s *revisionService) Create(ctx context.Context, note string, tree []*domain.TreeNode) (id string, err error) {
	defer finishUseCase(ctx, s.observer, "create-revision", time.Now(), map[string]any{
		"note": note,
	}, &err)

	if err = (contract.RevisionCreateRequest{Note: note, Tree: tree}).Check(); err != nil {
		return "", err
	}
	if tree == nil {
		tree = []*domain.TreeNode{}
	}
	rev := &domain.Revision{
		RevisionMeta: domain.RevisionMeta{
			ID:        uuid.New().String(),
			Note:      note,
			Timestamp: s.now(),
		},
		Tree: tree,
	}
	if err = s.revisions.Create(ctx, rev); err != nil {
		return "", err
	}
	return rev.ID, nil
}

// List returns revision metadata, newest first.
func (s *revisionService) List(ctx context.Context) ([]domain.RevisionMeta, error) {
	metas, err := s.revisions.List(ctx)
	if err != nil {
		return nil, err
	}
	if metas == nil {
		metas = []domain.RevisionMeta{}
	}
	return metas, nil
}

func (s *revisionService) Get(ctx context.Context, id string) (*domain.Revision, error) {
	return s.revisions.GetByID(ctx, id)
}

func (s *revisionService) Delete(ctx context.Context, id string) (removed bool, err error) {
	defer finishUseCase(ctx, s.observer, "delete-revision", time.Now(), map[string]any{
		"id": id,
	}, &err)

	return s.revisions.Delete(ctx, id)
}

// Capture snapshots the live tree under note.
func (s *revisionService) Capture(ctx context.Context, note string) (string, error) {
	forest, err := s.budget.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return s.Create(ctx, note, forest)
}

// Restore replaces the live tree with the snapshot's tree and returns the
// number of rows written. The snapshot itself is left in place.
func (s *revisionService) Restore(ctx context.Context, id string) (inserted int, err error) {
	defer finishUseCase(ctx, s.observer, "restore-revision", time.Now(), map[string]any{
		"id": id,
	}, &err)

	rev, err := s.revisions.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.sync.SyncAll(ctx, rev.Tree)
}
