package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/sisara/internal/contract"
	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/repository"
	"github.com/alexanderramin/sisara/internal/tree"
)

type budgetService struct {
	items    repository.LineItemRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewBudgetService(items repository.LineItemRepo, uow db.UnitOfWork, observers ...UseCaseObserver) BudgetService {
	return &budgetService{
		items:    items,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// GetAll builds the whole forest from a single fetch of every row.
func (s *budgetService) GetAll(ctx context.Context) ([]*domain.TreeNode, error) {
	rows, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Build(rows, nil), nil
}

func (s *budgetService) GetByID(ctx context.Context, id string) (*domain.LineItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *budgetService) GetSubtree(ctx context.Context, id string) (*domain.TreeNode, error) {
	rows, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := tree.Subtree(rows, id)
	if !ok {
		return nil, fmt.Errorf("line item %s: %w", id, domain.ErrNotFound)
	}
	return node, nil
}

// Create stores node and its children under parentID, appending it after
// the existing siblings. Ids on the input are ignored; every stored row gets
// a fresh one. The parent is not checked; see AddChild.
func (s *budgetService) Create(ctx context.Context, node *domain.TreeNode, parentID *string) (id string, err error) {
	defer finishUseCase(ctx, s.observer, "create-line-item", time.Now(), map[string]any{
		"nodes": countNodes(node),
	}, &err)

	if err = checkNewNode(node, parentID); err != nil {
		return "", err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var txErr error
		id, txErr = createUnder(ctx, repository.NewSQLiteLineItemRepo(tx), node, parentID)
		return txErr
	})
	return id, err
}

// AddChild is Create under an existing parent.
func (s *budgetService) AddChild(ctx context.Context, parentID string, node *domain.TreeNode) (id string, err error) {
	defer finishUseCase(ctx, s.observer, "add-child", time.Now(), map[string]any{
		"parent_id": parentID,
		"nodes":     countNodes(node),
	}, &err)

	if err = checkNewNode(node, &parentID); err != nil {
		return "", err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteLineItemRepo(tx)
		if _, err := txItems.GetByID(ctx, parentID); err != nil {
			return err
		}
		var txErr error
		id, txErr = createUnder(ctx, txItems, node, &parentID)
		return txErr
	})
	return id, err
}

// Update applies the present fields of patch. It reports false when the
// patch is empty or no row has the id.
func (s *budgetService) Update(ctx context.Context, id string, patch domain.LineItemPatch) (changed bool, err error) {
	defer finishUseCase(ctx, s.observer, "update-line-item", time.Now(), map[string]any{
		"id": id,
	}, &err)

	if err = (contract.UpdateLineItemRequest{ID: id, Patch: patch}).Check(); err != nil {
		return false, err
	}
	return s.items.Update(ctx, id, patch)
}

// Delete removes the row and everything below it. It reports false when the
// id does not exist.
func (s *budgetService) Delete(ctx context.Context, id string) (removed bool, err error) {
	fields := map[string]any{"id": id}
	defer finishUseCase(ctx, s.observer, "delete-line-item", time.Now(), fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteLineItemRepo(tx)
		rows, err := txItems.ListAll(ctx)
		if err != nil {
			return err
		}
		ids := tree.Descendants(rows, id)
		if len(ids) == 0 {
			return nil
		}
		n, err := txItems.DeleteMany(ctx, ids)
		if err != nil {
			return err
		}
		fields["deleted"] = n
		removed = n > 0
		return nil
	})
	return removed, err
}

// Copy duplicates the row and its subtree with fresh ids and places the copy
// right after the original. Later siblings move down one slot.
func (s *budgetService) Copy(ctx context.Context, id string) (newID string, err error) {
	fields := map[string]any{"id": id}
	defer finishUseCase(ctx, s.observer, "copy-line-item", time.Now(), fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteLineItemRepo(tx)
		rows, err := txItems.ListAll(ctx)
		if err != nil {
			return err
		}
		clones := tree.CloneSubtree(rows, id)
		if len(clones) == 0 {
			return fmt.Errorf("line item %s: %w", id, domain.ErrNotFound)
		}

		root := clones[0]
		root.Order++
		if _, err := txItems.ShiftOrders(ctx, root.ParentID, root.Order); err != nil {
			return err
		}
		if err := txItems.BulkCreate(ctx, clones); err != nil {
			return err
		}
		newID = root.ID
		fields["copied"] = len(clones)
		return nil
	})
	return newID, err
}

// UpdateMonthlyAllocation replaces one month of a line's allocation, leaving
// the other months untouched.
func (s *budgetService) UpdateMonthlyAllocation(ctx context.Context, id string, month int, detail domain.MonthlyDetail) (err error) {
	defer finishUseCase(ctx, s.observer, "update-monthly-allocation", time.Now(), map[string]any{
		"id":    id,
		"month": month,
	}, &err)

	if err = (contract.MonthlyAllocationRequest{ID: id, Month: month, Detail: detail}).Check(); err != nil {
		return err
	}
	ok, err := s.items.SetMonthly(ctx, id, month, detail)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("line item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func checkNewNode(node *domain.TreeNode, parentID *string) error {
	return contract.CreateLineItemRequest{ParentID: parentID, Node: node}.Check()
}

// createUnder persists node and its descendants with fresh ids. The node
// takes the next free order among its siblings; children are numbered by
// position.
func createUnder(ctx context.Context, items repository.LineItemRepo, node *domain.TreeNode, parentID *string) (string, error) {
	next := 0
	maxOrder, ok, err := items.MaxChildOrder(ctx, parentID)
	if err != nil {
		return "", err
	}
	if ok {
		next = maxOrder + 1
	}

	rows := tree.Flatten([]*domain.TreeNode{withoutIDs(node)}, parentID)
	rows[0].Order = next
	if err := items.BulkCreate(ctx, rows); err != nil {
		return "", err
	}
	return rows[0].ID, nil
}

// withoutIDs returns a copy of the subtree with every id cleared.
func withoutIDs(node *domain.TreeNode) *domain.TreeNode {
	out := &domain.TreeNode{
		LineItemFields: node.LineItemFields,
		Children:       make([]*domain.TreeNode, 0, len(node.Children)),
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, withoutIDs(child))
	}
	return out
}

func countNodes(node *domain.TreeNode) int {
	if node == nil {
		return 0
	}
	return tree.Count([]*domain.TreeNode{node})
}
