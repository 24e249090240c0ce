package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/repository"
	"github.com/alexanderramin/sisara/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) (
	repository.LineItemRepo,
	repository.MasterDataRepo,
	repository.RevisionRepo,
	db.UnitOfWork,
) {
	database := testutil.NewTestDB(t)
	return repository.NewSQLiteLineItemRepo(database),
		repository.NewSQLiteMasterDataRepo(database),
		repository.NewSQLiteRevisionRepo(database),
		testutil.NewTestUoW(database)
}

func codesOf(nodes []*domain.TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Code)
	}
	return out
}

func TestBudgetService_CreateAddChildDelete_Scenario(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	p1, err := svc.Create(ctx, testutil.NewTestNode("054.01.GG", domain.KindProgram), nil)
	require.NoError(t, err)
	k1, err := svc.AddChild(ctx, p1, testutil.NewTestNode("2896", domain.KindKRO))
	require.NoError(t, err)

	forest, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, p1, forest[0].ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, k1, forest[0].Children[0].ID)

	child, err := svc.GetByID(ctx, k1)
	require.NoError(t, err)
	assert.Equal(t, 0, child.Order)
	assert.Equal(t, p1, child.ParentKey())

	removed, err := svc.Delete(ctx, p1)
	require.NoError(t, err)
	assert.True(t, removed)

	forest, err = svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, forest)
	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBudgetService_Create_AppendsAfterSiblings(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	for _, code := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, testutil.NewTestNode(code, domain.KindProgram), nil)
		require.NoError(t, err)
	}

	forest, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, codesOf(forest))

	roots, err := items.ListChildren(ctx, nil)
	require.NoError(t, err)
	for i, r := range roots {
		assert.Equal(t, i, r.Order)
	}
}

func TestBudgetService_Create_NestedChildrenGetFreshIDs(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	node := testutil.NewTestNode("054.01.GG", domain.KindProgram,
		testutil.NewTestNode("2896", domain.KindKRO,
			testutil.NewTestNode("BMA", domain.KindRO),
		),
		testutil.NewTestNode("2897", domain.KindKRO),
	)
	node.ID = "client-id"
	node.Children[0].ID = "client-child"

	id, err := svc.Create(ctx, node, nil)
	require.NoError(t, err)
	assert.NotEqual(t, "client-id", id)

	sub, err := svc.GetSubtree(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"2896", "2897"}, codesOf(sub.Children))
	assert.NotEqual(t, "client-child", sub.Children[0].ID)
	assert.Equal(t, []string{"BMA"}, codesOf(sub.Children[0].Children))

	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBudgetService_Create_RejectsInvalidKind(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	node := testutil.NewTestNode("X", domain.KindProgram, testutil.NewTestNode("Y", "BOGUS"))
	_, err := svc.Create(ctx, node, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing should be stored for a rejected node")
}

func TestBudgetService_AddChild_MissingParent(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	_, err := svc.AddChild(ctx, "missing", testutil.NewTestNode("2896", domain.KindKRO))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBudgetService_Create_RollsBackNestedInsert(t *testing.T) {
	database := testutil.NewTestDB(t)
	items := repository.NewSQLiteLineItemRepo(database)
	ctx := context.Background()

	// The whole subtree is one bulk insert, so failing exec #1 rejects all of it.
	failUoW := &testutil.FailOnNthExecUoW{DB: database, FailOn: 1, Err: fmt.Errorf("injected insert failure")}
	svc := NewBudgetService(items, failUoW)

	node := testutil.NewTestNode("A", domain.KindProgram, testutil.NewTestNode("B", domain.KindKRO))
	_, err := svc.Create(ctx, node, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected insert failure")
	assert.Contains(t, failUoW.FailedQuery, "INSERT INTO line_items")

	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBudgetService_Update_PartialFields(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	item := testutil.NewTestItem("521211", testutil.WithAmounts(testutil.Detail(1, "Layanan", 100), nil))
	require.NoError(t, items.Create(ctx, item))

	changed, err := svc.Update(ctx, item.ID, domain.LineItemPatch{
		Description: domain.Some("Belanja Bahan"),
		AfterAmount: domain.Some(testutil.Detail(2, "Layanan", 100)),
	})
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Belanja Bahan", got.Description)
	assert.Equal(t, "521211", got.Code)
	require.NotNil(t, got.BeforeAmount)
	assert.InDelta(t, 100, got.BeforeAmount.Total, 0.001)
	require.NotNil(t, got.AfterAmount)
	assert.InDelta(t, 200, got.AfterAmount.Total, 0.001)
	assert.Equal(t, item.Order, got.Order)
	assert.Nil(t, got.ParentID)
}

func TestBudgetService_Update_ClearsAmountWithExplicitNull(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	item := testutil.NewTestItem("521211", testutil.WithAmounts(testutil.Detail(1, "OK", 5), testutil.Detail(1, "OK", 5)))
	require.NoError(t, items.Create(ctx, item))

	changed, err := svc.Update(ctx, item.ID, domain.LineItemPatch{
		AfterAmount: domain.Some[*domain.BudgetDetail](nil),
	})
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.BeforeAmount)
	assert.Nil(t, got.AfterAmount)
	assert.Equal(t, domain.ChangeDeleted, domain.ChangeStatusOf(got.LineItemFields))
}

func TestBudgetService_Update_EmptyPatchIsNoop(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	item := testutil.NewTestItem("521211")
	require.NoError(t, items.Create(ctx, item))

	changed, err := svc.Update(ctx, item.ID, domain.LineItemPatch{})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestBudgetService_Update_MissingAndInvalid(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	changed, err := svc.Update(ctx, "missing", domain.LineItemPatch{Code: domain.Some("X")})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = svc.Update(ctx, "missing", domain.LineItemPatch{Kind: domain.Some[domain.RowKind]("BOGUS")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBudgetService_Delete_RemovesOnlyClosure(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	root := testutil.NewTestItem("ROOT", testutil.WithKind(domain.KindProgram))
	a := testutil.NewTestItem("A", testutil.WithParent(root.ID))
	a1 := testutil.NewTestItem("A1", testutil.WithParent(a.ID))
	a2 := testutil.NewTestItem("A2", testutil.WithParent(a.ID), testutil.WithOrder(1))
	b := testutil.NewTestItem("B", testutil.WithParent(root.ID), testutil.WithOrder(1))
	other := testutil.NewTestItem("OTHER", testutil.WithOrder(1))
	require.NoError(t, items.BulkCreate(ctx, []*domain.LineItem{root, a, a1, a2, b, other}))

	removed, err := svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	left, err := items.ListAll(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(left))
	for _, r := range left {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{root.ID, b.ID, other.ID}, ids)
}

func TestBudgetService_Delete_LeafAndMissing(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	root := testutil.NewTestItem("ROOT")
	leaf := testutil.NewTestItem("LEAF", testutil.WithParent(root.ID))
	require.NoError(t, items.BulkCreate(ctx, []*domain.LineItem{root, leaf}))

	removed, err := svc.Delete(ctx, leaf.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "deleting a leaf removes exactly one row")

	removed, err = svc.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestBudgetService_Copy_ShapeAndFreshIDs(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	node := testutil.NewTestNode("054.01.GG", domain.KindProgram,
		testutil.NewTestNode("2896", domain.KindKRO,
			testutil.NewTestNode("BMA", domain.KindRO),
		),
	)
	node.Children[0].AfterAmount = testutil.Detail(3, "Paket", 1000)
	origID, err := svc.Create(ctx, node, nil)
	require.NoError(t, err)

	before, err := items.ListAll(ctx)
	require.NoError(t, err)
	existing := map[string]bool{}
	for _, r := range before {
		existing[r.ID] = true
	}

	copyID, err := svc.Copy(ctx, origID)
	require.NoError(t, err)
	assert.False(t, existing[copyID])

	orig, err := svc.GetSubtree(ctx, origID)
	require.NoError(t, err)
	cp, err := svc.GetSubtree(ctx, copyID)
	require.NoError(t, err)

	var compare func(a, b *domain.TreeNode)
	compare = func(a, b *domain.TreeNode) {
		assert.False(t, existing[b.ID], "copied id %s collides with an existing row", b.ID)
		assert.Equal(t, a.LineItemFields, b.LineItemFields)
		require.Len(t, b.Children, len(a.Children))
		for i := range a.Children {
			compare(a.Children[i], b.Children[i])
		}
	}
	compare(orig, cp)

	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestBudgetService_Copy_PlacedRightAfterOriginal(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	var ids []string
	for _, code := range []string{"A", "B", "C"} {
		id, err := svc.Create(ctx, testutil.NewTestNode(code, domain.KindProgram), nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	copyID, err := svc.Copy(ctx, ids[0])
	require.NoError(t, err)

	forest, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A", "B", "C"}, codesOf(forest))
	assert.Equal(t, copyID, forest[1].ID)

	roots, err := items.ListChildren(ctx, nil)
	require.NoError(t, err)
	orders := map[int]bool{}
	for _, r := range roots {
		assert.False(t, orders[r.Order], "order %d is shared by two siblings", r.Order)
		orders[r.Order] = true
	}
}

func TestBudgetService_Copy_Missing(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	svc := NewBudgetService(items, uow)

	_, err := svc.Copy(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBudgetService_UpdateMonthlyAllocation_Scenario(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	item := testutil.NewTestItem("521211", testutil.WithMonthly(3, domain.MonthlyDetail{Planned: 10}))
	require.NoError(t, items.Create(ctx, item))

	err := svc.UpdateMonthlyAllocation(ctx, item.ID, 12, domain.MonthlyDetail{Planned: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.UpdateMonthlyAllocation(ctx, item.ID, -1, domain.MonthlyDetail{Planned: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.UpdateMonthlyAllocation(ctx, item.ID, 0, domain.MonthlyDetail{Planned: 500000}))

	got, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 500000, got.MonthlyAllocation["0"].Planned, 0.001)
	assert.InDelta(t, 10, got.MonthlyAllocation["3"].Planned, 0.001, "other months stay untouched")
}

func TestBudgetService_UpdateMonthlyAllocation_Missing(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	svc := NewBudgetService(items, uow)

	err := svc.UpdateMonthlyAllocation(context.Background(), "missing", 0, domain.MonthlyDetail{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBudgetService_GetSubtree_Missing(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	svc := NewBudgetService(items, uow)

	_, err := svc.GetSubtree(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBudgetService_Update_RejectsOutOfRangeMonthKeys(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	item := testutil.NewTestItem("521211", testutil.WithMonthly(3, domain.MonthlyDetail{Planned: 10}))
	require.NoError(t, items.Create(ctx, item))

	for _, key := range []string{"12", "-3", "99", "01"} {
		changed, err := svc.Update(ctx, item.ID, domain.LineItemPatch{
			MonthlyAllocation: domain.Some(domain.MonthlyAllocation{key: {Planned: 1}}),
		})
		require.Error(t, err, "key %q", key)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.False(t, changed)
	}

	got, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, got.MonthlyAllocation, 1)
	assert.InDelta(t, 10, got.MonthlyAllocation["3"].Planned, 0.001)

	changed, err := svc.Update(ctx, item.ID, domain.LineItemPatch{
		MonthlyAllocation: domain.Some(domain.MonthlyAllocation{"11": {Planned: 7}}),
	})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestBudgetService_Update_RejectsNullOpenFlag(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	item := testutil.NewTestItem("521211")
	require.NoError(t, items.Create(ctx, item))

	var patch domain.LineItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"isOpen":null}`), &patch))

	_, err := svc.Update(ctx, item.ID, patch)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Open(), "the row must stay expanded")
}

func TestBudgetService_Create_RejectsOutOfRangeMonthKeys(t *testing.T) {
	items, _, _, uow := setupRepos(t)
	ctx := context.Background()
	svc := NewBudgetService(items, uow)

	child := testutil.NewTestNode("521211", domain.KindAccount)
	child.MonthlyAllocation = domain.MonthlyAllocation{"99": {Planned: 1}}
	_, err := svc.Create(ctx, testutil.NewTestNode("054.01.GG", domain.KindProgram, child), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "node[0].children[0].monthlyAllocation")

	parent, err := svc.Create(ctx, testutil.NewTestNode("054.01.WA", domain.KindProgram), nil)
	require.NoError(t, err)
	_, err = svc.AddChild(ctx, parent, child)
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the valid program is stored")
}
