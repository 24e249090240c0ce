package contract

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationError(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

// --- MonthlyAllocationRequest ---

func TestMonthlyAllocationRequest_MonthBounds(t *testing.T) {
	for _, month := range []int{0, 5, 11} {
		req := MonthlyAllocationRequest{ID: "x", Month: month}
		assert.NoError(t, req.Check(), "month %d", month)
	}

	for _, month := range []int{-1, 12, 99} {
		req := MonthlyAllocationRequest{ID: "x", Month: month}
		verr := requireValidationError(t, req.Check())
		assert.Equal(t, "month", verr.Field)
	}
}

func TestMonthlyAllocationRequest_RequiresID(t *testing.T) {
	verr := requireValidationError(t, MonthlyAllocationRequest{Month: 1}.Check())
	assert.Equal(t, "id", verr.Field)
	assert.Contains(t, verr.Error(), "is required")
}

func TestMonthlyAllocationRequest_Valid(t *testing.T) {
	req := MonthlyAllocationRequest{ID: "x", Month: 11, Detail: domain.MonthlyDetail{Planned: 1}}
	assert.NoError(t, req.Check())
}

func TestValidMonthKey(t *testing.T) {
	for m := 0; m < domain.MonthsPerYear; m++ {
		assert.True(t, ValidMonthKey(domain.MonthKey(m)), "month %d", m)
	}
	for _, key := range []string{"12", "-1", "99", "01", " 1", "", "jan"} {
		assert.False(t, ValidMonthKey(key), "key %q", key)
	}
}

func TestValidateMonthlyKeys(t *testing.T) {
	assert.NoError(t, ValidateMonthlyKeys("m", nil))
	assert.NoError(t, ValidateMonthlyKeys("m", domain.MonthlyAllocation{"0": {}, "11": {}}))

	verr := requireValidationError(t, ValidateMonthlyKeys("m", domain.MonthlyAllocation{"12": {}}))
	assert.Equal(t, "m", verr.Field)
	assert.Contains(t, verr.Reason, `"12"`)
}

func TestValidateMonth(t *testing.T) {
	assert.NoError(t, ValidateMonth(0))
	assert.NoError(t, ValidateMonth(11))
	verr := requireValidationError(t, ValidateMonth(12))
	assert.Contains(t, verr.Reason, "got 12")
}

// --- Row kinds ---

func TestValidateKind(t *testing.T) {
	for _, k := range domain.RowKinds {
		assert.NoError(t, ValidateKind(k))
	}
	requireValidationError(t, ValidateKind("BOGUS"))
	requireValidationError(t, ValidateKind(""))
}

func TestParseKind_Normalises(t *testing.T) {
	assert.Equal(t, domain.KindPaymentMechanism, ParseKind(" payment_mechanism "))
}

func TestCreateLineItemRequest_ChecksNestedKinds(t *testing.T) {
	req := CreateLineItemRequest{
		Node: &domain.TreeNode{
			LineItemFields: domain.LineItemFields{Kind: domain.KindProgram},
			Children: []*domain.TreeNode{
				{LineItemFields: domain.LineItemFields{Kind: domain.KindActivity}},
				{LineItemFields: domain.LineItemFields{Kind: "NOPE"}},
			},
		},
	}
	verr := requireValidationError(t, req.Check())
	assert.Equal(t, "node[0].children[1].kind", verr.Field)
}

func TestCreateLineItemRequest_RequiresNode(t *testing.T) {
	verr := requireValidationError(t, CreateLineItemRequest{}.Check())
	assert.Equal(t, "node", verr.Field)
}

func TestCreateLineItemRequest_EmptyParentRejected(t *testing.T) {
	empty := ""
	req := CreateLineItemRequest{
		ParentID: &empty,
		Node:     &domain.TreeNode{LineItemFields: domain.LineItemFields{Kind: domain.KindAccount}},
	}
	verr := requireValidationError(t, req.Check())
	assert.Equal(t, "parentId", verr.Field)
}

func TestUpdateLineItemRequest_KindInPatch(t *testing.T) {
	ok := UpdateLineItemRequest{ID: "x", Patch: domain.LineItemPatch{Kind: domain.Some(domain.KindDetail)}}
	assert.NoError(t, ok.Check())

	bad := UpdateLineItemRequest{ID: "x", Patch: domain.LineItemPatch{Kind: domain.Some[domain.RowKind]("LEVEL9")}}
	requireValidationError(t, bad.Check())

	assert.NoError(t, UpdateLineItemRequest{ID: "x"}.Check(), "an empty patch is not an error")
}

func TestUpdateLineItemRequest_MonthlyKeys(t *testing.T) {
	ok := UpdateLineItemRequest{ID: "x", Patch: domain.LineItemPatch{
		MonthlyAllocation: domain.Some(domain.MonthlyAllocation{"0": {Planned: 1}}),
	}}
	assert.NoError(t, ok.Check())

	bad := UpdateLineItemRequest{ID: "x", Patch: domain.LineItemPatch{
		MonthlyAllocation: domain.Some(domain.MonthlyAllocation{"0": {}, "-3": {}}),
	}}
	verr := requireValidationError(t, bad.Check())
	assert.Equal(t, "patch.monthlyAllocation", verr.Field)
}

func TestUpdateLineItemRequest_NullOpenFlag(t *testing.T) {
	var patch domain.LineItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"isOpen":null}`), &patch))
	verr := requireValidationError(t, UpdateLineItemRequest{ID: "x", Patch: patch}.Check())
	assert.Equal(t, "patch.isOpen", verr.Field)

	require.NoError(t, json.Unmarshal([]byte(`{"isOpen":false}`), &patch))
	assert.NoError(t, UpdateLineItemRequest{ID: "x", Patch: patch}.Check())
}

func TestSyncTreeRequest_MonthlyKeysInNestedNode(t *testing.T) {
	child := &domain.TreeNode{LineItemFields: domain.LineItemFields{
		Kind:              domain.KindAccount,
		MonthlyAllocation: domain.MonthlyAllocation{"99": {}},
	}}
	req := SyncTreeRequest{Tree: []*domain.TreeNode{{
		LineItemFields: domain.LineItemFields{Kind: domain.KindProgram},
		Children:       []*domain.TreeNode{child},
	}}}
	verr := requireValidationError(t, req.Check())
	assert.Equal(t, "tree[0].children[0].monthlyAllocation", verr.Field)
}

func TestSyncTreeRequest_NilNodeRejected(t *testing.T) {
	verr := requireValidationError(t, SyncTreeRequest{Tree: []*domain.TreeNode{nil}}.Check())
	assert.Equal(t, "tree[0]", verr.Field)

	assert.NoError(t, SyncTreeRequest{}.Check(), "an empty tree is a valid sync")
}

// --- Master data ---

func TestMasterDataRequest(t *testing.T) {
	assert.NoError(t, NewMasterDataRequest("account", "521211", "Belanja Bahan").Check())

	verr := requireValidationError(t, NewMasterDataRequest("account", "", "x").Check())
	assert.Equal(t, "code", verr.Field)

	verr = requireValidationError(t, NewMasterDataRequest("galaxy", "1", "x").Check())
	assert.Equal(t, "kind", verr.Field)
	assert.Contains(t, verr.Reason, "GALAXY")
}

func TestMasterDataRequest_MultipleFailures(t *testing.T) {
	verr := requireValidationError(t, MasterDataRequest{}.Check())
	assert.Empty(t, verr.Field)
	assert.Contains(t, verr.Reason, "kind: is required")
	assert.Contains(t, verr.Reason, "code: is required")
}

func TestMasterDataUpdateRequest_RequiresNewDescription(t *testing.T) {
	req := MasterDataUpdateRequest{Kind: domain.KindUnit, Code: "OK"}
	verr := requireValidationError(t, req.Check())
	assert.Equal(t, "newDescription", verr.Field)
}

func TestRevisionCreateRequest_NoteLength(t *testing.T) {
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	requireValidationError(t, RevisionCreateRequest{Note: string(long)}.Check())
	assert.NoError(t, RevisionCreateRequest{Note: "before APBN-P"}.Check())
}
