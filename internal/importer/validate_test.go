package importer

import (
	"testing"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, code string, kind domain.RowKind, children ...*domain.TreeNode) *domain.TreeNode {
	return &domain.TreeNode{
		ID:             id,
		LineItemFields: domain.LineItemFields{Code: code, Kind: kind},
		Children:       children,
	}
}

func TestValidateForest_Valid(t *testing.T) {
	forest := []*domain.TreeNode{
		node("", "WA", domain.KindProgram, node("", "4471", domain.KindActivity)),
		node("x", "DL", domain.KindProgram),
	}
	assert.Empty(t, ValidateForest(forest))
	assert.Empty(t, ValidateForest(nil))
}

func TestValidateForest_CollectsAllErrors(t *testing.T) {
	bad := node("a", "X", "NOPE")
	bad.MonthlyAllocation = domain.MonthlyAllocation{"12": {}}
	forest := []*domain.TreeNode{
		node("a", "WA", domain.KindProgram, bad, node("", "Y", "")),
		nil,
	}

	errs := ValidateForest(forest)
	require.Len(t, errs, 5)
	assert.Contains(t, errs[0].Error(), "tree[0].children[0].id: duplicate id")
	assert.Contains(t, errs[1].Error(), `tree[0].children[0].kind: invalid value "NOPE"`)
	assert.Contains(t, errs[2].Error(), `invalid month key "12"`)
	assert.Contains(t, errs[3].Error(), "tree[0].children[1].kind is required")
	assert.Contains(t, errs[4].Error(), "tree[1]: node is null")
}

func TestValidateMasterData(t *testing.T) {
	file := MasterDataFile{
		domain.KindAccount: {
			{Code: "521211", Description: "A"},
			{Code: "521211", Description: "B"},
			{Code: ""},
		},
		domain.KindComponent: {
			{Code: "051", Description: "PERSIAPAN"},
			{Code: "051", Description: "PELAKSANAAN"},
			{Code: "051", Description: "PERSIAPAN"},
		},
		"GALAXY": {{Code: "1"}},
	}

	errs := ValidateMasterData(file)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0].Error(), `masterData.COMPONENT[2].code: duplicate code "051"`)
	assert.Contains(t, errs[1].Error(), `masterData.ACCOUNT[1].code: duplicate code "521211"`)
	assert.Contains(t, errs[2].Error(), "masterData.ACCOUNT[2].code is required")
	assert.Contains(t, errs[3].Error(), "masterData.GALAXY: invalid kind")
}

func TestValidateSeed(t *testing.T) {
	seed := &SeedFile{
		Tree:       []*domain.TreeNode{node("", "A", "BAD")},
		MasterData: MasterDataFile{domain.KindUnit: {{Code: ""}}},
	}
	assert.Len(t, ValidateSeed(seed), 2)
}
