package importer

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/sisara/internal/contract"
	"github.com/alexanderramin/sisara/internal/domain"
)

// ValidateForest checks an imported tree before it reaches the sync engine.
// Returns a slice of all validation errors found.
func ValidateForest(forest []*domain.TreeNode) []error {
	ids := make(map[string]bool)
	return validateNodes("tree", forest, ids)
}

func validateNodes(prefix string, nodes []*domain.TreeNode, ids map[string]bool) []error {
	var errs []error

	for i, n := range nodes {
		path := fmt.Sprintf("%s[%d]", prefix, i)
		if n == nil {
			errs = append(errs, fmt.Errorf("%s: node is null", path))
			continue
		}

		if n.ID != "" {
			if ids[n.ID] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", path, n.ID))
			}
			ids[n.ID] = true
		}

		if n.Kind == "" {
			errs = append(errs, fmt.Errorf("%s.kind is required", path))
		} else if err := contract.ValidateKind(n.Kind); err != nil {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", path, n.Kind))
		}

		for key := range n.MonthlyAllocation {
			if !contract.ValidMonthKey(key) {
				errs = append(errs, fmt.Errorf("%s.monthlyAllocation: invalid month key %q", path, key))
			}
		}

		errs = append(errs, validateNodes(path+".children", n.Children, ids)...)
	}

	return errs
}

// ValidateMasterData checks an imported catalog. Duplicate codes are reported
// for kinds that do not allow them; COMPONENT entries must differ by
// description instead.
func ValidateMasterData(file MasterDataFile) []error {
	var errs []error

	for _, kind := range sortedKinds(file) {
		if err := contract.ValidateKind(kind); err != nil {
			errs = append(errs, fmt.Errorf("masterData.%s: invalid kind", kind))
			continue
		}
		seen := make(map[string]bool)
		for i, item := range file[kind] {
			path := fmt.Sprintf("masterData.%s[%d]", kind, i)
			if item.Code == "" {
				errs = append(errs, fmt.Errorf("%s.code is required", path))
				continue
			}
			key := item.Code
			if kind.AllowsDuplicateCodes() {
				key += "\x00" + item.Description
			}
			if seen[key] {
				errs = append(errs, fmt.Errorf("%s.code: duplicate code %q", path, item.Code))
			}
			seen[key] = true
		}
	}

	return errs
}

// ValidateSeed checks both halves of a seed file.
func ValidateSeed(seed *SeedFile) []error {
	errs := ValidateForest(seed.Tree)
	return append(errs, ValidateMasterData(seed.MasterData)...)
}

// sortedKinds lists the file's kinds in hierarchy order, unknown kinds last.
func sortedKinds(file MasterDataFile) []domain.RowKind {
	var kinds []domain.RowKind
	for _, k := range domain.RowKinds {
		if _, ok := file[k]; ok {
			kinds = append(kinds, k)
		}
	}
	var unknown []domain.RowKind
	for k := range file {
		if !k.Valid() {
			unknown = append(unknown, k)
		}
	}
	slices.Sort(unknown)
	return append(kinds, unknown...)
}
