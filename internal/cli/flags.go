package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/sisara/internal/contract"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/spf13/pflag"
)

// lineFlags are the content flags shared by "tree add", "tree add-child"
// and "tree update".
type lineFlags struct {
	kind        string
	code        string
	description string
	before      string
	after       string
	blocked     bool
	open        bool
}

func (f *lineFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.kind, "kind", "", "Row kind (SATKER, PROGRAM, ACTIVITY, KRO, RO, COMPONENT, SUBCOMPONENT, ACCOUNT, DETAIL, UNIT, PAYMENT_MECHANISM)")
	fs.StringVar(&f.code, "code", "", "Code, e.g. 054.01.GG or 521211")
	fs.StringVar(&f.description, "description", "", "Description")
	fs.StringVar(&f.before, "before", "", "Amount before revision as VOLUME,UNIT,UNIT_PRICE,TOTAL")
	fs.StringVar(&f.after, "after", "", "Amount after revision as VOLUME,UNIT,UNIT_PRICE,TOTAL")
	fs.BoolVar(&f.blocked, "blocked", false, "Mark the line as blocked")
	fs.BoolVar(&f.open, "open", true, "Expand the line when browsing")
}

// node builds a childless tree node from the flags.
func (f *lineFlags) node(fs *pflag.FlagSet) (*domain.TreeNode, error) {
	n := &domain.TreeNode{
		LineItemFields: domain.LineItemFields{
			Code:              f.code,
			Description:       f.description,
			Kind:              contract.ParseKind(f.kind),
			MonthlyAllocation: domain.MonthlyAllocation{},
			IsOpen:            domain.BoolPtr(f.open),
		},
		Children: []*domain.TreeNode{},
	}
	var err error
	if n.BeforeAmount, err = parseDetail(f.before); err != nil {
		return nil, fmt.Errorf("--before: %w", err)
	}
	if n.AfterAmount, err = parseDetail(f.after); err != nil {
		return nil, fmt.Errorf("--after: %w", err)
	}
	if fs.Changed("blocked") {
		n.IsBlocked = domain.BoolPtr(f.blocked)
	}
	return n, nil
}

// patch builds a patch from the flags the user actually set. An empty
// --before or --after clears that amount.
func (f *lineFlags) patch(fs *pflag.FlagSet) (domain.LineItemPatch, error) {
	var p domain.LineItemPatch
	changed := fs.Changed
	if changed("kind") {
		p.Kind = domain.Some(contract.ParseKind(f.kind))
	}
	if changed("code") {
		p.Code = domain.Some(f.code)
	}
	if changed("description") {
		p.Description = domain.Some(f.description)
	}
	if changed("before") {
		d, err := parseDetail(f.before)
		if err != nil {
			return p, fmt.Errorf("--before: %w", err)
		}
		p.BeforeAmount = domain.Some(d)
	}
	if changed("after") {
		d, err := parseDetail(f.after)
		if err != nil {
			return p, fmt.Errorf("--after: %w", err)
		}
		p.AfterAmount = domain.Some(d)
	}
	if changed("blocked") {
		p.IsBlocked = domain.Some(domain.BoolPtr(f.blocked))
	}
	if changed("open") {
		p.IsOpen = domain.Some(f.open)
	}
	return p, nil
}

// parseDetail reads "VOLUME,UNIT,UNIT_PRICE,TOTAL". Values are stored as
// given; the total is not derived from volume and price. An empty string
// means no amount.
func parseDetail(s string) (*domain.BudgetDetail, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("want VOLUME,UNIT,UNIT_PRICE,TOTAL, got %q", s)
	}
	volume, err := parseAmount(parts[0])
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	price, err := parseAmount(parts[2])
	if err != nil {
		return nil, fmt.Errorf("unit price: %w", err)
	}
	total, err := parseAmount(parts[3])
	if err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}
	return &domain.BudgetDetail{
		Volume:    volume,
		Unit:      strings.TrimSpace(parts[1]),
		UnitPrice: price,
		Total:     total,
	}, nil
}

// parseAmount accepts plain numbers and rupiah written with "." thousand
// separators, e.g. "1.500.000".
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ".") > 1 || (strings.Contains(s, ".") && len(s)-strings.LastIndex(s, ".") == 4) {
		s = strings.ReplaceAll(s, ".", "")
	}
	return strconv.ParseFloat(s, 64)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fileErrors folds importer findings into one validation error.
func fileErrors(path string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w", path, errors.Join(errs...))
}
