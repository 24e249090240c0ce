package contract

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the input files.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("rowkind", validateRowKind)
	return v
}

func validateRowKind(fl validator.FieldLevel) bool {
	return domain.RowKind(fl.Field().String()).Valid()
}

// Validate checks req against its struct tags. Failures come back as a
// *domain.ValidationError; a single failure names its field.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return toValidationError(err)
	}
	return nil
}

// ValidateMonth checks a zero-based month index.
func ValidateMonth(month int) error {
	if !domain.ValidMonth(month) {
		return domain.NewValidationError("month", "must be between 0 and %d, got %d", domain.MonthsPerYear-1, month)
	}
	return nil
}

// ValidMonthKey reports whether key is one of the canonical month keys
// "0".."11".
func ValidMonthKey(key string) bool {
	for m := 0; m < domain.MonthsPerYear; m++ {
		if domain.MonthKey(m) == key {
			return true
		}
	}
	return false
}

// ValidateMonthlyKeys rejects any allocation keyed outside "0".."11".
func ValidateMonthlyKeys(field string, alloc domain.MonthlyAllocation) error {
	for _, key := range slices.Sorted(maps.Keys(alloc)) {
		if !ValidMonthKey(key) {
			return domain.NewValidationError(field, "invalid month key %q, want \"0\"..\"%d\"", key, domain.MonthsPerYear-1)
		}
	}
	return nil
}

// ValidateKind checks a row kind.
func ValidateKind(kind domain.RowKind) error {
	if err := validate.Var(string(kind), "required,rowkind"); err != nil {
		return domain.NewValidationError("kind", "unknown row kind %q", kind)
	}
	return nil
}

// ValidateForest checks the kind and month keys of every node in the
// forest. The reported field is the node's path, e.g.
// "tree[0].children[2].kind".
func ValidateForest(field string, forest []*domain.TreeNode) error {
	for i, n := range forest {
		path := fmt.Sprintf("%s[%d]", field, i)
		if n == nil {
			return domain.NewValidationError(path, "node is null")
		}
		if err := ValidateKind(n.Kind); err != nil {
			return domain.NewValidationError(path+".kind", "unknown row kind %q", n.Kind)
		}
		if err := ValidateMonthlyKeys(path+".monthlyAllocation", n.MonthlyAllocation); err != nil {
			return err
		}
		if err := ValidateForest(path+".children", n.Children); err != nil {
			return err
		}
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", "%v", err)
	}
	if len(verrs) == 1 {
		return &domain.ValidationError{Field: fieldPath(verrs[0]), Reason: describe(verrs[0])}
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldPath(fe)+": "+describe(fe))
	}
	return &domain.ValidationError{Reason: strings.Join(parts, "; ")}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "rowkind":
		return fmt.Sprintf("unknown row kind %q", fe.Value())
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("rule '%s' expected '%s', got '%v'", fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
