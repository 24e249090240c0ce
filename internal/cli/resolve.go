package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
)

// resolveByPrefix picks the id equal to input, or the single id starting
// with it.
func resolveByPrefix(what, input string, ids []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", what)
	}
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", what, input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", what, input, len(matches))
	}
}

// resolveLineItemID accepts a full line id or a unique prefix of one, as
// printed by "tree list".
func resolveLineItemID(ctx context.Context, app *App, input string) (string, error) {
	forest, err := app.Budget.GetAll(ctx)
	if err != nil {
		return "", err
	}
	var ids []string
	var walk func(nodes []*domain.TreeNode)
	walk = func(nodes []*domain.TreeNode) {
		for _, n := range nodes {
			ids = append(ids, n.ID)
			walk(n.Children)
		}
	}
	walk(forest)
	return resolveByPrefix("line item", input, ids)
}

// resolveRevisionID accepts a full revision id or a unique prefix of one.
func resolveRevisionID(ctx context.Context, app *App, input string) (string, error) {
	metas, err := app.Revisions.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(metas))
	for _, m := range metas {
		ids = append(ids, m.ID)
	}
	return resolveByPrefix("revision", input, ids)
}
