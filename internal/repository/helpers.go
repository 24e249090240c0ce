package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
)

// ErrNotFound is returned (wrapped) when a keyed lookup matches no row.
var ErrNotFound = domain.ErrNotFound

// timestampLayout is fixed-width so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// bulkChunk caps rows per multi-row statement to stay under SQLite's
// bound-variable limit.
const bulkChunk = 200

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		// Rows written by hand or older tooling may use plain RFC3339.
		return time.Parse(time.RFC3339, s)
	}
	return t, nil
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int64) bool {
	return i != 0
}

// nullableBoolToValue converts a *bool to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableBoolToValue(b *bool) any {
	if b == nil {
		return nil
	}
	return boolToInt(*b)
}

func nullableBool(v sql.NullInt64) *bool {
	if !v.Valid {
		return nil
	}
	return domain.BoolPtr(intToBool(v.Int64))
}

// detailToValue encodes an optional budget detail as JSON text, or SQL NULL.
func detailToValue(d *domain.BudgetDetail) (any, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding budget detail: %w", err)
	}
	return string(b), nil
}

func parseDetail(s sql.NullString) (*domain.BudgetDetail, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var d domain.BudgetDetail
	if err := json.Unmarshal([]byte(s.String), &d); err != nil {
		return nil, fmt.Errorf("decoding budget detail: %w", err)
	}
	return &d, nil
}

func allocationToValue(m domain.MonthlyAllocation) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding monthly allocation: %w", err)
	}
	return string(b), nil
}

func parseAllocation(s string) (domain.MonthlyAllocation, error) {
	m := domain.MonthlyAllocation{}
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decoding monthly allocation: %w", err)
	}
	return m, nil
}

func countRows(ctx context.Context, q db.DBTX, table string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}

func stringsToAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
