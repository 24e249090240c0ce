package db

import (
	"context"
	"database/sql"
)

// DBTX is what the line item, catalog and revision repositories run their
// SQL against. A *sql.DB serves single-statement reads and writes; the
// *sql.Tx handed out by WithinTx serves the multi-row engines.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
