package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/sisara/internal/db"
)

// FailOnNthExecUoW breaks a tree mutation partway through: the FailOn-th
// write statement (counting from 1) returns Err instead of running, and the
// transaction rolls back. Reads are never counted, so a sync fails on 1 at
// its DELETE and on 2 at its first INSERT.
//
// FailedQuery holds the statement that was refused, letting a test confirm
// it broke the write it meant to.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	FailedQuery string
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tree transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: u.Err}
	fnErr := fn(ctx, wrapped)
	u.FailedQuery = wrapped.failed
	if fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	writes atomic.Int32
	failOn int32
	err    error
	failed string
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.writes.Add(1) == f.failOn {
		f.failed = query
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
