package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/huandu/go-sqlbuilder"
)

const masterDataColumns = `id, kind, code, description`

// SQLiteMasterDataRepo implements MasterDataRepo.
type SQLiteMasterDataRepo struct {
	db db.DBTX
}

// NewSQLiteMasterDataRepo creates a new SQLiteMasterDataRepo.
func NewSQLiteMasterDataRepo(db db.DBTX) *SQLiteMasterDataRepo {
	return &SQLiteMasterDataRepo{db: db}
}

func (r *SQLiteMasterDataRepo) Create(ctx context.Context, e *domain.MasterDataEntry) error {
	return r.BulkCreate(ctx, []*domain.MasterDataEntry{e})
}

// BulkCreate inserts entries in chunks. A unique index violation surfaces as
// a *domain.ConflictError naming the first entry of the failing chunk; the
// service layer checks batches up front to name the exact offender.
func (r *SQLiteMasterDataRepo) BulkCreate(ctx context.Context, entries []*domain.MasterDataEntry) error {
	now := formatTime(time.Now())
	for start := 0; start < len(entries); start += bulkChunk {
		end := min(start+bulkChunk, len(entries))

		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("master_data")
		ib.Cols("id", "kind", "code", "description", "created_at")
		for _, e := range entries[start:end] {
			ib.Values(e.ID, string(e.Kind), e.Code, e.Description, now)
		}

		query, args := ib.Build()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				first := entries[start]
				return fmt.Errorf("inserting master data: %w",
					&domain.ConflictError{Kind: first.Kind, Code: first.Code})
			}
			return fmt.Errorf("inserting master data: %w", err)
		}
	}
	return nil
}

// ListAll returns every entry in insertion order.
func (r *SQLiteMasterDataRepo) ListAll(ctx context.Context) ([]*domain.MasterDataEntry, error) {
	query := `SELECT ` + masterDataColumns + ` FROM master_data ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing master data: %w", err)
	}
	defer rows.Close()
	return scanMasterDataEntries(rows)
}

func (r *SQLiteMasterDataRepo) ListByKind(ctx context.Context, kind domain.RowKind) ([]*domain.MasterDataEntry, error) {
	query := `SELECT ` + masterDataColumns + ` FROM master_data WHERE kind = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing master data by kind: %w", err)
	}
	defer rows.Close()
	return scanMasterDataEntries(rows)
}

// Find returns the entries with the given kind and code. A non-nil
// description narrows the match further.
func (r *SQLiteMasterDataRepo) Find(ctx context.Context, kind domain.RowKind, code string, description *string) ([]*domain.MasterDataEntry, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(masterDataColumns)
	sb.From("master_data")
	where := []string{sb.Equal("kind", string(kind)), sb.Equal("code", code)}
	if description != nil {
		where = append(where, sb.Equal("description", *description))
	}
	sb.Where(where...)
	sb.OrderBy("rowid")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding master data: %w", err)
	}
	defer rows.Close()
	return scanMasterDataEntries(rows)
}

func (r *SQLiteMasterDataRepo) UpdateDescription(ctx context.Context, id string, description string) (bool, error) {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("master_data")
	ub.Set(ub.Assign("description", description))
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("updating master data: %w", domain.ErrConflict)
		}
		return false, fmt.Errorf("updating master data: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (r *SQLiteMasterDataRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM master_data WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting master data: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (r *SQLiteMasterDataRepo) DeleteByKind(ctx context.Context, kind domain.RowKind) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM master_data WHERE kind = ?`, string(kind))
	if err != nil {
		return 0, fmt.Errorf("clearing master data kind: %w", err)
	}
	return affected(res)
}

func (r *SQLiteMasterDataRepo) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "master_data")
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func scanMasterDataEntries(rows *sql.Rows) ([]*domain.MasterDataEntry, error) {
	var entries []*domain.MasterDataEntry
	for rows.Next() {
		var e domain.MasterDataEntry
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Code, &e.Description); err != nil {
			return nil, fmt.Errorf("scanning master data row: %w", err)
		}
		e.Kind = domain.RowKind(kind)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating master data: %w", err)
	}
	return entries, nil
}
