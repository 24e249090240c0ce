package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
)

// SQLiteRevisionRepo implements RevisionRepo. The tree payload is stored as
// a single JSON document.
type SQLiteRevisionRepo struct {
	db db.DBTX
}

// NewSQLiteRevisionRepo creates a new SQLiteRevisionRepo.
func NewSQLiteRevisionRepo(db db.DBTX) *SQLiteRevisionRepo {
	return &SQLiteRevisionRepo{db: db}
}

func (r *SQLiteRevisionRepo) Create(ctx context.Context, rev *domain.Revision) error {
	tree := rev.Tree
	if tree == nil {
		tree = []*domain.TreeNode{}
	}
	payload, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding revision tree: %w", err)
	}
	query := `INSERT INTO revisions (id, note, created_at, tree) VALUES (?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, rev.ID, rev.Note, formatTime(rev.Timestamp), string(payload))
	if err != nil {
		return fmt.Errorf("inserting revision: %w", err)
	}
	return nil
}

// List returns revision metadata, newest first. The tree payload is not read.
func (r *SQLiteRevisionRepo) List(ctx context.Context) ([]domain.RevisionMeta, error) {
	query := `SELECT id, note, created_at FROM revisions ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	defer rows.Close()

	var metas []domain.RevisionMeta
	for rows.Next() {
		var m domain.RevisionMeta
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning revision row: %w", err)
		}
		if m.Timestamp, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing revision timestamp: %w", err)
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revisions: %w", err)
	}
	return metas, nil
}

func (r *SQLiteRevisionRepo) GetByID(ctx context.Context, id string) (*domain.Revision, error) {
	query := `SELECT id, note, created_at, tree FROM revisions WHERE id = ?`
	var rev domain.Revision
	var createdAt, payload string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rev.ID, &rev.Note, &createdAt, &payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("revision %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning revision: %w", err)
	}
	if rev.Timestamp, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing revision timestamp: %w", err)
	}
	rev.Tree = []*domain.TreeNode{}
	if err := json.Unmarshal([]byte(payload), &rev.Tree); err != nil {
		return nil, fmt.Errorf("decoding revision tree: %w", err)
	}
	return &rev, nil
}

func (r *SQLiteRevisionRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revisions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting revision: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (r *SQLiteRevisionRepo) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "revisions")
}
