package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Tables lists the persisted collections in creation order.
var Tables = []string{"line_items", "master_data", "revisions"}

var migrations = []string{
	// parent_id has no foreign key. Tree shape is kept by the engines.
	`CREATE TABLE IF NOT EXISTS line_items (
		id                 TEXT PRIMARY KEY,
		parent_id          TEXT,
		code               TEXT NOT NULL DEFAULT '',
		description        TEXT NOT NULL DEFAULT '',
		kind               TEXT NOT NULL
		                   CHECK(kind IN ('SATKER','PROGRAM','ACTIVITY','KRO','RO','COMPONENT',
		                                  'SUBCOMPONENT','ACCOUNT','DETAIL','UNIT','PAYMENT_MECHANISM')),
		before_amount      TEXT,
		after_amount       TEXT,
		monthly_allocation TEXT NOT NULL DEFAULT '{}',
		is_blocked         INTEGER,
		is_open            INTEGER NOT NULL DEFAULT 1,
		order_index        INTEGER NOT NULL DEFAULT 0 CHECK(order_index >= 0),
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_line_items_parent ON line_items(parent_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS master_data (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL
		            CHECK(kind IN ('SATKER','PROGRAM','ACTIVITY','KRO','RO','COMPONENT',
		                           'SUBCOMPONENT','ACCOUNT','DETAIL','UNIT','PAYMENT_MECHANISM')),
		code        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_master_data_kind ON master_data(kind)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_master_data_kind_code
		ON master_data(kind, code) WHERE kind != 'COMPONENT'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_master_data_component
		ON master_data(kind, code, description) WHERE kind = 'COMPONENT'`,

	`CREATE TABLE IF NOT EXISTS revisions (
		id         TEXT PRIMARY KEY,
		note       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		tree       TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_revisions_created ON revisions(created_at)`,
}
