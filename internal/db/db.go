package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Open opens the task database at path, creating and migrating the schema
// as needed. Foreign keys are enabled so deletes cascade to children and
// tag associations.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	// An in-memory database lives on a single connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// legacyColumns are columns missing from databases written by the first
// revision, which only stored id, title, description, difficulty and deadline.
var legacyColumns = []struct {
	name       string
	definition string
}{
	{"completed", "INTEGER NOT NULL DEFAULT 0"},
	{"parent_id", "TEXT REFERENCES tasks(id) ON DELETE CASCADE"},
	{"created_at", "INTEGER NOT NULL DEFAULT 0"},
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	for _, column := range legacyColumns {
		if err := ensureTaskColumn(ctx, db, column.name, column.definition); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_tasks_parent_id ON tasks(parent_id)"); err != nil {
		return fmt.Errorf("create idx_tasks_parent_id: %w", err)
	}

	return nil
}

func ensureTaskColumn(ctx context.Context, db *sql.DB, name, definition string) error {
	var exists int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM pragma_table_info('tasks') WHERE name = ? LIMIT 1", name).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check tasks.%s column: %w", name, err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE tasks ADD COLUMN %s %s", name, definition)); err != nil {
		return fmt.Errorf("add tasks.%s column: %w", name, err)
	}
	return nil
}
