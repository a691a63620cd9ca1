package db

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the individual statements the Store composes.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type taskRow struct {
	ID          string
	Title       string
	Description sql.NullString
	Difficulty  sql.NullInt64
	Deadline    sql.NullString
	Completed   bool
	ParentID    sql.NullString
	CreatedAt   int64
}

const taskColumns = "t.id, t.title, t.description, t.difficulty, t.deadline, t.completed, t.parent_id, t.created_at"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (taskRow, error) {
	var r taskRow
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Difficulty, &r.Deadline, &r.Completed, &r.ParentID, &r.CreatedAt)
	return r, err
}

const insertTask = `INSERT INTO tasks (id, title, description, difficulty, deadline, completed, parent_id, created_at)
VALUES (?, ?, ?, ?, ?, 0, ?, ?)`

func (q *Queries) InsertTask(ctx context.Context, r taskRow) error {
	_, err := q.db.ExecContext(ctx, insertTask, r.ID, r.Title, r.Description, r.Difficulty, r.Deadline, r.ParentID, r.CreatedAt)
	return err
}

const updateTask = `UPDATE tasks
SET title = ?, description = ?, difficulty = ?, deadline = ?, parent_id = ?
WHERE id = ?`

// UpdateTask rewrites the mutable columns. Identity, creation time and
// completion are left alone.
func (q *Queries) UpdateTask(ctx context.Context, r taskRow) error {
	_, err := q.db.ExecContext(ctx, updateTask, r.Title, r.Description, r.Difficulty, r.Deadline, r.ParentID, r.ID)
	return err
}

func (q *Queries) SetCompleted(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, "UPDATE tasks SET completed = 1 WHERE id = ?", id)
	return err
}

func (q *Queries) GetTask(ctx context.Context, id string) (taskRow, error) {
	return scanTask(q.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks t WHERE t.id = ?", id))
}

func (q *Queries) ListTaskIDsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM tasks WHERE substr(id, 1, length(?)) = ? ORDER BY id`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const isAncestor = `WITH RECURSIVE ancestors(id) AS (
    SELECT parent_id FROM tasks WHERE id = ?
    UNION
    SELECT t.parent_id FROM tasks t JOIN ancestors a ON t.id = a.id
)
SELECT COUNT(*) FROM ancestors WHERE id = ?`

// IsAncestor reports whether ancestorID appears in the parent chain of taskID.
func (q *Queries) IsAncestor(ctx context.Context, taskID, ancestorID string) (bool, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, isAncestor, taskID, ancestorID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q *Queries) ListTasks(ctx context.Context, query string, args ...interface{}) ([]taskRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []taskRow
	for rows.Next() {
		r, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (q *Queries) DeleteTask(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteTasksByTags removes every task carrying at least one of names.
// Rows removed through cascades are not counted.
func (q *Queries) DeleteTasksByTags(ctx context.Context, names []string) (int64, error) {
	query := `DELETE FROM tasks WHERE id IN (
    SELECT tt.task_id FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
    WHERE g.name IN (` + placeholders(len(names)) + `))`
	res, err := q.db.ExecContext(ctx, query, stringArgs(names)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) CreateTag(ctx context.Context, name string) (int64, error) {
	if _, err := q.db.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name); err != nil {
		return 0, err
	}
	var id int64
	err := q.db.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&id)
	return id, err
}

func (q *Queries) AssignTagToTask(ctx context.Context, taskID string, tagID int64) error {
	_, err := q.db.ExecContext(ctx, "INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)", taskID, tagID)
	return err
}

func (q *Queries) ClearTagsForTask(ctx context.Context, taskID string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = ?", taskID)
	return err
}

func (q *Queries) ListTagsForTask(ctx context.Context, taskID string) ([]string, error) {
	return q.names(ctx, `SELECT g.name FROM tags g JOIN task_tags tt ON tt.tag_id = g.id
WHERE tt.task_id = ? ORDER BY g.name`, taskID)
}

func (q *Queries) ListTagNames(ctx context.Context) ([]string, error) {
	return q.names(ctx, "SELECT name FROM tags ORDER BY name")
}

// PruneTags drops tags no task refers to any more.
func (q *Queries) PruneTags(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM tags WHERE id NOT IN (SELECT tag_id FROM task_tags)")
	return err
}

func (q *Queries) DeleteAll(ctx context.Context) error {
	for _, stmt := range []string{"DELETE FROM task_tags", "DELETE FROM tasks", "DELETE FROM tags"} {
		if _, err := q.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) Vacuum(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, "VACUUM")
	return err
}

func (q *Queries) names(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return args
}
