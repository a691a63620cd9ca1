package db

import (
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/model"
)

// listOrdering puts dated tasks first, soonest deadline first, then harder
// tasks first. Creation order and id keep the result deterministic.
const listOrdering = "t.deadline IS NULL, t.deadline ASC, t.difficulty IS NULL, t.difficulty DESC, t.created_at ASC, t.id ASC"

// buildListQuery composes the filtered listing statement. Tags match when a
// task carries any of them; EXISTS keeps each task to a single row.
func buildListQuery(filter model.Filter, limit int) (string, []interface{}, error) {
	var conditions []string
	var args []interface{}

	tags := normalizeTags(filter.Tags)
	parent := strings.TrimSpace(filter.ParentPrefix)
	if len(tags) > 0 && parent != "" {
		return "", nil, model.Invalid("filter", "tag and parent filters cannot be combined")
	}

	if len(tags) > 0 {
		conditions = append(conditions, `EXISTS (SELECT 1 FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
    WHERE tt.task_id = t.id AND g.name IN (`+placeholders(len(tags))+`))`)
		args = append(args, stringArgs(tags)...)
	}

	if parent != "" {
		// Identifiers are case-sensitive, which LIKE is not.
		conditions = append(conditions, "substr(t.parent_id, 1, length(?)) = ?")
		args = append(args, parent, parent)
	}

	switch filter.Scope {
	case model.ScopeIncomplete:
		conditions = append(conditions, "t.completed = 0")
	case model.ScopeCompleted:
		conditions = append(conditions, "t.completed = 1")
	case model.ScopeAll:
	default:
		return "", nil, model.Invalid("filter", "unknown completion scope %d", int(filter.Scope))
	}

	query := "SELECT " + taskColumns + " FROM tasks t"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + listOrdering

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return query, args, nil
}
