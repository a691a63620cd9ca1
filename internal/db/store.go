package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/Joseda-hg/lazytodo/internal/deadline"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

// Store is the task repository. Every operation that touches more than one
// row runs in a single transaction.
type Store struct {
	DB      *sql.DB
	Queries *Queries

	// Now supplies the current time for deadline parsing and creation stamps.
	Now func() time.Time
	// Log receives non-fatal warnings such as unknown ids during bulk removal.
	Log *log.Logger
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:      db,
		Queries: New(db),
		Now:     time.Now,
		Log:     log.New(io.Discard, "", 0),
	}
}

func (s *Store) CreateTask(ctx context.Context, input model.TaskInput) (model.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return model.Task{}, err
	}
	if err := validateDifficulty(input.Difficulty); err != nil {
		return model.Task{}, err
	}

	now := s.Now()
	due, err := parseDeadline(input.Deadline, now)
	if err != nil {
		return model.Task{}, err
	}

	row := taskRow{
		ID:          newTaskID(title, now),
		Title:       title,
		Description: nullString(input.Description),
		Difficulty:  nullInt(input.Difficulty),
		Deadline:    due,
		CreatedAt:   now.Unix(),
	}

	var created model.Task
	err = s.inTx(ctx, func(q *Queries) error {
		if strings.TrimSpace(input.Parent) != "" {
			parentID, err := resolveID(ctx, q, input.Parent, true)
			if err != nil {
				return err
			}
			row.ParentID = sql.NullString{String: parentID, Valid: true}
		}

		if err := q.InsertTask(ctx, row); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		if err := setTaskTags(ctx, q, row.ID, input.Tags); err != nil {
			return err
		}

		task, err := loadTask(ctx, q, row.ID)
		created = task
		return err
	})
	if err != nil {
		return model.Task{}, err
	}
	return created, nil
}

// UpdateTask applies patch to the task identified by prefix. Fields left nil
// in the patch keep their stored values; supplied tags replace the whole set.
func (s *Store) UpdateTask(ctx context.Context, prefix string, patch model.TaskPatch) (model.Task, error) {
	var title string
	if patch.Title != nil {
		t, err := validateTitle(*patch.Title)
		if err != nil {
			return model.Task{}, err
		}
		title = t
	}
	if err := validateDifficulty(patch.Difficulty); err != nil {
		return model.Task{}, err
	}

	var due sql.NullString
	if patch.Deadline != nil {
		d, err := parseDeadline(*patch.Deadline, s.Now())
		if err != nil {
			return model.Task{}, err
		}
		due = d
	}

	var updated model.Task
	err := s.inTx(ctx, func(q *Queries) error {
		id, err := resolveID(ctx, q, prefix, false)
		if err != nil {
			return err
		}
		row, err := q.GetTask(ctx, id)
		if err != nil {
			return fmt.Errorf("get task %s: %w", model.ShortID(id), err)
		}

		if patch.Title != nil {
			row.Title = title
		}
		if patch.Description != nil {
			row.Description = nullString(*patch.Description)
		}
		if patch.Difficulty != nil {
			row.Difficulty = nullInt(patch.Difficulty)
		}
		if patch.Deadline != nil {
			row.Deadline = due
		}
		if patch.Parent != nil {
			parent, err := resolveParent(ctx, q, id, *patch.Parent)
			if err != nil {
				return err
			}
			row.ParentID = parent
		}

		if err := q.UpdateTask(ctx, row); err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		if patch.Tags != nil {
			if err := q.ClearTagsForTask(ctx, id); err != nil {
				return err
			}
			if err := setTaskTags(ctx, q, id, *patch.Tags); err != nil {
				return err
			}
			if err := q.PruneTags(ctx); err != nil {
				return err
			}
		}

		updated, err = loadTask(ctx, q, id)
		return err
	})
	if err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

// CompleteTask marks a task done. Completing a finished task is a no-op.
func (s *Store) CompleteTask(ctx context.Context, prefix string) (model.Task, error) {
	var completed model.Task
	err := s.inTx(ctx, func(q *Queries) error {
		id, err := resolveID(ctx, q, prefix, false)
		if err != nil {
			return err
		}
		if err := q.SetCompleted(ctx, id); err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		completed, err = loadTask(ctx, q, id)
		return err
	})
	if err != nil {
		return model.Task{}, err
	}
	return completed, nil
}

// RemoveByIDs deletes each identified task together with its subtasks.
// Identifiers that match nothing, or more than one task, are reported as
// warnings and skipped.
func (s *Store) RemoveByIDs(ctx context.Context, prefixes []string) (model.RemoveResult, error) {
	var result model.RemoveResult
	err := s.inTx(ctx, func(q *Queries) error {
		result = model.RemoveResult{}
		for _, prefix := range prefixes {
			id, err := resolveID(ctx, q, prefix, false)
			if err != nil {
				if isSkippable(err) {
					s.Log.Printf("%v", err)
					result.Warnings = append(result.Warnings, err.Error())
					continue
				}
				return err
			}

			n, err := q.DeleteTask(ctx, id)
			if err != nil {
				return fmt.Errorf("delete task %s: %w", model.ShortID(id), err)
			}
			result.Removed += int(n)
		}
		return q.PruneTags(ctx)
	})
	if err != nil {
		return model.RemoveResult{}, err
	}
	return result, nil
}

// RemoveByTags deletes every task carrying any of tags and returns how many
// tasks matched directly.
func (s *Store) RemoveByTags(ctx context.Context, tags []string) (int, error) {
	names := normalizeTags(tags)
	if len(names) == 0 {
		return 0, nil
	}

	var removed int
	err := s.inTx(ctx, func(q *Queries) error {
		n, err := q.DeleteTasksByTags(ctx, names)
		if err != nil {
			return fmt.Errorf("delete tasks by tag: %w", err)
		}
		removed = int(n)
		return q.PruneTags(ctx)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) GetTask(ctx context.Context, prefix string) (model.Task, error) {
	id, err := resolveID(ctx, s.Queries, prefix, false)
	if err != nil {
		return model.Task{}, err
	}
	return loadTask(ctx, s.Queries, id)
}

func (s *Store) ListTasks(ctx context.Context, filter model.Filter) ([]model.Task, error) {
	return s.listTasks(ctx, filter, 0)
}

// NextTask returns the first open task under the default list ordering.
func (s *Store) NextTask(ctx context.Context) (model.Task, error) {
	tasks, err := s.listTasks(ctx, model.Filter{Scope: model.ScopeIncomplete}, 1)
	if err != nil {
		return model.Task{}, err
	}
	if len(tasks) == 0 {
		return model.Task{}, model.ErrNoneAvailable
	}
	return tasks[0], nil
}

func (s *Store) ListTagNames(ctx context.Context) ([]string, error) {
	return s.Queries.ListTagNames(ctx)
}

// Clear removes every task and tag, then compacts the database file.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.inTx(ctx, func(q *Queries) error {
		return q.DeleteAll(ctx)
	}); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	if err := s.Queries.Vacuum(ctx); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func (s *Store) listTasks(ctx context.Context, filter model.Filter, limit int) ([]model.Task, error) {
	query, args, err := buildListQuery(filter, limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.Queries.ListTasks(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tags, err := s.Queries.ListTagsForTask(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		task, err := mapTask(row, tags)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}

	return result, nil
}

func (s *Store) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// resolveParent turns a parent prefix into a column value. An empty prefix
// detaches the task; a parent that is the task itself or one of its
// descendants is rejected.
func resolveParent(ctx context.Context, q *Queries, taskID, prefix string) (sql.NullString, error) {
	if strings.TrimSpace(prefix) == "" {
		return sql.NullString{}, nil
	}

	parentID, err := resolveID(ctx, q, prefix, true)
	if err != nil {
		return sql.NullString{}, err
	}
	if parentID == taskID {
		return sql.NullString{}, model.Invalid("parent", "a task cannot be its own parent")
	}
	cycle, err := q.IsAncestor(ctx, parentID, taskID)
	if err != nil {
		return sql.NullString{}, err
	}
	if cycle {
		return sql.NullString{}, model.Invalid("parent", "task %s is a subtask of %s", model.ShortID(parentID), model.ShortID(taskID))
	}
	return sql.NullString{String: parentID, Valid: true}, nil
}

func setTaskTags(ctx context.Context, q *Queries, taskID string, tagNames []string) error {
	for _, name := range normalizeTags(tagNames) {
		tagID, err := q.CreateTag(ctx, name)
		if err != nil {
			return fmt.Errorf("create tag %q: %w", name, err)
		}
		if err := q.AssignTagToTask(ctx, taskID, tagID); err != nil {
			return fmt.Errorf("assign tag %q: %w", name, err)
		}
	}
	return nil
}

func loadTask(ctx context.Context, q *Queries, id string) (model.Task, error) {
	row, err := q.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, &model.NotFoundError{Prefix: id}
		}
		return model.Task{}, err
	}

	tags, err := q.ListTagsForTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	return mapTask(row, tags)
}

func mapTask(row taskRow, tags []string) (model.Task, error) {
	result := model.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description.String,
		Completed:   row.Completed,
		CreatedAt:   time.Unix(row.CreatedAt, 0).UTC(),
		Tags:        tags,
	}
	if row.Difficulty.Valid {
		difficulty := int(row.Difficulty.Int64)
		result.Difficulty = &difficulty
	}
	if row.Deadline.Valid {
		due, err := time.Parse(deadline.Layout, row.Deadline.String)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s has malformed deadline %q: %w", model.ShortID(row.ID), row.Deadline.String, err)
		}
		result.Deadline = &due
	}
	if row.ParentID.Valid {
		parentID := row.ParentID.String
		result.ParentID = &parentID
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return result, nil
}

func isSkippable(err error) bool {
	return errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrAmbiguous) || errors.Is(err, model.ErrValidation)
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}
