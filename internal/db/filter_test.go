package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazytodo/internal/model"
)

func TestBuildListQuery(t *testing.T) {
	t.Run("default lists open tasks", func(t *testing.T) {
		query, args, err := buildListQuery(model.Filter{}, 0)
		require.NoError(t, err)
		assert.Contains(t, query, "WHERE t.completed = 0")
		assert.Contains(t, query, "ORDER BY "+listOrdering)
		assert.NotContains(t, query, "LIMIT")
		assert.Empty(t, args)
	})

	t.Run("all drops the completion filter", func(t *testing.T) {
		query, _, err := buildListQuery(model.Filter{Scope: model.ScopeAll}, 0)
		require.NoError(t, err)
		assert.NotContains(t, query, "WHERE")
	})

	t.Run("completed only", func(t *testing.T) {
		query, _, err := buildListQuery(model.Filter{Scope: model.ScopeCompleted}, 0)
		require.NoError(t, err)
		assert.Contains(t, query, "t.completed = 1")
	})

	t.Run("tags become one placeholder each", func(t *testing.T) {
		query, args, err := buildListQuery(model.Filter{Tags: []string{"work", "urgent", "work"}}, 1)
		require.NoError(t, err)
		assert.Contains(t, query, "g.name IN (?, ?)")
		assert.Contains(t, query, "LIMIT ?")
		assert.Equal(t, []interface{}{"work", "urgent", 1}, args)
	})

	t.Run("parent prefix is compared literally", func(t *testing.T) {
		query, args, err := buildListQuery(model.Filter{ParentPrefix: "ab_%"}, 0)
		require.NoError(t, err)
		assert.NotContains(t, query, "LIKE")
		assert.Equal(t, []interface{}{"ab_%", "ab_%"}, args)
	})

	t.Run("tags and parent conflict", func(t *testing.T) {
		_, _, err := buildListQuery(model.Filter{Tags: []string{"a"}, ParentPrefix: "abc"}, 0)
		require.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestListTasksDefaultOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	none, err := store.CreateTask(ctx, model.TaskInput{Title: "No deadline", Difficulty: intPtr(1)})
	require.NoError(t, err)
	later, err := store.CreateTask(ctx, model.TaskInput{Title: "Tomorrow", Difficulty: intPtr(9), Deadline: "tomorrow"})
	require.NoError(t, err)
	today, err := store.CreateTask(ctx, model.TaskInput{Title: "Today", Difficulty: intPtr(5), Deadline: "today"})
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{today.ID, later.ID, none.ID}, ids(tasks))
}

func TestListTasksBreaksDeadlineTiesByDifficulty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	unrated, err := store.CreateTask(ctx, model.TaskInput{Title: "Unrated", Deadline: "friday"})
	require.NoError(t, err)
	easy, err := store.CreateTask(ctx, model.TaskInput{Title: "Easy", Difficulty: intPtr(2), Deadline: "friday"})
	require.NoError(t, err)
	hard, err := store.CreateTask(ctx, model.TaskInput{Title: "Hard", Difficulty: intPtr(7), Deadline: "friday"})
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{hard.ID, easy.ID, unrated.ID}, ids(tasks))
}

func TestListTasksByTagsMatchesAnyTagOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	both, err := store.CreateTask(ctx, model.TaskInput{Title: "Both", Tags: []string{"work", "urgent"}})
	require.NoError(t, err)
	urgent, err := store.CreateTask(ctx, model.TaskInput{Title: "Urgent", Tags: []string{"urgent"}})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, model.TaskInput{Title: "Home", Tags: []string{"home"}})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, model.TaskInput{Title: "Untagged"})
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, model.Filter{Tags: []string{"work"}})
	require.NoError(t, err)
	assert.Equal(t, []string{both.ID}, ids(tasks))

	tasks, err = store.ListTasks(ctx, model.Filter{Tags: []string{"work", "urgent"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{both.ID, urgent.ID}, ids(tasks))

	tasks, err = store.ListTasks(ctx, model.Filter{Tags: []string{"Work"}})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasksByParentPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent, err := store.CreateTask(ctx, model.TaskInput{Title: "Parent"})
	require.NoError(t, err)
	child, err := store.CreateTask(ctx, model.TaskInput{Title: "Child", Parent: parent.ID})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, model.TaskInput{Title: "Unrelated"})
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, model.Filter{ParentPrefix: model.ShortID(parent.ID)})
	require.NoError(t, err)
	assert.Equal(t, []string{child.ID}, ids(tasks))
}

func TestListTasksByCompletionScope(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	open, err := store.CreateTask(ctx, model.TaskInput{Title: "Open"})
	require.NoError(t, err)
	done, err := store.CreateTask(ctx, model.TaskInput{Title: "Done"})
	require.NoError(t, err)
	_, err = store.CompleteTask(ctx, done.ID)
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, model.Filter{Scope: model.ScopeIncomplete})
	require.NoError(t, err)
	assert.Equal(t, []string{open.ID}, ids(tasks))

	tasks, err = store.ListTasks(ctx, model.Filter{Scope: model.ScopeCompleted})
	require.NoError(t, err)
	assert.Equal(t, []string{done.ID}, ids(tasks))

	tasks, err = store.ListTasks(ctx, model.Filter{Scope: model.ScopeAll})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{open.ID, done.ID}, ids(tasks))
}

func ids(tasks []model.Task) []string {
	result := make([]string, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, task.ID)
	}
	return result
}
