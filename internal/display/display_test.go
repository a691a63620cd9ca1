package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazytodo/internal/model"
)

var now = time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

func sampleTask() model.Task {
	parent := "fedcba9876543210fedcba9876543210fedcba98"
	difficulty := 3
	due := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	return model.Task{
		ID:          "0123456789abcdef0123456789abcdef01234567",
		ParentID:    &parent,
		Title:       "Pay rent",
		Description: "Transfer before Friday",
		Difficulty:  &difficulty,
		Deadline:    &due,
		Tags:        []string{"home", "money"},
		CreatedAt:   now.Add(-2 * time.Hour),
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderTable(&out, nil, AllColumns(), now))
	assert.Equal(t, "No tasks found.\n", out.String())
}

func TestRenderTableShowsSelectedColumns(t *testing.T) {
	columns, err := ViewColumns(ViewCompact)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, RenderTable(&out, []model.Task{sampleTask()}, columns, now))

	text := out.String()
	assert.Contains(t, text, "ID")
	assert.Contains(t, text, "Deadline")
	assert.Contains(t, text, "0123456")
	assert.NotContains(t, text, "0123456789")
	assert.Contains(t, text, "Pay rent")
	assert.Contains(t, text, "2026-01-08 (in 3 days)")
	assert.Contains(t, text, "home,money")
	assert.Contains(t, text, "fedcba9")
	assert.NotContains(t, text, "Description")
	assert.NotContains(t, text, "Transfer before Friday")
}

func TestCellDeadlineDistance(t *testing.T) {
	task := sampleTask()

	overdue := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	task.Deadline = &overdue
	assert.Contains(t, Cell(task, ColumnDeadline, now), "2026-01-02")
	assert.Contains(t, Cell(task, ColumnDeadline, now), "3 days ago")

	today := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	task.Deadline = &today
	assert.Contains(t, Cell(task, ColumnDeadline, now), "in 0 days")

	task.Deadline = nil
	assert.Equal(t, "", Cell(task, ColumnDeadline, now))
}

func TestCellOptionalFields(t *testing.T) {
	task := model.Task{ID: "abcdef1234", Title: "Bare", Tags: []string{}, CreatedAt: now}

	assert.Equal(t, "abcdef1", Cell(task, ColumnID, now))
	assert.Equal(t, "", Cell(task, ColumnDifficulty, now))
	assert.Equal(t, "", Cell(task, ColumnParent, now))
	assert.Equal(t, "", Cell(task, ColumnTags, now))
	assert.Equal(t, "no", Cell(task, ColumnComplete, now))
	assert.Contains(t, Cell(task, ColumnCreated, now), "now")
}

func TestParseColumns(t *testing.T) {
	columns, err := ParseColumns([]string{"task", " ID ", "Deadline"})
	require.NoError(t, err)
	assert.Equal(t, []Column{ColumnTask, ColumnID, ColumnDeadline}, columns)

	_, err = ParseColumns([]string{"priority"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority")

	_, err = ParseColumns([]string{" "})
	require.Error(t, err)
}

func TestViewColumns(t *testing.T) {
	minimal, err := ViewColumns("minimal")
	require.NoError(t, err)
	assert.Equal(t, []Column{ColumnID, ColumnTask}, minimal)

	full, err := ViewColumns("FULL")
	require.NoError(t, err)
	assert.Len(t, full, 9)

	_, err = ViewColumns("wide")
	require.Error(t, err)
}

func TestRenderTask(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderTask(&out, sampleTask(), now))

	text := out.String()
	assert.Contains(t, text, "0123456 (0123456789abcdef0123456789abcdef01234567)")
	assert.Contains(t, text, "Transfer before Friday")
	assert.Contains(t, text, "home, money")
	assert.Contains(t, text, "2026-01-08 (in 3 days)")
	assert.Contains(t, text, "2 hours ago")
}

func TestRenderTags(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderTags(&out, []string{"home", "work"}))
	assert.Equal(t, "home  work\n", out.String())

	out.Reset()
	require.NoError(t, RenderTags(&out, nil))
	assert.Equal(t, "No tags found.\n", out.String())
}

func TestChanges(t *testing.T) {
	before := sampleTask()
	after := sampleTask()
	assert.Empty(t, Changes(before, after))

	after.Title = "Pay the rent"
	after.Difficulty = nil
	after.ParentID = nil
	after.Tags = []string{"home"}

	assert.Equal(t, []string{
		"title: 'Pay rent' -> 'Pay the rent'",
		"difficulty: '3' -> 'none'",
		"parent: 'fedcba9' -> 'none'",
		"tags: 'home, money' -> 'home'",
	}, Changes(before, after))
}
