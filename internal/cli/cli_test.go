package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/lazytodo/internal/config"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

type testEnv struct {
	app        *app
	dir        string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	a := newApp()
	a.now = func() time.Time { return time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC) }
	a.stdin = strings.NewReader("")
	a.isTerminal = func() bool { return false }
	return &testEnv{app: a, dir: dir, configPath: filepath.Join(dir, "config.yaml")}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand(e.app)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", e.configPath, "-p", e.dir}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.run(t, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return stdout
}

func (e *testEnv) add(t *testing.T, args ...string) string {
	t.Helper()
	out := e.mustRun(t, append([]string{"add"}, args...)...)
	require.True(t, strings.HasPrefix(out, "Added task with ID "), out)
	id := strings.TrimSpace(strings.TrimPrefix(out, "Added task with ID "))
	require.Len(t, id, model.ShortIDLength)
	return id
}

func TestAddThenShow(t *testing.T) {
	env := newTestEnv(t)
	id := env.add(t, "Write", "report", "-d", "quarterly numbers", "--diff", "3", "-l", "tomorrow", "-t", "work,home")

	out := env.mustRun(t, "show", id)
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "quarterly numbers")
	assert.Contains(t, out, "2026-01-06 (in 1 days)")
	assert.Contains(t, out, "work, home")

	_, err := os.Stat(filepath.Join(env.dir, dbFileName))
	require.NoError(t, err)
	_, err = os.Stat(env.configPath)
	require.NoError(t, err)
}

func TestFirstRunConfigIgnoresEnvironment(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("TODO_VIEW", "full")
	t.Setenv("TODO_DB_PATH", filepath.Join(env.dir, "elsewhere.db"))

	env.add(t, "Seed config")

	data, err := os.ReadFile(env.configPath)
	require.NoError(t, err)
	var saved config.Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "compact", saved.View)
	assert.Equal(t, filepath.Join(env.dir, dbFileName), saved.DBPath)

	assert.Equal(t, "full", env.app.cfg.View)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "add", "Too hard", "--diff", "11")
	require.ErrorIs(t, err, model.ErrValidation)

	_, _, err = env.run(t, "add", "Bad date", "-l", "someday")
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "someday")

	_, _, err = env.run(t, "add", "Orphan", "--pid", "ffff")
	require.ErrorIs(t, err, model.ErrParentNotFound)

	assert.Contains(t, env.mustRun(t, "list"), "No tasks found.")
}

func TestUpdateChangesOnlyPassedFlags(t *testing.T) {
	env := newTestEnv(t)
	id := env.add(t, "Plan trip", "-d", "book hotel", "-t", "travel")

	out := env.mustRun(t, "update", id, "--diff", "5")
	assert.Contains(t, out, "Updated task with ID "+id)
	assert.Contains(t, out, "difficulty: 'none' -> '5'")
	assert.NotContains(t, out, "description")

	show := env.mustRun(t, "show", id)
	assert.Contains(t, show, "book hotel")
	assert.Contains(t, show, "travel")

	out = env.mustRun(t, "update", id, "-t", "")
	assert.Contains(t, out, "tags: 'travel' -> 'none'")

	_, _, err := env.run(t, "update", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	_, _, err = env.run(t, "update", id, "--task", "  ")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestCompleteAndListScopes(t *testing.T) {
	env := newTestEnv(t)
	first := env.add(t, "Open task")
	second := env.add(t, "Finished task")

	out := env.mustRun(t, "done", second)
	assert.Equal(t, "Task with ID "+second+" marked as complete\n", out)

	list := env.mustRun(t, "list")
	assert.Contains(t, list, first)
	assert.NotContains(t, list, "Finished task")

	all := env.mustRun(t, "ls", "--all")
	assert.Contains(t, all, "Open task")
	assert.Contains(t, all, "Finished task")

	completed := env.mustRun(t, "list", "--completed")
	assert.Contains(t, completed, "Finished task")
	assert.NotContains(t, completed, "Open task")

	_, _, err := env.run(t, "list", "--all", "--completed")
	require.Error(t, err)
}

func TestListViewsAndColumns(t *testing.T) {
	env := newTestEnv(t)
	env.add(t, "Stretch", "-d", "five minutes", "-l", "today")

	minimal := env.mustRun(t, "list", "-v", "minimal")
	assert.Contains(t, minimal, "Stretch")
	assert.NotContains(t, minimal, "Deadline")

	full := env.mustRun(t, "list", "-v", "full")
	assert.Contains(t, full, "five minutes")
	assert.Contains(t, full, "Created")

	custom := env.mustRun(t, "list", "-c", "task,deadline")
	assert.Contains(t, custom, "2026-01-05")
	assert.NotContains(t, custom, "Tags")

	_, _, err := env.run(t, "list", "-v", "wide")
	require.Error(t, err)

	_, _, err = env.run(t, "list", "-t", "a", "--pid", "b")
	require.Error(t, err)
}

func TestListFiltersByTagAndParent(t *testing.T) {
	env := newTestEnv(t)
	parent := env.add(t, "Move house", "-t", "home")
	env.add(t, "Pack boxes", "--pid", parent)
	env.add(t, "Quarterly report", "-t", "work")

	byTag := env.mustRun(t, "list", "-t", "work")
	assert.Contains(t, byTag, "Quarterly report")
	assert.NotContains(t, byTag, "Move house")

	byParent := env.mustRun(t, "list", "--pid", parent)
	assert.Contains(t, byParent, "Pack boxes")
	assert.NotContains(t, byParent, "Quarterly report")
}

func TestNextPicksEarliestDeadline(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "next")
	require.ErrorIs(t, err, model.ErrNoneAvailable)

	env.add(t, "Someday", "--diff", "10")
	env.add(t, "Later", "-l", "friday")
	env.add(t, "Now", "-l", "today", "--diff", "1")

	out := env.mustRun(t, "next")
	assert.Contains(t, out, "Now")
	assert.NotContains(t, out, "Later")
}

func TestRemoveReportsUnknownIDs(t *testing.T) {
	env := newTestEnv(t)
	id := env.add(t, "Disposable")

	stdout, stderr, err := env.run(t, "rm", id, "zzzz")
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 task(s)\n", stdout)
	assert.Contains(t, stderr, "warning: ")
	assert.Contains(t, stderr, "zzzz")

	_, _, err = env.run(t, "remove")
	require.Error(t, err)
}

func TestRemoveByTagsAndListTags(t *testing.T) {
	env := newTestEnv(t)
	env.add(t, "Groceries", "-t", "home")
	env.add(t, "Standup", "-t", "work,daily")
	env.add(t, "Review", "-t", "work")

	assert.Equal(t, "daily  home  work\n", env.mustRun(t, "tags"))

	assert.Equal(t, "Removed 2 task(s)\n", env.mustRun(t, "remove", "-t", "work"))
	assert.Equal(t, "home\n", env.mustRun(t, "tags"))
}

func TestClearRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.add(t, "Keep me", "-t", "x")

	_, _, err := env.run(t, "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	env.app.isTerminal = func() bool { return true }
	env.app.stdin = strings.NewReader("n\n")
	out := env.mustRun(t, "clear")
	assert.Contains(t, out, "Aborted.")
	assert.Contains(t, env.mustRun(t, "list"), "Keep me")

	env.app.stdin = strings.NewReader("yes\n")
	out = env.mustRun(t, "clear")
	assert.Contains(t, out, "Cleared all tasks.")

	assert.Contains(t, env.mustRun(t, "list", "--all"), "No tasks found.")
	assert.Equal(t, "No tags found.\n", env.mustRun(t, "tags"))
}

func TestClearForce(t *testing.T) {
	env := newTestEnv(t)
	env.add(t, "Gone soon")

	out := env.mustRun(t, "clear", "-f")
	assert.Contains(t, out, "Cleared all tasks.")
	assert.Contains(t, env.mustRun(t, "list"), "No tasks found.")
}
