package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/deadline"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

type tagCountEntry struct {
	Name  string
	Count int
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "no tags"
	}
	return strings.Join(tags, ",")
}

func formatTaskSummary(task model.Task) string {
	parts := []string{model.ShortID(task.ID), task.Title}
	if task.Deadline != nil {
		parts = append(parts, deadline.Format(*task.Deadline))
	}
	if task.Difficulty != nil {
		parts = append(parts, fmt.Sprintf("d%d", *task.Difficulty))
	}
	parts = append(parts, formatTags(task.Tags))
	return strings.Join(parts, " | ")
}

// countTags tallies how many of tasks carry each tag, most used first.
func countTags(tasks []model.Task) []tagCountEntry {
	counts := make(map[string]int)
	for _, task := range tasks {
		for _, tag := range task.Tags {
			counts[tag]++
		}
	}

	entries := make([]tagCountEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, tagCountEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count == entries[j].Count {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// buildVisibleTaskTree nests tasks under their parents while keeping the
// store ordering among siblings. Tasks whose parent is not in the slice are
// shown at the top level. Children of collapsed tasks are hidden.
func buildVisibleTaskTree(tasks []model.Task, collapsed map[string]bool) ([]model.Task, map[string]int, map[string]bool) {
	if len(tasks) == 0 {
		return nil, map[string]int{}, map[string]bool{}
	}

	existsByID := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		existsByID[task.ID] = struct{}{}
	}

	const root = ""
	childrenByParent := make(map[string][]model.Task)
	for _, task := range tasks {
		parentID := root
		if task.ParentID != nil {
			if _, ok := existsByID[*task.ParentID]; ok {
				parentID = *task.ParentID
			}
		}
		childrenByParent[parentID] = append(childrenByParent[parentID], task)
	}

	hasChildren := make(map[string]bool, len(childrenByParent))
	for parentID, children := range childrenByParent {
		if parentID != root && len(children) > 0 {
			hasChildren[parentID] = true
		}
	}

	visible := make([]model.Task, 0, len(tasks))
	depthByID := make(map[string]int, len(tasks))

	var walk func(parentID string, depth int)
	walk = func(parentID string, depth int) {
		for _, task := range childrenByParent[parentID] {
			visible = append(visible, task)
			depthByID[task.ID] = depth
			if hasChildren[task.ID] && collapsed[task.ID] {
				continue
			}
			walk(task.ID, depth+1)
		}
	}

	walk(root, 0)
	return visible, depthByID, hasChildren
}
