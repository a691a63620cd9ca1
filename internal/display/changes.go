package display

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/deadline"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

// Changes lists the fields that differ between two versions of a task.
func Changes(before, after model.Task) []string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if formatDifficulty(before.Difficulty) != formatDifficulty(after.Difficulty) {
		changes = append(changes, formatChange("difficulty", formatDifficulty(before.Difficulty), formatDifficulty(after.Difficulty)))
	}
	if formatDate(before) != formatDate(after) {
		changes = append(changes, formatChange("deadline", formatDate(before), formatDate(after)))
	}
	if formatParent(before.ParentID) != formatParent(after.ParentID) {
		changes = append(changes, formatChange("parent", formatParent(before.ParentID), formatParent(after.ParentID)))
	}
	beforeTags := strings.Join(before.Tags, ", ")
	afterTags := strings.Join(after.Tags, ", ")
	if beforeTags != afterTags {
		changes = append(changes, formatChange("tags", beforeTags, afterTags))
	}
	return changes
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, noneIfBlank(before), noneIfBlank(after))
}

func noneIfBlank(value string) string {
	if strings.TrimSpace(value) == "" {
		return "none"
	}
	return value
}

func formatDate(task model.Task) string {
	if task.Deadline == nil {
		return ""
	}
	return deadline.Format(*task.Deadline)
}

func formatParent(id *string) string {
	if id == nil {
		return ""
	}
	return model.ShortID(*id)
}
