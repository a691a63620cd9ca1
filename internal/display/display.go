// Package display renders tasks for terminal output. Deadline distances are
// computed against the supplied current time on every call.
package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/lazytodo/internal/deadline"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// RenderTable writes tasks as a table restricted to columns.
func RenderTable(w io.Writer, tasks []model.Task, columns []Column, now time.Time) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}

	headers := make([]string, 0, len(columns))
	for _, column := range columns {
		headers = append(headers, column.String())
	}

	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		row := make([]string, 0, len(columns))
		for _, column := range columns {
			row = append(row, Cell(task, column, now))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Cell renders one column of task.
func Cell(task model.Task, column Column, now time.Time) string {
	switch column {
	case ColumnID:
		return model.ShortID(task.ID)
	case ColumnTask:
		return task.Title
	case ColumnDescription:
		return task.Description
	case ColumnDifficulty:
		return formatDifficulty(task.Difficulty)
	case ColumnDeadline:
		return formatDeadline(task, now)
	case ColumnTags:
		return strings.Join(task.Tags, ",")
	case ColumnParent:
		if task.ParentID == nil {
			return ""
		}
		return model.ShortID(*task.ParentID)
	case ColumnCreated:
		return humanize.RelTime(task.CreatedAt, now, "ago", "from now")
	case ColumnComplete:
		if task.Completed {
			return doneStyle.Render("yes")
		}
		return "no"
	}
	return ""
}

// RenderTask writes the detail view used by show and next.
func RenderTask(w io.Writer, task model.Task, now time.Time) error {
	parent := "-"
	if task.ParentID != nil {
		parent = model.ShortID(*task.ParentID)
	}
	tags := "-"
	if len(task.Tags) > 0 {
		tags = strings.Join(task.Tags, ", ")
	}
	due := formatDeadline(task, now)
	if due == "" {
		due = "-"
	}
	difficulty := formatDifficulty(task.Difficulty)
	if difficulty == "" {
		difficulty = "-"
	}
	complete := "no"
	if task.Completed {
		complete = doneStyle.Render("yes")
	}

	lines := [][2]string{
		{"ID", fmt.Sprintf("%s (%s)", model.ShortID(task.ID), task.ID)},
		{"Task", task.Title},
		{"Description", valueOrNone(task.Description)},
		{"Difficulty", difficulty},
		{"Deadline", due},
		{"Tags", tags},
		{"Parent", parent},
		{"Created", fmt.Sprintf("%s (%s)", task.CreatedAt.Local().Format("2006-01-02 15:04"), humanize.RelTime(task.CreatedAt, now, "ago", "from now"))},
		{"Complete", complete},
	}

	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", line[0]+":")), line[1])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderTags writes tag names on one line.
func RenderTags(w io.Writer, names []string) error {
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "No tags found.")
		return err
	}
	_, err := fmt.Fprintln(w, strings.Join(names, "  "))
	return err
}

func formatDifficulty(difficulty *int) string {
	if difficulty == nil {
		return ""
	}
	return strconv.Itoa(*difficulty)
}

// formatDeadline shows the date and its distance from now. Open tasks that
// are due today or overdue are highlighted.
func formatDeadline(task model.Task, now time.Time) string {
	if task.Deadline == nil {
		return ""
	}
	distance, due := deadline.Describe(*task.Deadline, now)
	if due && !task.Completed {
		distance = dueStyle.Render(distance)
	}
	return fmt.Sprintf("%s (%s)", deadline.Format(*task.Deadline), distance)
}

func valueOrNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
