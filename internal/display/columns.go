package display

import (
	"fmt"
	"strings"
)

type Column int

const (
	ColumnID Column = iota
	ColumnTask
	ColumnDescription
	ColumnDifficulty
	ColumnDeadline
	ColumnTags
	ColumnParent
	ColumnCreated
	ColumnComplete
)

var columnHeaders = [...]string{
	ColumnID:          "ID",
	ColumnTask:        "Task",
	ColumnDescription: "Description",
	ColumnDifficulty:  "Difficulty",
	ColumnDeadline:    "Deadline",
	ColumnTags:        "Tags",
	ColumnParent:      "Parent",
	ColumnCreated:     "Created",
	ColumnComplete:    "Complete",
}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnHeaders) {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnHeaders[c]
}

// AllColumns lists every column in display order.
func AllColumns() []Column {
	columns := make([]Column, 0, len(columnHeaders))
	for c := range columnHeaders {
		columns = append(columns, Column(c))
	}
	return columns
}

// ParseColumns maps case-insensitive column names to columns, keeping the
// given order.
func ParseColumns(names []string) ([]Column, error) {
	columns := make([]Column, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		column, ok := lookupColumn(trimmed)
		if !ok {
			return nil, fmt.Errorf("unknown column %q (available: %s)", trimmed, strings.ToLower(strings.Join(columnHeaders[:], ", ")))
		}
		columns = append(columns, column)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns selected")
	}
	return columns, nil
}

func lookupColumn(name string) (Column, bool) {
	for c, header := range columnHeaders {
		if strings.EqualFold(header, name) {
			return Column(c), true
		}
	}
	return 0, false
}

const (
	ViewMinimal = "minimal"
	ViewCompact = "compact"
	ViewFull    = "full"
)

// ViewColumns returns the columns shown by a named view mode.
func ViewColumns(view string) ([]Column, error) {
	switch strings.ToLower(strings.TrimSpace(view)) {
	case ViewMinimal:
		return []Column{ColumnID, ColumnTask}, nil
	case ViewCompact, "":
		return []Column{ColumnID, ColumnTask, ColumnDifficulty, ColumnDeadline, ColumnTags, ColumnParent}, nil
	case ViewFull:
		return AllColumns(), nil
	default:
		return nil, fmt.Errorf("unknown view %q (available: %s, %s, %s)", view, ViewMinimal, ViewCompact, ViewFull)
	}
}
