package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/Joseda-hg/lazytodo/internal/deadline"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", model.Invalid("title", "must not be empty")
	}
	return trimmed, nil
}

func validateDifficulty(difficulty *int) error {
	if difficulty == nil {
		return nil
	}
	if *difficulty < model.MinDifficulty || *difficulty > model.MaxDifficulty {
		return model.Invalid("difficulty", "%d is out of range, the value should be between %d and %d",
			*difficulty, model.MinDifficulty, model.MaxDifficulty)
	}
	return nil
}

// parseDeadline resolves a deadline expression against now. An empty
// expression means no deadline.
func parseDeadline(expr string, now time.Time) (sql.NullString, error) {
	if strings.TrimSpace(expr) == "" {
		return sql.NullString{}, nil
	}
	due, err := deadline.Parse(expr, now)
	if err != nil {
		return sql.NullString{}, &model.ValidationError{Field: "deadline", Err: err}
	}
	return sql.NullString{String: deadline.Format(due), Valid: true}, nil
}

// normalizeTags trims names, drops empty ones and removes duplicates while
// keeping the first spelling. Tag names are case-sensitive.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
