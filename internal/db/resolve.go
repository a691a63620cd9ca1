package db

import (
	"context"
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/model"
)

// ResolveID maps a full or partial identifier to the single task it denotes.
func (s *Store) ResolveID(ctx context.Context, prefix string) (string, error) {
	return resolveID(ctx, s.Queries, prefix, false)
}

// resolveID enumerates every identifier starting with prefix. No match is a
// NotFoundError, several matches an AmbiguousError listing them, unless one
// of them is exactly prefix.
func resolveID(ctx context.Context, q *Queries, prefix string, parent bool) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		field := "id"
		if parent {
			field = "parent id"
		}
		return "", model.Invalid(field, "must not be empty")
	}

	ids, err := q.ListTaskIDsByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", &model.NotFoundError{Prefix: prefix, Parent: parent}
	case 1:
		return ids[0], nil
	}

	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
	}
	return "", &model.AmbiguousError{Prefix: prefix, Candidates: ids}
}
