package model

import "time"

// ShortIDLength is the number of identifier characters shown to users.
const ShortIDLength = 7

const (
	MinDifficulty = 0
	MaxDifficulty = 10
)

type Task struct {
	ID          string
	ParentID    *string
	Title       string
	Description string
	Difficulty  *int
	Deadline    *time.Time
	Tags        []string
	CreatedAt   time.Time
	Completed   bool
}

// TaskInput carries the fields of a new task. Deadline is the raw deadline
// expression and Parent an identifier prefix; both are empty when absent.
type TaskInput struct {
	Title       string
	Description string
	Difficulty  *int
	Deadline    string
	Parent      string
	Tags        []string
}

// TaskPatch is a partial update. A nil field is left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Difficulty  *int
	Deadline    *string
	Parent      *string
	Tags        *[]string
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Difficulty == nil &&
		p.Deadline == nil && p.Parent == nil && p.Tags == nil
}

// Scope selects tasks by completion state. The zero value lists open tasks.
type Scope int

const (
	ScopeIncomplete Scope = iota
	ScopeAll
	ScopeCompleted
)

func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeCompleted:
		return "completed"
	default:
		return "incomplete"
	}
}

type Filter struct {
	Tags         []string
	ParentPrefix string
	Scope        Scope
}

type RemoveResult struct {
	Removed  int
	Warnings []string
}

// ShortID truncates an identifier for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}
