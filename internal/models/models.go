package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Issue struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task belongs to at most one issue. IssueID and StepNumber are either both
// set or both nil.
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	IssueID     *int64    `json:"issue_id"`
	StepNumber  *int      `json:"step_number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InIssue reports whether the task is a member of an issue.
func (t Task) InIssue() bool { return t.IssueID != nil }

// TaskPatch holds the editable task fields; nil means unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

type IssuePatch struct {
	Title       *string
	Description *string
}

func (p IssuePatch) Empty() bool {
	return p.Title == nil && p.Description == nil
}

type PomodoroSession struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	TaskID           int64     `json:"task_id"`
	StartTime        time.Time `json:"start_time"`
	EstimatedEndTime time.Time `json:"estimated_end_time"`
	ActualEndTime    time.Time `json:"actual_end_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	BreakPointCount  int       `json:"break_point_count"`
	Note             string    `json:"note"`
	CreatedAt        time.Time `json:"created_at"`
}

// SessionWithTask is a session row joined with the task it was recorded for.
type SessionWithTask struct {
	PomodoroSession
	Task Task `json:"task"`
}

type TaskDetail struct {
	Task     Task              `json:"task"`
	Issue    *Issue            `json:"issue"`
	Sessions []PomodoroSession `json:"sessions"`
}

type IssueDetail struct {
	Issue Issue  `json:"issue"`
	Tasks []Task `json:"tasks"`
}

type SessionDetail struct {
	Session PomodoroSession `json:"session"`
	Task    Task            `json:"task"`
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// Event is pushed to a user's live connections after a mutation.
type Event struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}
