package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/series"
)

var (
	// ErrNotFound is returned when a lookup by id or key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case Asc, Desc:
		return Order(s), nil
	}
	return "", fmt.Errorf("invalid order %q", s)
}

// SessionSort is a sortable session attribute.
type SessionSort string

const (
	SortByDuration   SessionSort = "duration"
	SortByCreateTime SessionSort = "create_time"
)

func ParseSessionSort(s string) (SessionSort, error) {
	switch SessionSort(s) {
	case SortByDuration, SortByCreateTime:
		return SessionSort(s), nil
	}
	return "", fmt.Errorf("invalid sort key %q", s)
}

// SessionScope selects whose sessions a listing returns.
type SessionScope int

const (
	ScopeUser SessionScope = iota
	ScopeTask
)

type SessionQuery struct {
	Scope  SessionScope
	ID     int64
	Sort   SessionSort
	Order  Order
	Limit  int
	Offset int
}

type UserRepository interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (int64, error)
}

type IssueRepository interface {
	CreateIssue(ctx context.Context, userID int64, title, description string) (int64, error)
	GetIssue(ctx context.Context, id int64) (*models.Issue, error)
	// LockIssue serialises ordering changes on one issue until the
	// surrounding transaction ends.
	LockIssue(ctx context.Context, id int64) error
	ListIssues(ctx context.Context, userID int64, order Order, limit, offset int) ([]models.Issue, error)
	CountIssues(ctx context.Context, userID int64) (int, error)
	ListIssuesWithIncompleteTasks(ctx context.Context, userID int64) ([]models.Issue, error)
	UpdateIssue(ctx context.Context, id int64, patch models.IssuePatch) (int64, error)
	DeleteIssue(ctx context.Context, id int64) (int64, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) (int64, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64, order Order, limit, offset int) ([]models.Task, error)
	CountTasks(ctx context.Context, userID int64) (int, error)
	ListUnassignedTasks(ctx context.Context, userID int64) ([]models.Task, error)
	ListIncompleteTasks(ctx context.Context, userID int64) ([]models.Task, error)
	// ListIssueTasks returns the members of an issue by ascending step number.
	ListIssueTasks(ctx context.Context, issueID int64) ([]models.Task, error)
	ListIncompleteIssueTasks(ctx context.Context, issueID int64) ([]models.Task, error)
	ListTasksWithSessions(ctx context.Context, userID int64) ([]models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (int64, error)
	// SetPosition sets issue and step together; both nil detaches.
	SetPosition(ctx context.Context, taskID int64, issueID *int64, step *int) (int64, error)
	// DetachAll clears issue and step of every member of the issue.
	DetachAll(ctx context.Context, issueID int64) (int64, error)
	DeleteTask(ctx context.Context, id int64) (int64, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, s *models.PomodoroSession) (int64, error)
	GetSession(ctx context.Context, id int64) (*models.PomodoroSession, error)
	ListSessions(ctx context.Context, q SessionQuery) ([]models.SessionWithTask, error)
	CountSessions(ctx context.Context, scope SessionScope, id int64) (int, error)
	ListTaskSessions(ctx context.Context, taskID int64) ([]models.PomodoroSession, error)
	UpdateSessionNote(ctx context.Context, id int64, note string) (int64, error)
	DeleteSession(ctx context.Context, id int64) (int64, error)
}

// AnalyticsRepository provides the aggregate queries behind the charts and
// the analysis summary.
type AnalyticsRepository interface {
	PomodoroBuckets(ctx context.Context, userID int64, from, to time.Time, g series.Granularity) ([]models.PomodoroPoint, error)
	TaskBuckets(ctx context.Context, userID int64, from, to time.Time, g series.Granularity) ([]models.TaskPoint, error)

	CountFullyCompletedIssues(ctx context.Context, userID int64) (int, error)
	CountIncompleteIssues(ctx context.Context, userID int64) (int, error)
	CountIssuesWithoutTasks(ctx context.Context, userID int64) (int, error)
	CountTasksByCompletion(ctx context.Context, userID int64, completed bool) (int, error)
	CountTasksWithSessions(ctx context.Context, userID int64) (int, error)
	CountSessionsWithDuration(ctx context.Context, userID int64, minutes int) (int, error)
	CountSessionsExcludingDurations(ctx context.Context, userID int64, minutes []int) (int, error)
}

// Store is the full tabular store. WithTx runs fn against a transactional
// view; fn's error rolls everything back.
type Store interface {
	UserRepository
	IssueRepository
	TaskRepository
	SessionRepository
	AnalyticsRepository

	WithTx(ctx context.Context, fn func(tx Store) error) error
}
