// Package service holds the application's operations. Every call takes the
// principal resolved from the bearer token and checks ownership before it
// reads or writes anything that is not already scoped to that principal.
package service

import (
	"context"
	"errors"
	"time"

	"tasktracker/internal/apperror"
	"tasktracker/internal/cache"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Event types pushed to live connections.
const (
	EventTaskCreated    = "task.created"
	EventTaskUpdated    = "task.updated"
	EventTaskDeleted    = "task.deleted"
	EventIssueCreated   = "issue.created"
	EventIssueUpdated   = "issue.updated"
	EventIssueDeleted   = "issue.deleted"
	EventSessionCreated = "session.created"
	EventSessionUpdated = "session.updated"
	EventSessionDeleted = "session.deleted"
)

type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

type SummaryCache interface {
	Get(ctx context.Context, userID int64) (*models.AnalysisSummary, error)
	Set(ctx context.Context, userID int64, s models.AnalysisSummary) error
	Invalidate(ctx context.Context, userID int64) error
}

type Notifier interface {
	Publish(userID int64, ev models.Event)
}

type NoteCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

type Service struct {
	store      repository.Store
	tokens     TokenIssuer
	cache      SummaryCache
	notifier   Notifier
	notes      NoteCipher
	loc        *time.Location
	now        func() time.Time
	bcryptCost int
}

type Option func(*Service)

func WithCache(c SummaryCache) Option { return func(s *Service) { s.cache = c } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithNoteCipher encrypts session notes at rest.
func WithNoteCipher(c NoteCipher) Option { return func(s *Service) { s.notes = c } }

// WithLocation sets the zone chart buckets are cut in.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithBcryptCost(cost int) Option { return func(s *Service) { s.bcryptCost = cost } }

func New(store repository.Store, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:      store,
		tokens:     tokens,
		loc:        time.UTC,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// changed runs after a committed mutation by userID.
func (s *Service) changed(ctx context.Context, userID int64, eventType string, id int64) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			logger.SystemLogger.Warn("Error invalidating summary cache", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.Publish(userID, models.Event{Type: eventType, ID: id})
	}
}

func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.Conflict("%s: record already exists", op)
	}
	return apperror.Internal(op, err)
}

// affected turns a zero row count into a Conflict.
func affected(op string, n int64, err error) error {
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return apperror.Conflict("%s: nothing was changed", op)
	}
	return nil
}

func getIssue(ctx context.Context, st repository.Store, id int64) (*models.Issue, error) {
	issue, err := st.GetIssue(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("issue %d not found", id)
	}
	if err != nil {
		return nil, apperror.Internal("get issue", err)
	}
	return issue, nil
}

func getTask(ctx context.Context, st repository.Store, id int64) (*models.Task, error) {
	task, err := st.GetTask(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("task %d not found", id)
	}
	if err != nil {
		return nil, apperror.Internal("get task", err)
	}
	return task, nil
}

func getSession(ctx context.Context, st repository.Store, id int64) (*models.PomodoroSession, error) {
	ps, err := st.GetSession(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("session %d not found", id)
	}
	if err != nil {
		return nil, apperror.Internal("get session", err)
	}
	return ps, nil
}

func lockIssue(ctx context.Context, tx repository.Store, id int64) error {
	err := tx.LockIssue(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("issue %d not found", id)
	}
	return apperror.Internal("lock issue", err)
}

// ownedIssue loads an issue and checks it belongs to principal.
func ownedIssue(ctx context.Context, st repository.Store, principal, id int64) (*models.Issue, error) {
	issue, err := getIssue(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(principal, issue.UserID); err != nil {
		return nil, err
	}
	return issue, nil
}

func ownedTask(ctx context.Context, st repository.Store, principal, id int64) (*models.Task, error) {
	task, err := getTask(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(principal, task.UserID); err != nil {
		return nil, err
	}
	return task, nil
}

func isMiss(err error) bool {
	return errors.Is(err, cache.ErrMiss)
}
