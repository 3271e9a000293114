package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository/memory"
	"tasktracker/pkg/token"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recorder struct {
	mu     sync.Mutex
	events map[int64][]models.Event
}

func (r *recorder) Publish(userID int64, ev models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[int64][]models.Event{}
	}
	r.events[userID] = append(r.events[userID], ev)
}

func (r *recorder) For(userID int64) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events[userID]...)
}

type fixture struct {
	svc    *Service
	store  *memory.Store
	events *recorder
	tokens *token.Manager
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	return newFixtureWithStore(t, memory.New(), opts...)
}

func newFixtureWithStore(t *testing.T, store *memory.Store, opts ...Option) *fixture {
	t.Helper()
	tokens := token.NewManager("test-secret", time.Hour)
	events := &recorder{}
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost), WithNotifier(events)}, opts...)
	return &fixture{
		svc:    New(store, tokens, opts...),
		store:  store,
		events: events,
		tokens: tokens,
	}
}

func (f *fixture) user(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.svc.Register(context.Background(), name+"@example.com", name, "password123")
	require.NoError(t, err)
	return id
}

func (f *fixture) task(t *testing.T, owner int64, title string) int64 {
	t.Helper()
	id, err := f.svc.CreateTask(context.Background(), owner, NewTask{Title: title})
	require.NoError(t, err)
	return id
}

func (f *fixture) issue(t *testing.T, owner int64, title string, taskIDs ...int64) int64 {
	t.Helper()
	id, err := f.svc.CreateIssue(context.Background(), owner, title, "", taskIDs)
	require.NoError(t, err)
	return id
}

// steps returns the member ids of an issue in step order, checking the
// steps are exactly 1..n.
func (f *fixture) steps(t *testing.T, issueID int64) []int64 {
	t.Helper()
	members, err := f.store.ListIssueTasks(context.Background(), issueID)
	require.NoError(t, err)
	ids := make([]int64, len(members))
	for i, m := range members {
		require.NotNil(t, m.StepNumber)
		require.Equal(t, i+1, *m.StepNumber, "task %d", m.ID)
		ids[i] = m.ID
	}
	return ids
}
