// Package memory is an in-process repository.Store. It applies the same
// constraints as the PostgreSQL schema (unique emails and usernames, paired
// issue/step columns, unique step per issue checked at commit) so ordering
// bugs surface in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

type data struct {
	nextID   int64
	users    map[int64]models.User
	issues   map[int64]models.Issue
	tasks    map[int64]models.Task
	sessions map[int64]models.PomodoroSession
}

func newData() *data {
	return &data{
		users:    map[int64]models.User{},
		issues:   map[int64]models.Issue{},
		tasks:    map[int64]models.Task{},
		sessions: map[int64]models.PomodoroSession{},
	}
}

func (d *data) clone() *data {
	c := newData()
	c.nextID = d.nextID
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.issues {
		c.issues[k] = v
	}
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	return c
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

// check enforces the task position constraints.
func (d *data) check() error {
	seen := map[[2]int64]int64{}
	for _, t := range d.tasks {
		if (t.IssueID == nil) != (t.StepNumber == nil) {
			return fmt.Errorf("task %d: issue_id and step_number must be set together", t.ID)
		}
		if t.IssueID == nil {
			continue
		}
		if *t.StepNumber < 1 {
			return fmt.Errorf("task %d: step_number %d below 1", t.ID, *t.StepNumber)
		}
		key := [2]int64{*t.IssueID, int64(*t.StepNumber)}
		if other, dup := seen[key]; dup {
			return fmt.Errorf("%w: tasks %d and %d share step %d of issue %d",
				repository.ErrDuplicate, other, t.ID, key[1], key[0])
		}
		seen[key] = t.ID
	}
	return nil
}

type state struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	d      *data
	now    func() time.Time
	faults map[string]error
	writes int
}

// Store is safe for concurrent use.
type Store struct {
	st   *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

type Option func(*state)

// WithClock sets the time source for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *state) { s.now = now }
}

func New(opts ...Option) *Store {
	st := &state{d: newData(), now: time.Now, faults: map[string]error{}}
	for _, opt := range opts {
		opt(st)
	}
	return &Store{st: st}
}

// InjectError makes every later call of the named method fail with err.
// A nil err clears the fault.
func (s *Store) InjectError(method string, err error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err == nil {
		delete(s.st.faults, method)
		return
	}
	s.st.faults[method] = err
}

// Writes counts successful mutating calls, including ones later rolled back.
func (s *Store) Writes() int {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.writes
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.Lock()
	snapshot := s.st.d.clone()
	s.st.mu.Unlock()

	err := fn(&Store{st: s.st, inTx: true})
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err == nil {
		err = s.st.d.check()
	}
	if err != nil {
		s.st.d = snapshot
		return err
	}
	return nil
}

func (s *Store) read(method string, fn func(d *data) error) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.st.faults[method]; err != nil {
		return err
	}
	return fn(s.st.d)
}

// mutate applies fn. Outside a transaction constraints are checked right
// away, like a single autocommitted statement.
func (s *Store) mutate(method string, fn func(d *data) (int64, error)) (int64, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.st.faults[method]; err != nil {
		return 0, err
	}
	if s.inTx {
		n, err := fn(s.st.d)
		if err == nil {
			s.st.writes++
		}
		return n, err
	}
	snapshot := s.st.d.clone()
	n, err := fn(s.st.d)
	if err == nil {
		err = s.st.d.check()
	}
	if err != nil {
		s.st.d = snapshot
		return 0, err
	}
	s.st.writes++
	return n, nil
}

func (s *Store) now() time.Time {
	return s.st.now()
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sortByCreated[T any](items []T, created func(T) time.Time, id func(T) int64, order repository.Order) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			if order == repository.Asc {
				return ci.Before(cj)
			}
			return ci.After(cj)
		}
		if order == repository.Asc {
			return id(items[i]) < id(items[j])
		}
		return id(items[i]) > id(items[j])
	})
}

func validOrder(o repository.Order) error {
	if o != repository.Asc && o != repository.Desc {
		return fmt.Errorf("unsupported order %q", o)
	}
	return nil
}
