package memory

import (
	"context"
	"fmt"
	"sort"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

func (s *Store) CreateSession(ctx context.Context, ps *models.PomodoroSession) (int64, error) {
	return s.mutate("CreateSession", func(d *data) (int64, error) {
		if _, ok := d.tasks[ps.TaskID]; !ok {
			return 0, errForeignKey
		}
		id := d.id()
		row := *ps
		row.ID, row.CreatedAt = id, s.now()
		d.sessions[id] = row
		return id, nil
	})
}

func (s *Store) GetSession(ctx context.Context, id int64) (*models.PomodoroSession, error) {
	var out *models.PomodoroSession
	err := s.read("GetSession", func(d *data) error {
		ps, ok := d.sessions[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &ps
		return nil
	})
	return out, err
}

func sessionOwner(q repository.SessionQuery) (func(models.PomodoroSession) bool, error) {
	switch q.Scope {
	case repository.ScopeUser:
		return func(ps models.PomodoroSession) bool { return ps.UserID == q.ID }, nil
	case repository.ScopeTask:
		return func(ps models.PomodoroSession) bool { return ps.TaskID == q.ID }, nil
	}
	return nil, fmt.Errorf("unsupported session scope %d", q.Scope)
}

func (s *Store) ListSessions(ctx context.Context, q repository.SessionQuery) ([]models.SessionWithTask, error) {
	match, err := sessionOwner(q)
	if err != nil {
		return nil, err
	}
	if err := validOrder(q.Order); err != nil {
		return nil, err
	}
	var less func(a, b models.PomodoroSession) int
	switch q.Sort {
	case repository.SortByDuration:
		less = func(a, b models.PomodoroSession) int { return a.DurationMinutes - b.DurationMinutes }
	case repository.SortByCreateTime:
		less = func(a, b models.PomodoroSession) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return nil, fmt.Errorf("unsupported sort key %q", q.Sort)
	}

	var out []models.SessionWithTask
	err = s.read("ListSessions", func(d *data) error {
		out = []models.SessionWithTask{}
		for _, ps := range d.sessions {
			if !match(ps) {
				continue
			}
			t, ok := d.tasks[ps.TaskID]
			if !ok {
				continue
			}
			out = append(out, models.SessionWithTask{PomodoroSession: ps, Task: detach(t)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		c := less(out[i].PomodoroSession, out[j].PomodoroSession)
		if c == 0 {
			c = int(out[i].ID - out[j].ID)
		}
		if q.Order == repository.Asc {
			return c < 0
		}
		return c > 0
	})
	return page(out, q.Limit, q.Offset), nil
}

func (s *Store) CountSessions(ctx context.Context, scope repository.SessionScope, id int64) (int, error) {
	match, err := sessionOwner(repository.SessionQuery{Scope: scope, ID: id})
	if err != nil {
		return 0, err
	}
	var n int
	err = s.read("CountSessions", func(d *data) error {
		for _, ps := range d.sessions {
			if match(ps) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) ListTaskSessions(ctx context.Context, taskID int64) ([]models.PomodoroSession, error) {
	out := []models.PomodoroSession{}
	err := s.read("ListTaskSessions", func(d *data) error {
		for _, ps := range d.sessions {
			if ps.TaskID == taskID {
				out = append(out, ps)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateSessionNote(ctx context.Context, id int64, note string) (int64, error) {
	return s.mutate("UpdateSessionNote", func(d *data) (int64, error) {
		ps, ok := d.sessions[id]
		if !ok {
			return 0, nil
		}
		ps.Note = note
		d.sessions[id] = ps
		return 1, nil
	})
}

func (s *Store) DeleteSession(ctx context.Context, id int64) (int64, error) {
	return s.mutate("DeleteSession", func(d *data) (int64, error) {
		if _, ok := d.sessions[id]; !ok {
			return 0, nil
		}
		delete(d.sessions, id)
		return 1, nil
	})
}
