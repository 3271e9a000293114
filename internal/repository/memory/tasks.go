package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

var errForeignKey = errors.New("foreign key violation")

// detach copies the pointer fields so stored rows never alias caller memory.
func detach(t models.Task) models.Task {
	if t.IssueID != nil {
		id := *t.IssueID
		t.IssueID = &id
	}
	if t.StepNumber != nil {
		n := *t.StepNumber
		t.StepNumber = &n
	}
	return t
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) (int64, error) {
	return s.mutate("CreateTask", func(d *data) (int64, error) {
		if task.IssueID != nil {
			if _, ok := d.issues[*task.IssueID]; !ok {
				return 0, errForeignKey
			}
		}
		id := d.id()
		now := s.now()
		t := detach(*task)
		t.ID, t.CreatedAt, t.UpdatedAt = id, now, now
		d.tasks[id] = t
		return id, nil
	})
}

func (s *Store) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var out *models.Task
	err := s.read("GetTask", func(d *data) error {
		t, ok := d.tasks[id]
		if !ok {
			return repository.ErrNotFound
		}
		t = detach(t)
		out = &t
		return nil
	})
	return out, err
}

func (s *Store) ListTasks(ctx context.Context, userID int64, order repository.Order, limit, offset int) ([]models.Task, error) {
	if err := validOrder(order); err != nil {
		return nil, err
	}
	var out []models.Task
	err := s.read("ListTasks", func(d *data) error {
		out = filterTasks(d, order, func(t models.Task) bool { return t.UserID == userID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(out, limit, offset), nil
}

func (s *Store) CountTasks(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.read("CountTasks", func(d *data) error {
		for _, t := range d.tasks {
			if t.UserID == userID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) ListUnassignedTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	var out []models.Task
	err := s.read("ListUnassignedTasks", func(d *data) error {
		out = filterTasks(d, repository.Desc, func(t models.Task) bool {
			return t.UserID == userID && t.IssueID == nil
		})
		return nil
	})
	return out, err
}

func (s *Store) ListIncompleteTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	var out []models.Task
	err := s.read("ListIncompleteTasks", func(d *data) error {
		out = filterTasks(d, repository.Desc, func(t models.Task) bool {
			return t.UserID == userID && !t.Completed
		})
		return nil
	})
	return out, err
}

func (s *Store) ListIssueTasks(ctx context.Context, issueID int64) ([]models.Task, error) {
	var out []models.Task
	err := s.read("ListIssueTasks", func(d *data) error {
		out = issueMembers(d, issueID, false)
		return nil
	})
	return out, err
}

func (s *Store) ListIncompleteIssueTasks(ctx context.Context, issueID int64) ([]models.Task, error) {
	var out []models.Task
	err := s.read("ListIncompleteIssueTasks", func(d *data) error {
		out = issueMembers(d, issueID, true)
		return nil
	})
	return out, err
}

func (s *Store) ListTasksWithSessions(ctx context.Context, userID int64) ([]models.Task, error) {
	var out []models.Task
	err := s.read("ListTasksWithSessions", func(d *data) error {
		tracked := map[int64]bool{}
		for _, ps := range d.sessions {
			tracked[ps.TaskID] = true
		}
		out = filterTasks(d, repository.Desc, func(t models.Task) bool {
			return t.UserID == userID && tracked[t.ID]
		})
		return nil
	})
	return out, err
}

func (s *Store) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (int64, error) {
	return s.mutate("UpdateTask", func(d *data) (int64, error) {
		t, ok := d.tasks[id]
		if !ok {
			return 0, nil
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		t.UpdatedAt = s.now()
		d.tasks[id] = t
		return 1, nil
	})
}

func (s *Store) SetPosition(ctx context.Context, taskID int64, issueID *int64, step *int) (int64, error) {
	return s.mutate("SetPosition", func(d *data) (int64, error) {
		t, ok := d.tasks[taskID]
		if !ok {
			return 0, nil
		}
		if issueID != nil {
			if _, ok := d.issues[*issueID]; !ok {
				return 0, errForeignKey
			}
		}
		t.IssueID, t.StepNumber = issueID, step
		t = detach(t)
		t.UpdatedAt = s.now()
		d.tasks[taskID] = t
		return 1, nil
	})
}

func (s *Store) DetachAll(ctx context.Context, issueID int64) (int64, error) {
	return s.mutate("DetachAll", func(d *data) (int64, error) {
		var n int64
		for id, t := range d.tasks {
			if t.IssueID != nil && *t.IssueID == issueID {
				t.IssueID, t.StepNumber = nil, nil
				t.UpdatedAt = s.now()
				d.tasks[id] = t
				n++
			}
		}
		return n, nil
	})
}

// DeleteTask cascades to the task's sessions.
func (s *Store) DeleteTask(ctx context.Context, id int64) (int64, error) {
	return s.mutate("DeleteTask", func(d *data) (int64, error) {
		if _, ok := d.tasks[id]; !ok {
			return 0, nil
		}
		delete(d.tasks, id)
		for sid, ps := range d.sessions {
			if ps.TaskID == id {
				delete(d.sessions, sid)
			}
		}
		return 1, nil
	})
}

func filterTasks(d *data, order repository.Order, keep func(models.Task) bool) []models.Task {
	out := []models.Task{}
	for _, t := range d.tasks {
		if keep(t) {
			out = append(out, detach(t))
		}
	}
	sortByCreated(out,
		func(t models.Task) time.Time { return t.CreatedAt },
		func(t models.Task) int64 { return t.ID },
		order)
	return out
}

func issueMembers(d *data, issueID int64, incompleteOnly bool) []models.Task {
	out := []models.Task{}
	for _, t := range d.tasks {
		if t.IssueID == nil || *t.IssueID != issueID {
			continue
		}
		if incompleteOnly && t.Completed {
			continue
		}
		out = append(out, detach(t))
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].StepNumber < *out[j].StepNumber })
	return out
}
