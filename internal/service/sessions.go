package service

import (
	"context"
	"time"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

type NewSession struct {
	TaskID           int64
	StartTime        time.Time
	EstimatedEndTime time.Time
	ActualEndTime    time.Time
	DurationMinutes  int
	BreakPointCount  int
	Note             string
}

func (in NewSession) validate() error {
	switch {
	case in.StartTime.IsZero():
		return apperror.Validation("start_time is required")
	case in.EstimatedEndTime.Before(in.StartTime):
		return apperror.Validation("estimated_end_time is before start_time")
	case in.ActualEndTime.Before(in.StartTime):
		return apperror.Validation("actual_end_time is before start_time")
	case in.DurationMinutes < 0:
		return apperror.Validation("duration_minutes must not be negative")
	case in.BreakPointCount < 0:
		return apperror.Validation("break_point_count must not be negative")
	}
	return nil
}

func (s *Service) sealNote(note string) (string, error) {
	if s.notes == nil || note == "" {
		return note, nil
	}
	sealed, err := s.notes.Encrypt(note)
	if err != nil {
		return "", apperror.Internal("encrypt note", err)
	}
	return sealed, nil
}

func (s *Service) openNote(ps *models.PomodoroSession) error {
	if s.notes == nil || ps.Note == "" {
		return nil
	}
	plain, err := s.notes.Decrypt(ps.Note)
	if err != nil {
		return apperror.Internal("decrypt note", err)
	}
	ps.Note = plain
	return nil
}

// CreateSession records a session against one of the caller's tasks.
func (s *Service) CreateSession(ctx context.Context, principal int64, in NewSession) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	task, err := ownedTask(ctx, s.store, principal, in.TaskID)
	if err != nil {
		return 0, err
	}
	note, err := s.sealNote(in.Note)
	if err != nil {
		return 0, err
	}
	id, err := s.store.CreateSession(ctx, &models.PomodoroSession{
		UserID:           task.UserID,
		TaskID:           task.ID,
		StartTime:        in.StartTime,
		EstimatedEndTime: in.EstimatedEndTime,
		ActualEndTime:    in.ActualEndTime,
		DurationMinutes:  in.DurationMinutes,
		BreakPointCount:  in.BreakPointCount,
		Note:             note,
	})
	if err != nil {
		return 0, storeErr("create session", err)
	}
	s.changed(ctx, principal, EventSessionCreated, id)
	return id, nil
}

func (s *Service) ownedSession(ctx context.Context, principal, id int64) (*models.PomodoroSession, error) {
	ps, err := getSession(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(principal, ps.UserID); err != nil {
		return nil, err
	}
	return ps, nil
}

// GetSession returns the session with the task it was recorded for.
func (s *Service) GetSession(ctx context.Context, principal, sessionID int64) (*models.SessionDetail, error) {
	ps, err := s.ownedSession(ctx, principal, sessionID)
	if err != nil {
		return nil, err
	}
	task, err := getTask(ctx, s.store, ps.TaskID)
	if err != nil {
		return nil, err
	}
	if err := s.openNote(ps); err != nil {
		return nil, err
	}
	return &models.SessionDetail{Session: *ps, Task: *task}, nil
}

func (s *Service) listSessions(ctx context.Context, q repository.SessionQuery, page PageRequest) (models.Page[models.SessionWithTask], error) {
	out := models.Page[models.SessionWithTask]{Page: page.Page, PageSize: page.PageSize}
	q.Limit, q.Offset = page.Limit(), page.Offset()
	items, err := s.store.ListSessions(ctx, q)
	if err != nil {
		return out, apperror.Internal("list sessions", err)
	}
	for i := range items {
		if err := s.openNote(&items[i].PomodoroSession); err != nil {
			return out, err
		}
	}
	total, err := s.store.CountSessions(ctx, q.Scope, q.ID)
	if err != nil {
		return out, apperror.Internal("count sessions", err)
	}
	out.Items, out.Total = items, total
	return out, nil
}

// ListSessions pages through all of the caller's sessions.
func (s *Service) ListSessions(ctx context.Context, principal int64, p ListParams) (models.Page[models.SessionWithTask], error) {
	return s.listSessions(ctx, repository.SessionQuery{
		Scope: repository.ScopeUser, ID: principal, Sort: p.Sort, Order: p.Order,
	}, p.PageRequest)
}

// ListTaskSessions pages through the sessions of one of the caller's tasks.
func (s *Service) ListTaskSessions(ctx context.Context, principal, taskID int64, p ListParams) (models.Page[models.SessionWithTask], error) {
	if _, err := ownedTask(ctx, s.store, principal, taskID); err != nil {
		return models.Page[models.SessionWithTask]{}, err
	}
	return s.listSessions(ctx, repository.SessionQuery{
		Scope: repository.ScopeTask, ID: taskID, Sort: p.Sort, Order: p.Order,
	}, p.PageRequest)
}

// UpdateSessionNote replaces the note; no other session field is editable.
func (s *Service) UpdateSessionNote(ctx context.Context, principal, sessionID int64, note string) error {
	if _, err := s.ownedSession(ctx, principal, sessionID); err != nil {
		return err
	}
	sealed, err := s.sealNote(note)
	if err != nil {
		return err
	}
	n, err := s.store.UpdateSessionNote(ctx, sessionID, sealed)
	if err := affected("update session note", n, err); err != nil {
		return err
	}
	s.changed(ctx, principal, EventSessionUpdated, sessionID)
	return nil
}

func (s *Service) DeleteSession(ctx context.Context, principal, sessionID int64) error {
	if _, err := s.ownedSession(ctx, principal, sessionID); err != nil {
		return err
	}
	n, err := s.store.DeleteSession(ctx, sessionID)
	if err := affected("delete session", n, err); err != nil {
		return err
	}
	s.changed(ctx, principal, EventSessionDeleted, sessionID)
	return nil
}
