package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tasktracker/internal/models"
)

// Identifiers that end up in SQL text come only from these tables, never
// from caller strings.
var (
	orderKeywords = map[Order]string{
		Asc:  "ASC",
		Desc: "DESC",
	}
	sessionSortColumns = map[SessionSort]string{
		SortByDuration:   "duration_minutes",
		SortByCreateTime: "created_at",
	}
	sessionScopeColumns = map[SessionScope]string{
		ScopeUser: "user_id",
		ScopeTask: "task_id",
	}
)

func orderKeyword(o Order) (string, error) {
	kw, ok := orderKeywords[o]
	if !ok {
		return "", fmt.Errorf("unsupported order %q", o)
	}
	return kw, nil
}

const sessionColumns = "id, user_id, task_id, start_time, estimated_end_time, actual_end_time, duration_minutes, break_point, note, created_at"

func scanSession(s scanner) (models.PomodoroSession, error) {
	var ps models.PomodoroSession
	err := s.Scan(&ps.ID, &ps.UserID, &ps.TaskID, &ps.StartTime, &ps.EstimatedEndTime, &ps.ActualEndTime,
		&ps.DurationMinutes, &ps.BreakPointCount, &ps.Note, &ps.CreatedAt)
	return ps, err
}

func (p *Postgres) CreateSession(ctx context.Context, s *models.PomodoroSession) (int64, error) {
	return p.insertID(ctx, `
		INSERT INTO pomodoro_sessions
			(user_id, task_id, start_time, estimated_end_time, actual_end_time, duration_minutes, break_point, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		s.UserID, s.TaskID, s.StartTime, s.EstimatedEndTime, s.ActualEndTime, s.DurationMinutes, s.BreakPointCount, s.Note)
}

func (p *Postgres) GetSession(ctx context.Context, id int64) (*models.PomodoroSession, error) {
	ps, err := scanSession(p.q.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM pomodoro_sessions WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &ps, nil
}

func (p *Postgres) ListSessions(ctx context.Context, q SessionQuery) ([]models.SessionWithTask, error) {
	scope, ok := sessionScopeColumns[q.Scope]
	if !ok {
		return nil, fmt.Errorf("unsupported session scope %d", q.Scope)
	}
	sortCol, ok := sessionSortColumns[q.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort key %q", q.Sort)
	}
	dir, err := orderKeyword(q.Order)
	if err != nil {
		return nil, err
	}

	rows, err := p.q.QueryContext(ctx, `
		SELECT ps.id, ps.user_id, ps.task_id, ps.start_time, ps.estimated_end_time, ps.actual_end_time,
		       ps.duration_minutes, ps.break_point, ps.note, ps.created_at,
		       t.id, t.user_id, t.issue_id, t.step_number, t.title, t.description, t.completed, t.created_at, t.updated_at
		FROM pomodoro_sessions ps
		JOIN tasks t ON ps.task_id = t.id
		WHERE ps.`+scope+` = $1
		ORDER BY ps.`+sortCol+` `+dir+`, ps.id `+dir+`
		LIMIT $2 OFFSET $3`,
		q.ID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SessionWithTask{}
	for rows.Next() {
		var (
			sw      models.SessionWithTask
			issueID sql.NullInt64
			step    sql.NullInt32
		)
		ps, t := &sw.PomodoroSession, &sw.Task
		err := rows.Scan(&ps.ID, &ps.UserID, &ps.TaskID, &ps.StartTime, &ps.EstimatedEndTime, &ps.ActualEndTime,
			&ps.DurationMinutes, &ps.BreakPointCount, &ps.Note, &ps.CreatedAt,
			&t.ID, &t.UserID, &issueID, &step, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if issueID.Valid {
			t.IssueID = &issueID.Int64
		}
		if step.Valid {
			n := int(step.Int32)
			t.StepNumber = &n
		}
		out = append(out, sw)
	}
	return out, rows.Err()
}

func (p *Postgres) CountSessions(ctx context.Context, scope SessionScope, id int64) (int, error) {
	col, ok := sessionScopeColumns[scope]
	if !ok {
		return 0, fmt.Errorf("unsupported session scope %d", scope)
	}
	return p.count(ctx, "SELECT COUNT(*) FROM pomodoro_sessions WHERE "+col+" = $1", id)
}

func (p *Postgres) ListTaskSessions(ctx context.Context, taskID int64) ([]models.PomodoroSession, error) {
	rows, err := p.q.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM pomodoro_sessions WHERE task_id = $1 ORDER BY start_time DESC, id DESC", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PomodoroSession{}
	for rows.Next() {
		ps, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateSessionNote(ctx context.Context, id int64, note string) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx, "UPDATE pomodoro_sessions SET note = $1 WHERE id = $2", note, id))
}

func (p *Postgres) DeleteSession(ctx context.Context, id int64) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx, "DELETE FROM pomodoro_sessions WHERE id = $1", id))
}
