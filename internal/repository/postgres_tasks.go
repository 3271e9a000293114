package repository

import (
	"context"
	"database/sql"

	"tasktracker/internal/models"
)

const taskColumns = "id, user_id, issue_id, step_number, title, description, completed, created_at, updated_at"

func scanTask(s scanner) (models.Task, error) {
	var (
		t       models.Task
		issueID sql.NullInt64
		step    sql.NullInt32
	)
	err := s.Scan(&t.ID, &t.UserID, &issueID, &step, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if issueID.Valid {
		t.IssueID = &issueID.Int64
	}
	if step.Valid {
		n := int(step.Int32)
		t.StepNumber = &n
	}
	return t, nil
}

func collectTasks(rows *sql.Rows, err error) ([]models.Task, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (p *Postgres) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	return p.insertID(ctx, `
		INSERT INTO tasks (user_id, issue_id, step_number, title, description, completed)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		t.UserID, t.IssueID, t.StepNumber, t.Title, t.Description, t.Completed)
}

func (p *Postgres) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	t, err := scanTask(p.q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (p *Postgres) ListTasks(ctx context.Context, userID int64, order Order, limit, offset int) ([]models.Task, error) {
	dir, err := orderKeyword(order)
	if err != nil {
		return nil, err
	}
	return collectTasks(p.q.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at "+dir+", id "+dir+" LIMIT $2 OFFSET $3",
		userID, limit, offset))
}

func (p *Postgres) CountTasks(ctx context.Context, userID int64) (int, error) {
	return p.count(ctx, "SELECT COUNT(*) FROM tasks WHERE user_id = $1", userID)
}

func (p *Postgres) ListUnassignedTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	return collectTasks(p.q.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 AND issue_id IS NULL ORDER BY created_at DESC, id DESC",
		userID))
}

func (p *Postgres) ListIncompleteTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	return collectTasks(p.q.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 AND NOT completed ORDER BY created_at DESC, id DESC",
		userID))
}

func (p *Postgres) ListIssueTasks(ctx context.Context, issueID int64) ([]models.Task, error) {
	return collectTasks(p.q.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE issue_id = $1 ORDER BY step_number ASC",
		issueID))
}

func (p *Postgres) ListIncompleteIssueTasks(ctx context.Context, issueID int64) ([]models.Task, error) {
	return collectTasks(p.q.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE issue_id = $1 AND NOT completed ORDER BY step_number ASC",
		issueID))
}

func (p *Postgres) ListTasksWithSessions(ctx context.Context, userID int64) ([]models.Task, error) {
	return collectTasks(p.q.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.user_id = $1
		  AND EXISTS (SELECT 1 FROM pomodoro_sessions ps WHERE ps.task_id = t.id)
		ORDER BY t.created_at DESC, t.id DESC`, userID))
}

func (p *Postgres) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx, `
		UPDATE tasks
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    completed = COALESCE($3, completed),
		    updated_at = NOW()
		WHERE id = $4`,
		patch.Title, patch.Description, patch.Completed, id))
}

func (p *Postgres) SetPosition(ctx context.Context, taskID int64, issueID *int64, step *int) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx,
		"UPDATE tasks SET issue_id = $1, step_number = $2, updated_at = NOW() WHERE id = $3",
		issueID, step, taskID))
}

func (p *Postgres) DetachAll(ctx context.Context, issueID int64) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx,
		"UPDATE tasks SET issue_id = NULL, step_number = NULL, updated_at = NOW() WHERE issue_id = $1",
		issueID))
}

func (p *Postgres) DeleteTask(ctx context.Context, id int64) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id))
}
