package repository

import (
	"context"
	"database/sql"

	"tasktracker/internal/models"
)

const issueColumns = "id, user_id, title, description, created_at"

func scanIssue(s scanner) (models.Issue, error) {
	var i models.Issue
	err := s.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &i.CreatedAt)
	return i, err
}

func collectIssues(rows *sql.Rows, err error) ([]models.Issue, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := []models.Issue{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func (p *Postgres) CreateIssue(ctx context.Context, userID int64, title, description string) (int64, error) {
	return p.insertID(ctx,
		"INSERT INTO issues (user_id, title, description) VALUES ($1, $2, $3) RETURNING id",
		userID, title, description)
}

func (p *Postgres) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	i, err := scanIssue(p.q.QueryRowContext(ctx, "SELECT "+issueColumns+" FROM issues WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &i, nil
}

func (p *Postgres) LockIssue(ctx context.Context, id int64) error {
	var locked int64
	err := p.q.QueryRowContext(ctx, "SELECT id FROM issues WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	return notFound(err)
}

func (p *Postgres) ListIssues(ctx context.Context, userID int64, order Order, limit, offset int) ([]models.Issue, error) {
	dir, err := orderKeyword(order)
	if err != nil {
		return nil, err
	}
	return collectIssues(p.q.QueryContext(ctx,
		"SELECT "+issueColumns+" FROM issues WHERE user_id = $1 ORDER BY created_at "+dir+", id "+dir+" LIMIT $2 OFFSET $3",
		userID, limit, offset))
}

func (p *Postgres) CountIssues(ctx context.Context, userID int64) (int, error) {
	return p.count(ctx, "SELECT COUNT(*) FROM issues WHERE user_id = $1", userID)
}

func (p *Postgres) ListIssuesWithIncompleteTasks(ctx context.Context, userID int64) ([]models.Issue, error) {
	return collectIssues(p.q.QueryContext(ctx, `
		SELECT `+issueColumns+`
		FROM issues i
		WHERE i.user_id = $1
		  AND EXISTS (SELECT 1 FROM tasks t WHERE t.issue_id = i.id AND NOT t.completed)
		ORDER BY i.created_at DESC, i.id DESC`, userID))
}

func (p *Postgres) UpdateIssue(ctx context.Context, id int64, patch models.IssuePatch) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx, `
		UPDATE issues
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description)
		WHERE id = $3`,
		patch.Title, patch.Description, id))
}

func (p *Postgres) DeleteIssue(ctx context.Context, id int64) (int64, error) {
	return rowsAffected(p.q.ExecContext(ctx, "DELETE FROM issues WHERE id = $1", id))
}
