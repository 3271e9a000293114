package repository

import (
	"context"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/series"

	"github.com/lib/pq"
)

// Buckets are formatted in the location of from, with the same pattern the
// series package fills with.

func (p *Postgres) PomodoroBuckets(ctx context.Context, userID int64, from, to time.Time, g series.Granularity) ([]models.PomodoroPoint, error) {
	rows, err := p.q.QueryContext(ctx, `
		SELECT to_char(start_time AT TIME ZONE $4, $5) AS bucket,
		       COALESCE(SUM(duration_minutes), 0)::BIGINT,
		       COALESCE(SUM(break_point), 0)::BIGINT
		FROM pomodoro_sessions
		WHERE user_id = $1 AND start_time >= $2 AND start_time < $3
		GROUP BY bucket
		ORDER BY bucket ASC`,
		userID, from, to, from.Location().String(), g.SQLFormat())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PomodoroPoint{}
	for rows.Next() {
		var pt models.PomodoroPoint
		if err := rows.Scan(&pt.Date, &pt.TotalDuration, &pt.TotalBreaks); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (p *Postgres) TaskBuckets(ctx context.Context, userID int64, from, to time.Time, g series.Granularity) ([]models.TaskPoint, error) {
	rows, err := p.q.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE $4, $5) AS bucket,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE completed),
		       COUNT(*) FILTER (WHERE NOT completed)
		FROM tasks
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY bucket
		ORDER BY bucket ASC`,
		userID, from, to, from.Location().String(), g.SQLFormat())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TaskPoint{}
	for rows.Next() {
		var pt models.TaskPoint
		if err := rows.Scan(&pt.Date, &pt.Count, &pt.Completed, &pt.Incompleted); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (p *Postgres) CountFullyCompletedIssues(ctx context.Context, userID int64) (int, error) {
	return p.count(ctx, `
		SELECT COUNT(*)
		FROM issues i
		WHERE i.user_id = $1
		  AND EXISTS (SELECT 1 FROM tasks t WHERE t.issue_id = i.id)
		  AND NOT EXISTS (SELECT 1 FROM tasks t WHERE t.issue_id = i.id AND NOT t.completed)`, userID)
}

func (p *Postgres) CountIncompleteIssues(ctx context.Context, userID int64) (int, error) {
	return p.count(ctx, `
		SELECT COUNT(DISTINCT i.id)
		FROM issues i
		JOIN tasks t ON t.issue_id = i.id
		WHERE i.user_id = $1 AND NOT t.completed`, userID)
}

func (p *Postgres) CountIssuesWithoutTasks(ctx context.Context, userID int64) (int, error) {
	return p.count(ctx, `
		SELECT COUNT(*)
		FROM issues i
		WHERE i.user_id = $1
		  AND NOT EXISTS (SELECT 1 FROM tasks t WHERE t.issue_id = i.id)`, userID)
}

func (p *Postgres) CountTasksByCompletion(ctx context.Context, userID int64, completed bool) (int, error) {
	return p.count(ctx, "SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND completed = $2", userID, completed)
}

func (p *Postgres) CountTasksWithSessions(ctx context.Context, userID int64) (int, error) {
	return p.count(ctx, "SELECT COUNT(DISTINCT task_id) FROM pomodoro_sessions WHERE user_id = $1", userID)
}

func (p *Postgres) CountSessionsWithDuration(ctx context.Context, userID int64, minutes int) (int, error) {
	return p.count(ctx, "SELECT COUNT(*) FROM pomodoro_sessions WHERE user_id = $1 AND duration_minutes = $2", userID, minutes)
}

func (p *Postgres) CountSessionsExcludingDurations(ctx context.Context, userID int64, minutes []int) (int, error) {
	excluded := make([]int64, len(minutes))
	for i, m := range minutes {
		excluded[i] = int64(m)
	}
	return p.count(ctx,
		"SELECT COUNT(*) FROM pomodoro_sessions WHERE user_id = $1 AND duration_minutes <> ALL($2)",
		userID, pq.Array(excluded))
}
