package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/internal/series"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startPostgres runs a throwaway PostgreSQL container and returns a migrated
// store. The test is skipped when Docker is not reachable.
func startPostgres(t *testing.T) (*repository.Postgres, *sql.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=tracker",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=tracker_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	_ = resource.Expire(300)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("host=localhost port=%s user=tracker password=secret dbname=tracker_test sslmode=disable",
		resource.GetPort("5432/tcp"))
	var db *sql.DB
	pool.MaxWait = 2 * time.Minute
	err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		return db.Ping()
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, repository.Migrate(ctx, db))
	t.Cleanup(func() { _ = repository.DropAllTables(context.Background(), db) })
	return repository.NewPostgres(db), db
}

func intPtr(n int) *int { return &n }

func TestPostgresStore(t *testing.T) {
	store, db := startPostgres(t)
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, "pg@example.com", "pguser", "hash")
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.CreateUser(ctx, "pg@example.com", "someone", "hash")
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		exists, err := store.UsernameExists(ctx, "pguser")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := store.GetTask(ctx, 987654)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, store.LockIssue(ctx, 987654), repository.ErrNotFound)
	})

	t.Run("swap steps inside one transaction", func(t *testing.T) {
		issueID, err := store.CreateIssue(ctx, userID, "issue", "")
		require.NoError(t, err)
		a, err := store.CreateTask(ctx, &models.Task{UserID: userID, Title: "a", IssueID: &issueID, StepNumber: intPtr(1)})
		require.NoError(t, err)
		b, err := store.CreateTask(ctx, &models.Task{UserID: userID, Title: "b", IssueID: &issueID, StepNumber: intPtr(2)})
		require.NoError(t, err)

		err = store.WithTx(ctx, func(tx repository.Store) error {
			if err := tx.LockIssue(ctx, issueID); err != nil {
				return err
			}
			if _, err := tx.SetPosition(ctx, a, &issueID, intPtr(2)); err != nil {
				return err
			}
			_, err := tx.SetPosition(ctx, b, &issueID, intPtr(1))
			return err
		})
		require.NoError(t, err)

		members, err := store.ListIssueTasks(ctx, issueID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, b, members[0].ID)
		assert.Equal(t, 1, *members[0].StepNumber)

		// Leaving a duplicate step fails at commit.
		err = store.WithTx(ctx, func(tx repository.Store) error {
			_, err := tx.SetPosition(ctx, a, &issueID, intPtr(1))
			return err
		})
		assert.Error(t, err)

		members, err = store.ListIssueTasks(ctx, issueID)
		require.NoError(t, err)
		assert.Equal(t, 2, *members[1].StepNumber)
	})

	t.Run("sessions sort by enum column", func(t *testing.T) {
		taskID, err := store.CreateTask(ctx, &models.Task{UserID: userID, Title: "timed"})
		require.NoError(t, err)
		now := time.Now().UTC()
		for _, m := range []int{25, 5, 50} {
			_, err := store.CreateSession(ctx, &models.PomodoroSession{
				UserID: userID, TaskID: taskID, StartTime: now, EstimatedEndTime: now, ActualEndTime: now, DurationMinutes: m,
			})
			require.NoError(t, err)
		}

		got, err := store.ListSessions(ctx, repository.SessionQuery{
			Scope: repository.ScopeTask, ID: taskID, Sort: repository.SortByDuration, Order: repository.Desc, Limit: 10,
		})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 50, got[0].DurationMinutes)
		assert.Equal(t, "timed", got[0].Task.Title)

		n, err := store.CountSessionsExcludingDurations(ctx, userID, []int{5, 15, 25, 50})
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = store.CountTasksWithSessions(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = store.DeleteTask(ctx, taskID)
		require.NoError(t, err)
		n, err = store.CountSessions(ctx, repository.ScopeUser, userID)
		require.NoError(t, err)
		assert.Zero(t, n, "sessions cascade with their task")
	})

	t.Run("buckets group in the requested zone", func(t *testing.T) {
		taskID, err := store.CreateTask(ctx, &models.Task{UserID: userID, Title: "zoned"})
		require.NoError(t, err)
		start := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
		_, err = store.CreateSession(ctx, &models.PomodoroSession{
			UserID: userID, TaskID: taskID, StartTime: start, EstimatedEndTime: start, ActualEndTime: start,
			DurationMinutes: 25, BreakPointCount: 3,
		})
		require.NoError(t, err)

		loc, err := time.LoadLocation("Asia/Jakarta")
		require.NoError(t, err)
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
		got, err := store.PomodoroBuckets(ctx, userID, from, from.AddDate(0, 0, 7), series.Day)
		require.NoError(t, err)
		assert.Equal(t, []models.PomodoroPoint{{Date: "2024-03-02", TotalDuration: 25, TotalBreaks: 3}}, got)

		_, err = db.ExecContext(ctx, "UPDATE tasks SET created_at = $1 WHERE id = $2", start, taskID)
		require.NoError(t, err)
		months, err := store.TaskBuckets(ctx, userID, from.AddDate(0, -2, 0), from.AddDate(0, 1, 0), series.Month)
		require.NoError(t, err)
		assert.Equal(t, []models.TaskPoint{{Date: "2024-03", Count: 1, Incompleted: 1}}, months)
	})
}
