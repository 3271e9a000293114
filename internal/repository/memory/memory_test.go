package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/internal/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateUserRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateUser(ctx, "a@example.com", "alice", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "a@example.com", "other", "hash")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = s.CreateUser(ctx, "b@example.com", "alice", "hash")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.GetUser(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDuplicateStepRejectedOutsideTx(t *testing.T) {
	ctx := context.Background()
	s := New()
	issueID, err := s.CreateIssue(ctx, 1, "issue", "")
	require.NoError(t, err)
	a, err := s.CreateTask(ctx, &models.Task{UserID: 1, Title: "a", IssueID: &issueID, StepNumber: ptr(1)})
	require.NoError(t, err)
	b, err := s.CreateTask(ctx, &models.Task{UserID: 1, Title: "b"})
	require.NoError(t, err)

	_, err = s.SetPosition(ctx, b, &issueID, ptr(1))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := s.GetTask(ctx, b)
	require.NoError(t, err)
	assert.Nil(t, got.IssueID)

	_, err = s.SetPosition(ctx, a, &issueID, nil)
	assert.Error(t, err, "issue without step must be rejected")
}

func TestWithTxChecksAtCommitAndRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	issueID, _ := s.CreateIssue(ctx, 1, "issue", "")
	a, _ := s.CreateTask(ctx, &models.Task{UserID: 1, Title: "a", IssueID: &issueID, StepNumber: ptr(1)})
	b, _ := s.CreateTask(ctx, &models.Task{UserID: 1, Title: "b", IssueID: &issueID, StepNumber: ptr(2)})

	// A swap passes through a transient duplicate.
	err := s.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.SetPosition(ctx, a, &issueID, ptr(2)); err != nil {
			return err
		}
		_, err := tx.SetPosition(ctx, b, &issueID, ptr(1))
		return err
	})
	require.NoError(t, err)

	members, err := s.ListIssueTasks(ctx, issueID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, b, members[0].ID)
	assert.Equal(t, a, members[1].ID)

	boom := errors.New("boom")
	err = s.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.DeleteTask(ctx, a); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = s.GetTask(ctx, a)
	assert.NoError(t, err, "rolled back delete must leave the task")

	err = s.WithTx(ctx, func(tx repository.Store) error {
		_, err := tx.SetPosition(ctx, a, &issueID, ptr(1))
		return err
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestDeleteTaskCascadesSessions(t *testing.T) {
	ctx := context.Background()
	s := New()
	taskID, _ := s.CreateTask(ctx, &models.Task{UserID: 1, Title: "a"})
	sid, err := s.CreateSession(ctx, &models.PomodoroSession{UserID: 1, TaskID: taskID, DurationMinutes: 25})
	require.NoError(t, err)

	n, err := s.DeleteTask(ctx, taskID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.GetSession(ctx, sid)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListSessionsSortsAndPages(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := base
	s := New(WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))
	taskID, _ := s.CreateTask(ctx, &models.Task{UserID: 1, Title: "a"})
	for _, m := range []int{25, 5, 50} {
		_, err := s.CreateSession(ctx, &models.PomodoroSession{UserID: 1, TaskID: taskID, DurationMinutes: m})
		require.NoError(t, err)
	}

	got, err := s.ListSessions(ctx, repository.SessionQuery{
		Scope: repository.ScopeUser, ID: 1, Sort: repository.SortByDuration, Order: repository.Asc, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{5, 25, 50}, []int{got[0].DurationMinutes, got[1].DurationMinutes, got[2].DurationMinutes})
	assert.Equal(t, "a", got[0].Task.Title)

	got, err = s.ListSessions(ctx, repository.SessionQuery{
		Scope: repository.ScopeTask, ID: taskID, Sort: repository.SortByCreateTime, Order: repository.Desc, Limit: 2, Offset: 1,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].DurationMinutes)
	assert.Equal(t, 25, got[1].DurationMinutes)

	_, err = s.ListSessions(ctx, repository.SessionQuery{Scope: repository.ScopeUser, ID: 1, Sort: "title", Order: repository.Asc})
	assert.Error(t, err)
}

func TestBucketsUseLocationOfFrom(t *testing.T) {
	ctx := context.Background()
	s := New()
	taskID, _ := s.CreateTask(ctx, &models.Task{UserID: 1, Title: "a"})
	loc := time.FixedZone("UTC+7", 7*3600)

	// 20:00 UTC on the 1st is already the 2nd in UTC+7.
	start := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	_, err := s.CreateSession(ctx, &models.PomodoroSession{UserID: 1, TaskID: taskID, StartTime: start, DurationMinutes: 25, BreakPointCount: 2})
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, &models.PomodoroSession{UserID: 2, TaskID: taskID, StartTime: start, DurationMinutes: 50})
	require.NoError(t, err)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 7)
	got, err := s.PomodoroBuckets(ctx, 1, from, to, series.Day)
	require.NoError(t, err)
	assert.Equal(t, []models.PomodoroPoint{{Date: "2024-03-02", TotalDuration: 25, TotalBreaks: 2}}, got)
}

func TestIssueCounts(t *testing.T) {
	ctx := context.Background()
	s := New()
	done, _ := s.CreateIssue(ctx, 1, "done", "")
	open, _ := s.CreateIssue(ctx, 1, "open", "")
	_, _ = s.CreateIssue(ctx, 1, "empty", "")
	_, _ = s.CreateTask(ctx, &models.Task{UserID: 1, Title: "a", IssueID: &done, StepNumber: ptr(1), Completed: true})
	_, _ = s.CreateTask(ctx, &models.Task{UserID: 1, Title: "b", IssueID: &open, StepNumber: ptr(1), Completed: true})
	_, _ = s.CreateTask(ctx, &models.Task{UserID: 1, Title: "c", IssueID: &open, StepNumber: ptr(2)})

	n, err := s.CountFullyCompletedIssues(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, _ = s.CountIncompleteIssues(ctx, 1)
	assert.Equal(t, 1, n)
	n, _ = s.CountIssuesWithoutTasks(ctx, 1)
	assert.Equal(t, 1, n)
}

func TestInjectError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")
	s.InjectError("CountTasks", boom)

	_, err := s.CountTasks(ctx, 1)
	assert.ErrorIs(t, err, boom)

	s.InjectError("CountTasks", nil)
	_, err = s.CountTasks(ctx, 1)
	assert.NoError(t, err)
}
