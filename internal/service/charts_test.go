package service

import (
	"context"
	"testing"
	"time"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPomodoroChartFillsMissingDays(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	u := f.user(t, "alice")
	task := f.task(t, u, "focus")

	start := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateSession(ctx, u, NewSession{
		TaskID: task, StartTime: start, EstimatedEndTime: start.Add(25 * time.Minute),
		ActualEndTime: start.Add(25 * time.Minute), DurationMinutes: 25, BreakPointCount: 2,
	})
	require.NoError(t, err)

	got, err := f.svc.PomodoroChart(ctx, u, 7)
	require.NoError(t, err)
	assert.Equal(t, []models.PomodoroPoint{
		{Date: "2024-02-28"},
		{Date: "2024-02-29"},
		{Date: "2024-03-01"},
		{Date: "2024-03-02", TotalDuration: 25, TotalBreaks: 2},
		{Date: "2024-03-03"},
		{Date: "2024-03-04"},
		{Date: "2024-03-05"},
	}, got)

	again, err := f.svc.PomodoroChart(ctx, u, 7)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	month, err := f.svc.PomodoroChart(ctx, u, 30)
	require.NoError(t, err)
	assert.Len(t, month, 30)
	assert.Equal(t, "2024-03-05", month[29].Date)
}

func TestTaskChartSixMonths(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	created := now
	store := memory.New(memory.WithClock(func() time.Time { return created }))
	f := newFixtureWithStore(t, store, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	u := f.user(t, "alice")

	created = time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateTask(ctx, u, NewTask{Title: "old", Completed: true})
	require.NoError(t, err)
	created = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.CreateTask(ctx, u, NewTask{Title: "new"})
	require.NoError(t, err)
	created = time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.CreateTask(ctx, u, NewTask{Title: "too old"})
	require.NoError(t, err)

	got, err := f.svc.TaskChart(ctx, u, 180)
	require.NoError(t, err)
	assert.Equal(t, []models.TaskPoint{
		{Date: "2023-10"},
		{Date: "2023-11"},
		{Date: "2023-12", Count: 1, Completed: 1},
		{Date: "2024-01"},
		{Date: "2024-02"},
		{Date: "2024-03", Count: 1, Incompleted: 1},
	}, got)
}

func TestChartBucketsFollowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 2024-03-05 01:00 in UTC+8 is still the 4th in UTC.
	now := time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return now }), WithLocation(loc))
	ctx := context.Background()
	u := f.user(t, "alice")
	task := f.task(t, u, "focus")

	_, err := f.svc.CreateSession(ctx, u, NewSession{
		TaskID: task, StartTime: now, EstimatedEndTime: now, ActualEndTime: now, DurationMinutes: 50,
	})
	require.NoError(t, err)

	got, err := f.svc.PomodoroChart(ctx, u, 7)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, models.PomodoroPoint{Date: "2024-03-05", TotalDuration: 50}, got[6])
}

func TestChartRejectsUnknownWindow(t *testing.T) {
	f := newFixture(t)
	for _, days := range []int{0, 1, 14, 31, 365} {
		_, err := f.svc.PomodoroChart(context.Background(), 1, days)
		assert.ErrorIs(t, err, apperror.ErrValidation, "days=%d", days)
	}
}

func TestChartStoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.store.InjectError("TaskBuckets", assert.AnError)
	_, err := f.svc.TaskChart(context.Background(), 1, 7)
	assert.ErrorIs(t, err, apperror.ErrInternal)
}
