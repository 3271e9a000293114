package service

import (
	"context"
	"time"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/series"
)

// buildSeries returns one entry per bucket of the window ending today in
// the service's location, zero-filled and in ascending order.
func buildSeries[T series.Bucket[T]](ctx context.Context, s *Service, principal int64, days int,
	query func(ctx context.Context, userID int64, from, to time.Time, g series.Granularity) ([]T, error)) ([]T, error) {
	w, err := series.ParseWindow(days)
	if err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}
	now := s.now().In(s.loc)
	from, to := w.Bounds(now)
	g := w.Granularity()

	rows, err := query(ctx, principal, from, to, g)
	if err != nil {
		return nil, apperror.Internal("aggregate buckets", err)
	}
	return series.Fill(g, w.Keys(now), rows), nil
}

// PomodoroChart totals session minutes and breaks by session start.
func (s *Service) PomodoroChart(ctx context.Context, principal int64, days int) ([]models.PomodoroPoint, error) {
	return buildSeries(ctx, s, principal, days, s.store.PomodoroBuckets)
}

// TaskChart counts tasks by creation date, split by completion.
func (s *Service) TaskChart(ctx context.Context, principal int64, days int) ([]models.TaskPoint, error) {
	return buildSeries(ctx, s, principal, days, s.store.TaskBuckets)
}
