package service

import (
	"context"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Histogram buckets of the session summary, in minutes.
var standardDurations = []int{5, 15, 25, 50}

// Summary returns the caller's analysis rollup, from cache when possible.
func (s *Service) Summary(ctx context.Context, principal int64) (*models.AnalysisSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, principal)
		if err == nil {
			return cached, nil
		}
		if !isMiss(err) {
			logger.SystemLogger.Warn("Error reading summary cache", zap.Int64("user_id", principal), zap.Error(err))
		}
	}

	sum, err := s.buildSummary(ctx, principal)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, principal, *sum); err != nil {
			logger.SystemLogger.Warn("Error writing summary cache", zap.Int64("user_id", principal), zap.Error(err))
		}
	}
	return sum, nil
}

// buildSummary runs the independent counts concurrently. Any failure
// discards the whole result.
func (s *Service) buildSummary(ctx context.Context, principal int64) (*models.AnalysisSummary, error) {
	var sum models.AnalysisSummary
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	st := s.store
	user := func(fn func(context.Context, int64) (int, error)) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) { return fn(ctx, principal) }
	}
	duration := func(minutes int) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) { return st.CountSessionsWithDuration(ctx, principal, minutes) }
	}
	completion := func(done bool) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) { return st.CountTasksByCompletion(ctx, principal, done) }
	}

	count(&sum.Issue.Total, user(st.CountIssues))
	count(&sum.Issue.FullyCompleted, user(st.CountFullyCompletedIssues))
	count(&sum.Issue.Incompleted, user(st.CountIncompleteIssues))
	count(&sum.Issue.NoTask, user(st.CountIssuesWithoutTasks))

	count(&sum.Task.Total, user(st.CountTasks))
	count(&sum.Task.Completed, completion(true))
	count(&sum.Task.Incompleted, completion(false))
	count(&sum.Task.WithSessions, user(st.CountTasksWithSessions))

	count(&sum.Session.Total, func(ctx context.Context) (int, error) {
		return st.CountSessions(ctx, repository.ScopeUser, principal)
	})
	hist := &sum.Session.DurationCount
	count(&hist.Five, duration(5))
	count(&hist.Fifteen, duration(15))
	count(&hist.TwentyFive, duration(25))
	count(&hist.Fifty, duration(50))
	count(&hist.Other, func(ctx context.Context) (int, error) {
		return st.CountSessionsExcludingDurations(ctx, principal, standardDurations)
	})

	if err := g.Wait(); err != nil {
		return nil, apperror.Internal("build summary", err)
	}
	return &sum, nil
}
