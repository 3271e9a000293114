package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/series"
)

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (s *Store) PomodoroBuckets(ctx context.Context, userID int64, from, to time.Time, g series.Granularity) ([]models.PomodoroPoint, error) {
	byKey := map[string]*models.PomodoroPoint{}
	err := s.read("PomodoroBuckets", func(d *data) error {
		for _, ps := range d.sessions {
			if ps.UserID != userID || !inRange(ps.StartTime, from, to) {
				continue
			}
			key := ps.StartTime.In(from.Location()).Format(g.Layout())
			pt, ok := byKey[key]
			if !ok {
				pt = &models.PomodoroPoint{Date: key}
				byKey[key] = pt
			}
			pt.TotalDuration += int64(ps.DurationMinutes)
			pt.TotalBreaks += int64(ps.BreakPointCount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.PomodoroPoint, 0, len(byKey))
	for _, pt := range byKey {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) TaskBuckets(ctx context.Context, userID int64, from, to time.Time, g series.Granularity) ([]models.TaskPoint, error) {
	byKey := map[string]*models.TaskPoint{}
	err := s.read("TaskBuckets", func(d *data) error {
		for _, t := range d.tasks {
			if t.UserID != userID || !inRange(t.CreatedAt, from, to) {
				continue
			}
			key := t.CreatedAt.In(from.Location()).Format(g.Layout())
			pt, ok := byKey[key]
			if !ok {
				pt = &models.TaskPoint{Date: key}
				byKey[key] = pt
			}
			pt.Count++
			if t.Completed {
				pt.Completed++
			} else {
				pt.Incompleted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.TaskPoint, 0, len(byKey))
	for _, pt := range byKey {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type memberStats struct{ total, open int }

func issueStats(d *data) map[int64]memberStats {
	stats := map[int64]memberStats{}
	for _, t := range d.tasks {
		if t.IssueID == nil {
			continue
		}
		st := stats[*t.IssueID]
		st.total++
		if !t.Completed {
			st.open++
		}
		stats[*t.IssueID] = st
	}
	return stats
}

func (s *Store) countIssues(method string, userID int64, keep func(memberStats) bool) (int, error) {
	var n int
	err := s.read(method, func(d *data) error {
		stats := issueStats(d)
		for _, i := range d.issues {
			if i.UserID == userID && keep(stats[i.ID]) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) CountFullyCompletedIssues(ctx context.Context, userID int64) (int, error) {
	return s.countIssues("CountFullyCompletedIssues", userID, func(st memberStats) bool {
		return st.total > 0 && st.open == 0
	})
}

func (s *Store) CountIncompleteIssues(ctx context.Context, userID int64) (int, error) {
	return s.countIssues("CountIncompleteIssues", userID, func(st memberStats) bool { return st.open > 0 })
}

func (s *Store) CountIssuesWithoutTasks(ctx context.Context, userID int64) (int, error) {
	return s.countIssues("CountIssuesWithoutTasks", userID, func(st memberStats) bool { return st.total == 0 })
}

func (s *Store) CountTasksByCompletion(ctx context.Context, userID int64, completed bool) (int, error) {
	var n int
	err := s.read("CountTasksByCompletion", func(d *data) error {
		for _, t := range d.tasks {
			if t.UserID == userID && t.Completed == completed {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) CountTasksWithSessions(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.read("CountTasksWithSessions", func(d *data) error {
		seen := map[int64]bool{}
		for _, ps := range d.sessions {
			if ps.UserID == userID {
				seen[ps.TaskID] = true
			}
		}
		n = len(seen)
		return nil
	})
	return n, err
}

func (s *Store) CountSessionsWithDuration(ctx context.Context, userID int64, minutes int) (int, error) {
	return s.countSessions("CountSessionsWithDuration", userID, func(m int) bool { return m == minutes })
}

func (s *Store) CountSessionsExcludingDurations(ctx context.Context, userID int64, minutes []int) (int, error) {
	return s.countSessions("CountSessionsExcludingDurations", userID, func(m int) bool {
		return !slices.Contains(minutes, m)
	})
}

func (s *Store) countSessions(method string, userID int64, keep func(minutes int) bool) (int, error) {
	var n int
	err := s.read(method, func(d *data) error {
		for _, ps := range d.sessions {
			if ps.UserID == userID && keep(ps.DurationMinutes) {
				n++
			}
		}
		return nil
	})
	return n, err
}
