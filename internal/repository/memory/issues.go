package memory

import (
	"context"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

func (s *Store) CreateIssue(ctx context.Context, userID int64, title, description string) (int64, error) {
	return s.mutate("CreateIssue", func(d *data) (int64, error) {
		id := d.id()
		d.issues[id] = models.Issue{
			ID:          id,
			UserID:      userID,
			Title:       title,
			Description: description,
			CreatedAt:   s.now(),
		}
		return id, nil
	})
}

func (s *Store) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	var out *models.Issue
	err := s.read("GetIssue", func(d *data) error {
		i, ok := d.issues[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &i
		return nil
	})
	return out, err
}

// LockIssue only checks existence; WithTx already serialises transactions.
func (s *Store) LockIssue(ctx context.Context, id int64) error {
	return s.read("LockIssue", func(d *data) error {
		if _, ok := d.issues[id]; !ok {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListIssues(ctx context.Context, userID int64, order repository.Order, limit, offset int) ([]models.Issue, error) {
	if err := validOrder(order); err != nil {
		return nil, err
	}
	var out []models.Issue
	err := s.read("ListIssues", func(d *data) error {
		out = filterIssues(d, order, func(i models.Issue) bool { return i.UserID == userID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(out, limit, offset), nil
}

func (s *Store) CountIssues(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.read("CountIssues", func(d *data) error {
		for _, i := range d.issues {
			if i.UserID == userID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) ListIssuesWithIncompleteTasks(ctx context.Context, userID int64) ([]models.Issue, error) {
	var out []models.Issue
	err := s.read("ListIssuesWithIncompleteTasks", func(d *data) error {
		open := map[int64]bool{}
		for _, t := range d.tasks {
			if t.IssueID != nil && !t.Completed {
				open[*t.IssueID] = true
			}
		}
		out = filterIssues(d, repository.Desc, func(i models.Issue) bool {
			return i.UserID == userID && open[i.ID]
		})
		return nil
	})
	return out, err
}

func (s *Store) UpdateIssue(ctx context.Context, id int64, patch models.IssuePatch) (int64, error) {
	return s.mutate("UpdateIssue", func(d *data) (int64, error) {
		i, ok := d.issues[id]
		if !ok {
			return 0, nil
		}
		if patch.Title != nil {
			i.Title = *patch.Title
		}
		if patch.Description != nil {
			i.Description = *patch.Description
		}
		d.issues[id] = i
		return 1, nil
	})
}

// DeleteIssue refuses while tasks still reference the issue.
func (s *Store) DeleteIssue(ctx context.Context, id int64) (int64, error) {
	return s.mutate("DeleteIssue", func(d *data) (int64, error) {
		if _, ok := d.issues[id]; !ok {
			return 0, nil
		}
		for _, t := range d.tasks {
			if t.IssueID != nil && *t.IssueID == id {
				return 0, errForeignKey
			}
		}
		delete(d.issues, id)
		return 1, nil
	})
}

func filterIssues(d *data, order repository.Order, keep func(models.Issue) bool) []models.Issue {
	out := []models.Issue{}
	for _, i := range d.issues {
		if keep(i) {
			out = append(out, i)
		}
	}
	sortByCreated(out,
		func(i models.Issue) time.Time { return i.CreatedAt },
		func(i models.Issue) int64 { return i.ID },
		order)
	return out
}
