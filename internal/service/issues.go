package service

import (
	"context"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

// CreateIssue creates an issue, optionally with an initial ordered list of
// the caller's tasks. Tasks already in another issue are moved.
func (s *Service) CreateIssue(ctx context.Context, principal int64, title, description string, taskIDs []int64) (int64, error) {
	seen := make(map[int64]bool, len(taskIDs))
	for _, id := range taskIDs {
		if seen[id] {
			return 0, apperror.Validation("task %d is listed twice", id)
		}
		seen[id] = true
	}

	var issueID int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		for _, id := range taskIDs {
			if _, err := ownedTask(ctx, tx, principal, id); err != nil {
				return err
			}
		}
		var err error
		if issueID, err = tx.CreateIssue(ctx, principal, title, description); err != nil {
			return storeErr("create issue", err)
		}
		if len(taskIDs) == 0 {
			return nil
		}
		if err := lockIssue(ctx, tx, issueID); err != nil {
			return err
		}
		for _, id := range taskIDs {
			if err := appendLocked(ctx, tx, principal, issueID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.changed(ctx, principal, EventIssueCreated, issueID)
	return issueID, nil
}

// GetIssue returns the issue with its tasks in step order.
func (s *Service) GetIssue(ctx context.Context, principal, issueID int64) (*models.IssueDetail, error) {
	issue, err := ownedIssue(ctx, s.store, principal, issueID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListIssueTasks(ctx, issueID)
	if err != nil {
		return nil, apperror.Internal("list issue tasks", err)
	}
	return &models.IssueDetail{Issue: *issue, Tasks: tasks}, nil
}

func (s *Service) ListIssues(ctx context.Context, principal int64, order repository.Order, page PageRequest) (models.Page[models.Issue], error) {
	out := models.Page[models.Issue]{Page: page.Page, PageSize: page.PageSize}
	issues, err := s.store.ListIssues(ctx, principal, order, page.Limit(), page.Offset())
	if err != nil {
		return out, apperror.Internal("list issues", err)
	}
	total, err := s.store.CountIssues(ctx, principal)
	if err != nil {
		return out, apperror.Internal("count issues", err)
	}
	out.Items, out.Total = issues, total
	return out, nil
}

func (s *Service) ListIssuesWithIncompleteTasks(ctx context.Context, principal int64) ([]models.Issue, error) {
	issues, err := s.store.ListIssuesWithIncompleteTasks(ctx, principal)
	if err != nil {
		return nil, apperror.Internal("list issues", err)
	}
	return issues, nil
}

// ListIncompleteIssueTasks returns the open tasks of an issue in step order.
func (s *Service) ListIncompleteIssueTasks(ctx context.Context, principal, issueID int64) ([]models.Task, error) {
	if _, err := ownedIssue(ctx, s.store, principal, issueID); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListIncompleteIssueTasks(ctx, issueID)
	if err != nil {
		return nil, apperror.Internal("list issue tasks", err)
	}
	return tasks, nil
}

func (s *Service) UpdateIssue(ctx context.Context, principal, issueID int64, patch models.IssuePatch) error {
	if patch.Empty() {
		return apperror.Validation("nothing to update")
	}
	if _, err := ownedIssue(ctx, s.store, principal, issueID); err != nil {
		return err
	}
	n, err := s.store.UpdateIssue(ctx, issueID, patch)
	if err := affected("update issue", n, err); err != nil {
		return err
	}
	s.changed(ctx, principal, EventIssueUpdated, issueID)
	return nil
}

// DeleteIssue detaches the issue's tasks, which survive, then deletes it.
func (s *Service) DeleteIssue(ctx context.Context, principal, issueID int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := ownedIssue(ctx, tx, principal, issueID); err != nil {
			return err
		}
		if err := lockIssue(ctx, tx, issueID); err != nil {
			return err
		}
		if _, err := tx.DetachAll(ctx, issueID); err != nil {
			return storeErr("detach issue tasks", err)
		}
		n, err := tx.DeleteIssue(ctx, issueID)
		return affected("delete issue", n, err)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, principal, EventIssueDeleted, issueID)
	return nil
}
