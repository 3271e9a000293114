package service

import (
	"context"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

type NewTask struct {
	Title       string
	Description string
	Completed   bool
	IssueID     *int64
}

// CreateTask creates a task, appended as the last step of IssueID when set.
func (s *Service) CreateTask(ctx context.Context, principal int64, in NewTask) (int64, error) {
	task := &models.Task{
		UserID:      principal,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	}
	var id int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if in.IssueID != nil {
			issueID := *in.IssueID
			if _, err := ownedIssue(ctx, tx, principal, issueID); err != nil {
				return err
			}
			if err := lockIssue(ctx, tx, issueID); err != nil {
				return err
			}
			members, err := tx.ListIssueTasks(ctx, issueID)
			if err != nil {
				return storeErr("list issue tasks", err)
			}
			task.IssueID, task.StepNumber = &issueID, step(len(members)+1)
		}
		var err error
		id, err = tx.CreateTask(ctx, task)
		if err != nil {
			return storeErr("create task", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.changed(ctx, principal, EventTaskCreated, id)
	return id, nil
}

// GetTask returns the task with its issue, if any, and its sessions.
func (s *Service) GetTask(ctx context.Context, principal, taskID int64) (*models.TaskDetail, error) {
	task, err := ownedTask(ctx, s.store, principal, taskID)
	if err != nil {
		return nil, err
	}
	detail := &models.TaskDetail{Task: *task}
	if task.InIssue() {
		if detail.Issue, err = getIssue(ctx, s.store, *task.IssueID); err != nil {
			return nil, err
		}
	}
	sessions, err := s.store.ListTaskSessions(ctx, taskID)
	if err != nil {
		return nil, apperror.Internal("list task sessions", err)
	}
	for i := range sessions {
		if err := s.openNote(&sessions[i]); err != nil {
			return nil, err
		}
	}
	detail.Sessions = sessions
	return detail, nil
}

func (s *Service) ListTasks(ctx context.Context, principal int64, order repository.Order, page PageRequest) (models.Page[models.Task], error) {
	out := models.Page[models.Task]{Page: page.Page, PageSize: page.PageSize}
	tasks, err := s.store.ListTasks(ctx, principal, order, page.Limit(), page.Offset())
	if err != nil {
		return out, apperror.Internal("list tasks", err)
	}
	total, err := s.store.CountTasks(ctx, principal)
	if err != nil {
		return out, apperror.Internal("count tasks", err)
	}
	out.Items, out.Total = tasks, total
	return out, nil
}

// ListAvailableTasks returns the tasks that are not in any issue.
func (s *Service) ListAvailableTasks(ctx context.Context, principal int64) ([]models.Task, error) {
	tasks, err := s.store.ListUnassignedTasks(ctx, principal)
	return tasks, apperror.Internal("list available tasks", err)
}

func (s *Service) ListIncompleteTasks(ctx context.Context, principal int64) ([]models.Task, error) {
	tasks, err := s.store.ListIncompleteTasks(ctx, principal)
	return tasks, apperror.Internal("list incomplete tasks", err)
}

func (s *Service) ListTasksWithSessions(ctx context.Context, principal int64) ([]models.Task, error) {
	tasks, err := s.store.ListTasksWithSessions(ctx, principal)
	return tasks, apperror.Internal("list tasks with sessions", err)
}

func (s *Service) UpdateTask(ctx context.Context, principal, taskID int64, patch models.TaskPatch) error {
	if patch.Empty() {
		return apperror.Validation("nothing to update")
	}
	if _, err := ownedTask(ctx, s.store, principal, taskID); err != nil {
		return err
	}
	n, err := s.store.UpdateTask(ctx, taskID, patch)
	if err := affected("update task", n, err); err != nil {
		return err
	}
	s.changed(ctx, principal, EventTaskUpdated, taskID)
	return nil
}
