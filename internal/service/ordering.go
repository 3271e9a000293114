package service

import (
	"context"
	"sort"

	"tasktracker/internal/apperror"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

// The step numbers of an issue's members are always exactly 1..n. Every
// function here runs inside one transaction that holds the issue row lock.

func step(n int) *int { return &n }

// compact removes taskID from issueID and closes the gap it leaves.
// Siblings are decremented one at a time in ascending step order, so each
// update moves into a slot that is already free.
func compact(ctx context.Context, tx repository.Store, issueID, taskID int64, removed int) error {
	if _, err := tx.SetPosition(ctx, taskID, nil, nil); err != nil {
		return storeErr("detach task", err)
	}
	members, err := tx.ListIssueTasks(ctx, issueID)
	if err != nil {
		return storeErr("list issue tasks", err)
	}
	for _, m := range members {
		if *m.StepNumber <= removed {
			continue
		}
		if _, err := tx.SetPosition(ctx, m.ID, &issueID, step(*m.StepNumber-1)); err != nil {
			return storeErr("shift task", err)
		}
	}
	return nil
}

// appendLocked puts the task at the end of issueID, which the caller has
// locked. A task that belongs to another issue is moved out of it first.
func appendLocked(ctx context.Context, tx repository.Store, principal, issueID, taskID int64) error {
	task, err := ownedTask(ctx, tx, principal, taskID)
	if err != nil {
		return err
	}
	if task.InIssue() {
		from := *task.IssueID
		if from != issueID {
			if err := lockIssue(ctx, tx, from); err != nil {
				return err
			}
			if task, err = getTask(ctx, tx, taskID); err != nil {
				return err
			}
			if !task.InIssue() || *task.IssueID != from {
				return apperror.Conflict("task %d was moved concurrently", taskID)
			}
		}
		if err := compact(ctx, tx, from, taskID, *task.StepNumber); err != nil {
			return err
		}
	}
	members, err := tx.ListIssueTasks(ctx, issueID)
	if err != nil {
		return storeErr("list issue tasks", err)
	}
	n, err := tx.SetPosition(ctx, taskID, &issueID, step(len(members)+1))
	return affected("append task", n, err)
}

// AppendTask adds a task as the last step of an issue.
func (s *Service) AppendTask(ctx context.Context, principal, issueID, taskID int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := ownedIssue(ctx, tx, principal, issueID); err != nil {
			return err
		}
		if _, err := ownedTask(ctx, tx, principal, taskID); err != nil {
			return err
		}
		if err := lockIssue(ctx, tx, issueID); err != nil {
			return err
		}
		return appendLocked(ctx, tx, principal, issueID, taskID)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, principal, EventIssueUpdated, issueID)
	return nil
}

// ReorderIssue renumbers the issue's members to follow taskIDs. The list
// must name every current member exactly once.
func (s *Service) ReorderIssue(ctx context.Context, principal, issueID int64, taskIDs []int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := ownedIssue(ctx, tx, principal, issueID); err != nil {
			return err
		}
		if err := lockIssue(ctx, tx, issueID); err != nil {
			return err
		}
		for _, id := range taskIDs {
			if _, err := ownedTask(ctx, tx, principal, id); err != nil {
				return err
			}
		}
		members, err := tx.ListIssueTasks(ctx, issueID)
		if err != nil {
			return storeErr("list issue tasks", err)
		}
		if err := samePermutation(members, taskIDs); err != nil {
			return err
		}

		if _, err := tx.DetachAll(ctx, issueID); err != nil {
			return storeErr("reset issue order", err)
		}
		for i, id := range taskIDs {
			n, err := tx.SetPosition(ctx, id, &issueID, step(i+1))
			if err := affected("reorder task", n, err); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.changed(ctx, principal, EventIssueUpdated, issueID)
	return nil
}

func samePermutation(members []models.Task, ids []int64) error {
	if len(ids) != len(members) {
		return apperror.Validation("task_ids must list all %d tasks of the issue", len(members))
	}
	want := make([]int64, 0, len(members))
	for _, m := range members {
		want = append(want, m.ID)
	}
	got := append([]int64(nil), ids...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i := range want {
		if want[i] != got[i] {
			return apperror.Validation("task_ids must list every task of the issue exactly once")
		}
	}
	return nil
}

// DetachTask takes a task out of its issue.
func (s *Service) DetachTask(ctx context.Context, principal, taskID int64) error {
	var issueID int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		task, err := ownedTask(ctx, tx, principal, taskID)
		if err != nil {
			return err
		}
		if !task.InIssue() {
			return apperror.Validation("task %d is not in an issue", taskID)
		}
		issueID = *task.IssueID
		if err := lockIssue(ctx, tx, issueID); err != nil {
			return err
		}
		// Re-read under the lock.
		if task, err = getTask(ctx, tx, taskID); err != nil {
			return err
		}
		if !task.InIssue() || *task.IssueID != issueID {
			return apperror.Conflict("task %d was moved concurrently", taskID)
		}
		return compact(ctx, tx, issueID, taskID, *task.StepNumber)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, principal, EventTaskUpdated, taskID)
	return nil
}

// DeleteTask removes a task and its sessions, closing the gap in its issue.
func (s *Service) DeleteTask(ctx context.Context, principal, taskID int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		task, err := ownedTask(ctx, tx, principal, taskID)
		if err != nil {
			return err
		}
		if task.InIssue() {
			issueID := *task.IssueID
			if err := lockIssue(ctx, tx, issueID); err != nil {
				return err
			}
			if task, err = getTask(ctx, tx, taskID); err != nil {
				return err
			}
			if !task.InIssue() || *task.IssueID != issueID {
				return apperror.Conflict("task %d was moved concurrently", taskID)
			}
			if err := compact(ctx, tx, issueID, taskID, *task.StepNumber); err != nil {
				return err
			}
		}
		n, err := tx.DeleteTask(ctx, taskID)
		return affected("delete task", n, err)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, principal, EventTaskDeleted, taskID)
	return nil
}
