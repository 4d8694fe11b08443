package chat

import (
	"context"
	"strings"

	"github.com/josephgoksu/TaskTalk/models"
)

// dispatch applies one extracted instruction to the store and, after the
// write succeeds, to the in-memory list. Dispatch failures are logged and
// swallowed: the assistant message has already been shown and a failed
// mutation must not turn into a failed turn.
func (s *Session) dispatch(ctx context.Context, act models.Action) {
	if act.Type == models.ActionNone {
		return
	}
	if !act.Validate() {
		s.logger.Warn("ignoring malformed instruction", "type", act.Type)
		return
	}

	switch act.Type {
	case models.ActionAddTask:
		created, err := s.createTask(ctx, act.Task)
		if err != nil {
			s.logger.Error("add_task failed", "error", err)
			return
		}
		s.appendTasks(created)

	case models.ActionAddMultipleTasks:
		s.addMultiple(ctx, act.Tasks)

	case models.ActionMarkCompleted:
		if err := s.setStatus(ctx, act.TaskID, true); err != nil {
			s.logger.Error("mark_completed failed", "taskId", act.TaskID, "error", err)
		}

	case models.ActionMarkPending:
		if err := s.setStatus(ctx, act.TaskID, false); err != nil {
			s.logger.Error("mark_pending failed", "taskId", act.TaskID, "error", err)
		}

	case models.ActionEditTask:
		if err := s.editDescription(ctx, act.TaskID, act.Task); err != nil {
			s.logger.Error("edit_task failed", "taskId", act.TaskID, "error", err)
		}

	case models.ActionDeleteTask:
		if err := s.removeTask(ctx, act.TaskID); err != nil {
			s.logger.Error("delete_task failed", "taskId", act.TaskID, "error", err)
		}
	}
}

// addMultiple creates tasks one at a time, in order, skipping blank
// descriptions. Each write is independent: a failure drops that task and
// the rest of the batch still runs.
func (s *Session) addMultiple(ctx context.Context, descriptions []string) {
	for _, desc := range descriptions {
		if strings.TrimSpace(desc) == "" {
			s.logger.Warn("skipping task with empty description in batch add")
			continue
		}
		created, err := s.createTask(ctx, desc)
		if err != nil {
			s.logger.Error("batch add_task failed", "description", desc, "error", err)
			continue
		}
		s.appendTasks(created)
	}
}

// createTask writes a new task through the store. In-memory state is the
// caller's to update after success.
func (s *Session) createTask(ctx context.Context, description string) (models.Task, error) {
	task := models.NewTask(strings.TrimSpace(description))
	if err := s.store.AppendTask(ctx, s.userID, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *Session) appendTasks(tasks ...models.Task) {
	s.mu.Lock()
	s.tasks = append(s.tasks, tasks...)
	s.mu.Unlock()
}

// setStatus rewrites the whole list with the matching task's completion
// flag flipped. An unknown taskId is not an error: the write still happens
// (unchanged) and a warning records the miss, which also makes repeated
// mark instructions idempotent.
func (s *Session) setStatus(ctx context.Context, taskID string, completed bool) error {
	next := s.Tasks()
	found := false
	for i := range next {
		if next[i].ID == taskID {
			next[i].Completed = completed
			found = true
		}
	}
	if !found {
		s.logger.Warn("status change for unknown task", "taskId", taskID)
	}
	if err := s.store.ReplaceAll(ctx, s.userID, next); err != nil {
		return err
	}
	s.replaceTasks(next)
	return nil
}

// editDescription follows the same write-then-adopt pattern as setStatus.
// Descriptions are trimmed like the add path's.
func (s *Session) editDescription(ctx context.Context, taskID, description string) error {
	description = strings.TrimSpace(description)
	next := s.Tasks()
	found := false
	for i := range next {
		if next[i].ID == taskID {
			next[i].Description = description
			found = true
		}
	}
	if !found {
		s.logger.Warn("edit for unknown task", "taskId", taskID)
	}
	if err := s.store.ReplaceAll(ctx, s.userID, next); err != nil {
		return err
	}
	s.replaceTasks(next)
	return nil
}

// removeTask filters the task out and writes the remainder. Unlike status
// and edit, a miss skips the write entirely.
func (s *Session) removeTask(ctx context.Context, taskID string) error {
	current := s.Tasks()
	next := make([]models.Task, 0, len(current))
	for _, t := range current {
		if t.ID != taskID {
			next = append(next, t)
		}
	}
	if len(next) == len(current) {
		s.logger.Warn("delete for unknown task", "taskId", taskID)
		return nil
	}
	if err := s.store.ReplaceAll(ctx, s.userID, next); err != nil {
		return err
	}
	s.replaceTasks(next)
	return nil
}

func (s *Session) replaceTasks(tasks []models.Task) {
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
}
