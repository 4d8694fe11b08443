package models

import "strings"

// ActionType is one tag in the fixed instruction vocabulary the assistant
// may emit at the end of a reply.
type ActionType string

const (
	ActionAddTask          ActionType = "add_task"
	ActionAddMultipleTasks ActionType = "add_multiple_tasks"
	ActionMarkCompleted    ActionType = "mark_completed"
	ActionMarkPending      ActionType = "mark_pending"
	ActionEditTask         ActionType = "edit_task"
	ActionDeleteTask       ActionType = "delete_task"
	ActionNone             ActionType = "none"
)

// Action is the single structured instruction extracted from a model reply.
// It is transient per conversation turn and never persisted.
type Action struct {
	Type   ActionType `json:"type"`
	TaskID string     `json:"taskId,omitempty"`
	Task   string     `json:"task,omitempty"`
	Tasks  []string   `json:"tasks,omitempty"`
}

// NoneAction is the explicit no-op instruction.
func NoneAction() Action {
	return Action{Type: ActionNone}
}

// KnownActionType reports whether t belongs to the instruction vocabulary.
func KnownActionType(t ActionType) bool {
	switch t {
	case ActionAddTask, ActionAddMultipleTasks, ActionMarkCompleted,
		ActionMarkPending, ActionEditTask, ActionDeleteTask, ActionNone:
		return true
	}
	return false
}

// Validate reports whether the action carries every field its variant
// requires. A failing action is treated as a no-op by the dispatcher,
// never as an error the user sees.
func (a Action) Validate() bool {
	switch a.Type {
	case ActionAddTask:
		return strings.TrimSpace(a.Task) != ""
	case ActionAddMultipleTasks:
		return len(a.Tasks) > 0
	case ActionMarkCompleted, ActionMarkPending, ActionDeleteTask:
		return a.TaskID != ""
	case ActionEditTask:
		return a.TaskID != "" && strings.TrimSpace(a.Task) != ""
	case ActionNone:
		return true
	}
	return false
}

// IsMutation reports whether dispatching the action can change the list.
func (a Action) IsMutation() bool {
	return a.Type != ActionNone && KnownActionType(a.Type)
}
