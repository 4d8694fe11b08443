package server

import "github.com/josephgoksu/TaskTalk/models"

// ChatRequest is the payload for /api/chat. When Todos is present the
// request is self-contained: the supplied list becomes the prompt context
// and the caller applies the returned action itself. When Todos is absent
// the server loads the user's stored list and applies the action before
// responding.
type ChatRequest struct {
	Message string        `json:"message"`
	Todos   []models.Task `json:"todos,omitempty"`
	UserID  string        `json:"userId,omitempty"`
}

// ChatResponse is the response for /api/chat. Tasks is only populated in
// the store-backed mode.
type ChatResponse struct {
	Text   string        `json:"text"`
	Action models.Action `json:"action"`
	Tasks  []models.Task `json:"tasks,omitempty"`
}

// ChatErrorResponse is the 5xx response for /api/chat. It carries the
// apology text and a none action so a thin client can render it like any
// other turn.
type ChatErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Text    string        `json:"text"`
	Action  models.Action `json:"action"`
}

// CreateTaskRequest is the payload for POST /api/tasks
type CreateTaskRequest struct {
	Description string `json:"description"`
}

// UpdateTaskRequest is the payload for PATCH /api/tasks/{id}. Nil fields
// are left untouched.
type UpdateTaskRequest struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}
