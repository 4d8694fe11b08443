// Package chat owns the conversation state for one signed-in user and
// sequences each turn: build prompt, get completion, extract the trailing
// instruction, dispatch it against the store.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/josephgoksu/TaskTalk/internal/action"
	"github.com/josephgoksu/TaskTalk/llm"
	"github.com/josephgoksu/TaskTalk/models"
	"github.com/josephgoksu/TaskTalk/prompts"
	"github.com/josephgoksu/TaskTalk/store"
	"github.com/josephgoksu/TaskTalk/types"
)

// SessionState tracks the session lifecycle.
type SessionState int

const (
	StateSignedOut SessionState = iota
	StateLoading
	StateReady
)

// TurnState tracks where an in-flight conversation turn is. One turn at a
// time; the busy flag refuses overlapping submissions.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnSending
	TurnAwaitingCompletion
	TurnDispatching
)

var (
	// ErrBusy means a turn is already in flight for this session.
	ErrBusy = errors.New("a conversation turn is already in progress")
	// ErrNotReady means the task list has not been loaded yet.
	ErrNotReady = errors.New("session is not ready")
)

// WelcomeText greets the user once their task list has loaded.
const WelcomeText = "Hello! I'm your AI assistant. How can I help you manage your tasks today?"

// FetchApologyText is appended when the initial task fetch fails. The
// session stays in Loading so a later Start can retry.
const FetchApologyText = "I'm having trouble accessing your tasks. Please try again or sign out and back in."

// Session is the conversation orchestrator for one user. It exclusively
// owns the in-memory task list and chat transcript; the store is the sole
// path to durable state and in-memory state only changes after a store
// write is known to have succeeded.
type Session struct {
	userID       string
	templatesDir string
	store        store.TodoStore
	provider     llm.Provider
	logger       *slog.Logger

	mu       sync.Mutex
	state    SessionState
	turn     TurnState
	busy     bool
	tasks    []models.Task
	messages []models.ChatMessage
}

// NewSession creates a signed-out session for userID.
func NewSession(userID string, st store.TodoStore, provider llm.Provider, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		userID:   userID,
		store:    st,
		provider: provider,
		logger:   logger,
		state:    StateSignedOut,
	}
}

// SetTemplatesDir points the session at a directory of prompt overrides.
func (s *Session) SetTemplatesDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templatesDir = dir
}

// Start loads the user's task list and moves the session to Ready. On
// fetch failure it appends an apology message, leaves the list empty and
// stays in Loading so the next Start can retry.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	tasks, err := s.store.FetchAll(ctx, s.userID)
	if err != nil {
		s.logger.Error("failed to fetch tasks", "user", s.userID, "error", err)
		s.mu.Lock()
		s.messages = append(s.messages, models.NewChatMessage(models.RoleAssistant, FetchApologyText))
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.messages = append(s.messages, models.NewChatMessage(models.RoleAssistant, WelcomeText))
	s.state = StateReady
	s.mu.Unlock()
	return nil
}

// Send runs one full conversation turn and returns the assistant's message.
// A completion failure never surfaces as an error: the turn completes with
// an apology message, the list untouched and the busy flag cleared.
func (s *Session) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	msg, _, err := s.Exchange(ctx, text)
	if err != nil {
		if errors.Is(err, ErrBusy) || errors.Is(err, ErrNotReady) {
			return models.ChatMessage{}, err
		}
		apology := models.NewChatMessage(models.RoleAssistant, llm.ApologyText)
		s.mu.Lock()
		s.messages = append(s.messages, apology)
		s.mu.Unlock()
		return apology, nil
	}
	return msg, nil
}

// Exchange runs one turn and additionally returns the instruction that was
// dispatched. Unlike Send it reports completion failures to the caller,
// which the HTTP layer turns into an error response.
func (s *Session) Exchange(ctx context.Context, text string) (models.ChatMessage, models.Action, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return models.ChatMessage{}, models.Action{}, ErrNotReady
	}
	if s.busy {
		s.mu.Unlock()
		return models.ChatMessage{}, models.Action{}, ErrBusy
	}
	s.busy = true
	s.turn = TurnSending
	s.messages = append(s.messages, models.NewChatMessage(models.RoleUser, text))
	snapshot := make([]models.Task, len(s.tasks))
	copy(snapshot, s.tasks)
	templatesDir := s.templatesDir
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.turn = TurnIdle
		s.mu.Unlock()
	}()

	template, err := prompts.GetPrompt(prompts.KeyChatSystem, templatesDir)
	if err != nil {
		s.logger.Warn("failed to load prompt override, using default", "error", err)
		template = prompts.ChatSystemPrompt
	}
	systemPrompt := prompts.BuildChatPromptFrom(template, snapshot)

	s.setTurn(TurnAwaitingCompletion)
	reply, err := s.provider.Complete(ctx, systemPrompt, text)
	if err != nil {
		s.logger.Error("completion failed", "user", s.userID, "error", err)
		return models.ChatMessage{}, models.Action{}, err
	}

	result := action.Extract(reply)
	assistant := models.NewChatMessage(models.RoleAssistant, result.DisplayText)
	s.mu.Lock()
	s.messages = append(s.messages, assistant)
	s.mu.Unlock()

	s.setTurn(TurnDispatching)
	s.dispatch(ctx, result.Action)

	return assistant, result.Action, nil
}

// SignOut clears the transcript and task list.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.tasks = nil
	s.state = StateSignedOut
}

// UserID returns the owning identity.
func (s *Session) UserID() string { return s.userID }

// State returns the session lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a turn is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Turn returns the in-flight turn state.
func (s *Session) Turn() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Tasks returns a copy of the in-memory task list.
func (s *Session) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) setTurn(t TurnState) {
	s.mu.Lock()
	s.turn = t
	s.mu.Unlock()
}

// ensureUser rejects operations for any identity other than the session's.
// This is security-relevant and never silently degraded.
func (s *Session) ensureUser(userID string) error {
	if userID == "" {
		return types.ErrNoUserID
	}
	if userID != s.userID {
		return types.ErrUserMismatch
	}
	return nil
}

// AddTask is the conventional-UI path for creating one task directly.
func (s *Session) AddTask(ctx context.Context, userID, description string) (models.Task, error) {
	if err := s.ensureUser(userID); err != nil {
		return models.Task{}, err
	}
	created, err := s.createTask(ctx, description)
	if err != nil {
		return models.Task{}, err
	}
	s.appendTasks(created)
	return created, nil
}

// ToggleTask flips a task's completion state.
func (s *Session) ToggleTask(ctx context.Context, userID, taskID string) error {
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	var target *models.Task
	tasks := s.Tasks()
	for i := range tasks {
		if tasks[i].ID == taskID {
			target = &tasks[i]
			break
		}
	}
	if target == nil {
		s.logger.Warn("toggle for unknown task", "taskId", taskID)
		return nil
	}
	return s.setStatus(ctx, taskID, !target.Completed)
}

// DeleteTask removes a task.
func (s *Session) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	return s.removeTask(ctx, taskID)
}
