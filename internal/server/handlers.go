package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/josephgoksu/TaskTalk/internal/action"
	"github.com/josephgoksu/TaskTalk/internal/chat"
	"github.com/josephgoksu/TaskTalk/llm"
	"github.com/josephgoksu/TaskTalk/models"
	"github.com/josephgoksu/TaskTalk/prompts"
)

// handleChat runs one conversation turn for the requesting user. The
// handler is stateless: every request loads the task list fresh, so
// multiple clients can talk about the same list without a sticky session.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeAPIError(w, http.StatusBadRequest, "Message is required")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = s.defaultUserID
	}

	if req.Todos != nil {
		s.handleChatStateless(w, r, req)
		return
	}

	sess := chat.NewSession(userID, s.store, s.provider, s.logger)
	sess.SetTemplatesDir(s.templatesDir)
	if err := sess.Start(r.Context()); err != nil {
		s.logger.Error("chat turn failed to load tasks", "user", userID, "error", err)
		writeAPIError(w, http.StatusInternalServerError, "Failed to load tasks")
		return
	}

	msg, act, err := sess.Exchange(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("chat turn failed", "user", userID, "error", err)
		s.writeChatError(w, err)
		return
	}

	writeAPIJSON(w, ChatResponse{
		Text:   msg.Content,
		Action: act,
		Tasks:  sess.Tasks(),
	})
}

// handleChatStateless runs a completion over the todos supplied in the
// request without reading or writing the store. The caller is expected to
// apply the returned action to its own copy of the list.
func (s *Server) handleChatStateless(w http.ResponseWriter, r *http.Request, req ChatRequest) {
	template, err := prompts.GetPrompt(prompts.KeyChatSystem, s.templatesDir)
	if err != nil {
		template = prompts.ChatSystemPrompt
	}
	systemPrompt := prompts.BuildChatPromptFrom(template, req.Todos)

	reply, err := s.provider.Complete(r.Context(), systemPrompt, req.Message)
	if err != nil {
		s.logger.Error("chat completion failed", "error", err)
		s.writeChatError(w, err)
		return
	}

	result := action.Extract(reply)
	writeAPIJSON(w, ChatResponse{
		Text:   result.DisplayText,
		Action: result.Action,
	})
}

func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(ChatErrorResponse{
		Error:   "Failed to process chat message",
		Message: err.Error(),
		Text:    llm.ApologyText,
		Action:  models.NoneAction(),
	})
}

// handleTranscribe is a placeholder; speech capture happens on the client.
func (s *Server) handleTranscribe(w http.ResponseWriter, _ *http.Request) {
	writeAPIError(w, http.StatusNotImplemented, "This endpoint is not currently in use")
}

// requireUser reads the caller identity from the X-User-ID header.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeAPIError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return "", false
	}
	return userID, true
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	tasks, err := s.store.FetchAll(r.Context(), userID)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeAPIError(w, http.StatusBadRequest, "description is required")
		return
	}

	task := models.NewTask(strings.TrimSpace(req.Description))
	if err := s.store.AppendTask(r.Context(), userID, task); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tasks, err := s.store.FetchAll(r.Context(), userID)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var updated *models.Task
	for i := range tasks {
		if tasks[i].ID == id {
			if req.Description != nil {
				tasks[i].Description = *req.Description
			}
			if req.Completed != nil {
				tasks[i].Completed = *req.Completed
			}
			updated = &tasks[i]
			break
		}
	}
	if updated == nil {
		writeAPIError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := s.store.ReplaceAll(r.Context(), userID, tasks); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAPIJSON(w, *updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	tasks, err := s.store.FetchAll(r.Context(), userID)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	next := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(tasks) {
		writeAPIError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := s.store.ReplaceAll(r.Context(), userID, next); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
