package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/josephgoksu/TaskTalk/llm"
	"github.com/josephgoksu/TaskTalk/models"
	"github.com/josephgoksu/TaskTalk/store"
	"github.com/josephgoksu/TaskTalk/types"
)

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return p.reply, p.err
}

func newTestServer(t *testing.T, provider llm.Provider) *Server {
	t.Helper()

	st := store.NewFileTodoStore()
	err := st.Initialize(map[string]string{
		"dataFile":       filepath.Join(t.TempDir(), "todos.json"),
		"dataFileFormat": "json",
	})
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := types.ServerConfig{Port: 0, Origins: []string{"http://localhost:3000"}}
	return New(cfg, st, provider, "default-user", "", nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_AddTask(t *testing.T) {
	srv := newTestServer(t, &stubProvider{reply: `Added! {"type":"add_task","task":"Buy milk"}`})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/chat", ChatRequest{Message: "add buy milk", UserID: "u1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Text != "Added!" {
		t.Errorf("Text mismatch: got %q", resp.Text)
	}
	if resp.Action.Type != models.ActionAddTask {
		t.Errorf("Action type mismatch: got %q", resp.Action.Type)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].Description != "Buy milk" {
		t.Errorf("Tasks mismatch: got %+v", resp.Tasks)
	}

	// The mutation is visible through the task API for the same user.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks", nil, map[string]string{"X-User-ID": "u1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("list status mismatch: got %d", rec.Code)
	}
	var tasks []models.Task
	if err := json.NewDecoder(rec.Body).Decode(&tasks); err != nil {
		t.Fatalf("failed to decode task list: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("persisted task count mismatch: got %d", len(tasks))
	}
}

func TestHandleChat_StatelessWithTodos(t *testing.T) {
	srv := newTestServer(t, &stubProvider{reply: `Done! {"type":"mark_completed","taskId":"101"}`})
	handler := srv.Handler()

	todos := []models.Task{{ID: "101", Description: "Buy milk"}}
	rec := doJSON(t, handler, http.MethodPost, "/api/chat", ChatRequest{Message: "finish buy milk", Todos: todos}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Text != "Done!" {
		t.Errorf("Text mismatch: got %q", resp.Text)
	}
	if resp.Action.Type != models.ActionMarkCompleted || resp.Action.TaskID != "101" {
		t.Errorf("Action mismatch: got %+v", resp.Action)
	}
	if resp.Tasks != nil {
		t.Errorf("Tasks should be empty in stateless mode, got %+v", resp.Tasks)
	}

	// The caller applies the action itself; the store stays untouched.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks", nil, map[string]string{"X-User-ID": "default-user"})
	var tasks []models.Task
	if err := json.NewDecoder(rec.Body).Decode(&tasks); err != nil {
		t.Fatalf("failed to decode task list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("store should be untouched, got %d tasks", len(tasks))
	}
}

func TestHandleChat_MissingMessage(t *testing.T) {
	srv := newTestServer(t, &stubProvider{reply: "irrelevant"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/chat", ChatRequest{Message: "   "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status mismatch: got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] != "Message is required" {
		t.Errorf("error mismatch: got %q", body["error"])
	}
}

func TestHandleChat_ProviderFailure(t *testing.T) {
	srv := newTestServer(t, &stubProvider{err: errors.New("model unavailable")})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/chat", ChatRequest{Message: "hi"}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status mismatch: got %d", rec.Code)
	}

	var resp ChatErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Text != llm.ApologyText {
		t.Errorf("Text should be the apology, got %q", resp.Text)
	}
	if resp.Action.Type != models.ActionNone {
		t.Errorf("Action should be none, got %q", resp.Action.Type)
	}
	if resp.Message == "" {
		t.Error("Message should carry the underlying error")
	}
}

func TestHandleTranscribe(t *testing.T) {
	srv := newTestServer(t, &stubProvider{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/transcribe", nil, nil)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status mismatch: got %d", rec.Code)
	}
}

func TestTaskAPI_RequiresUserHeader(t *testing.T) {
	srv := newTestServer(t, &stubProvider{})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/tasks", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET without header: got %d, want 401", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/tasks", CreateTaskRequest{Description: "x"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST without header: got %d, want 401", rec.Code)
	}
}

func TestTaskAPI_CRUD(t *testing.T) {
	srv := newTestServer(t, &stubProvider{})
	handler := srv.Handler()
	headers := map[string]string{"X-User-ID": "u1"}

	// Create
	rec := doJSON(t, handler, http.MethodPost, "/api/tasks", CreateTaskRequest{Description: "Buy milk"}, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created models.Task
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode created task: %v", err)
	}
	if created.ID == "" || created.Description != "Buy milk" {
		t.Fatalf("created task mismatch: %+v", created)
	}

	// Update
	done := true
	rec = doJSON(t, handler, http.MethodPatch, "/api/tasks/"+created.ID, UpdateTaskRequest{Completed: &done}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}
	var updated models.Task
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode updated task: %v", err)
	}
	if !updated.Completed {
		t.Error("task should be completed after update")
	}

	// Update unknown task
	rec = doJSON(t, handler, http.MethodPatch, "/api/tasks/nope", UpdateTaskRequest{Completed: &done}, headers)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update of unknown task: got %d, want 404", rec.Code)
	}

	// Delete
	rec = doJSON(t, handler, http.MethodDelete, "/api/tasks/"+created.ID, nil, headers)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status mismatch: got %d", rec.Code)
	}

	// Delete again
	rec = doJSON(t, handler, http.MethodDelete, "/api/tasks/"+created.ID, nil, headers)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want 404", rec.Code)
	}

	// List is empty again
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks", nil, headers)
	var tasks []models.Task
	if err := json.NewDecoder(rec.Body).Decode(&tasks); err != nil {
		t.Fatalf("failed to decode task list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("list should be empty after delete, got %d", len(tasks))
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	srv := newTestServer(t, &stubProvider{})
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status mismatch: got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin mismatch: got %q", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	srv := newTestServer(t, &stubProvider{})
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("preflight for unknown origin: got %d, want 403", rec.Code)
	}
}
