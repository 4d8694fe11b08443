package server

import "net/http"

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)

	// Task Management API
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	return s.corsMiddleware(mux)
}
