// Package server exposes the conversation pipeline and the task list over
// a small JSON API, so a web or mobile frontend can drive the same store
// and model the terminal UI does.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/josephgoksu/TaskTalk/llm"
	"github.com/josephgoksu/TaskTalk/store"
	"github.com/josephgoksu/TaskTalk/types"
)

type Server struct {
	store         store.TodoStore
	provider      llm.Provider
	logger        *slog.Logger
	templatesDir  string
	defaultUserID string
	origins       map[string]struct{}
	port          int
	server        *http.Server
}

func New(cfg types.ServerConfig, st store.TodoStore, provider llm.Provider, defaultUserID, templatesDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	origins := make(map[string]struct{}, len(cfg.Origins))
	for _, o := range cfg.Origins {
		origins[o] = struct{}{}
	}

	s := &Server{
		store:         st,
		provider:      provider,
		logger:        logger,
		templatesDir:  templatesDir,
		defaultUserID: defaultUserID,
		origins:       origins,
		port:          cfg.Port,
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.registerRoutes(),
	}

	return s
}

func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		s.logger.Info("API server listening", "port", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func writeAPIJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
