/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/josephgoksu/TaskTalk/internal/server"
	"github.com/josephgoksu/TaskTalk/llm"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the assistant and the task list over HTTP so a web or
mobile frontend can use them:

  POST /api/chat         run one conversation turn
  GET  /api/tasks        list tasks (X-User-ID header)
  POST /api/tasks        create a task
  PATCH /api/tasks/{id}  update description or completion
  DELETE /api/tasks/{id} delete a task`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "API server port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := GetConfig()
	logger := NewLogger()

	todoStore, err := GetStore(logger)
	if err != nil {
		return err
	}
	defer func() { _ = todoStore.Close() }()

	provider, err := llm.NewProvider(cmd.Context(), config.LLM)
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}

	serverCfg := config.Server
	if servePort != 0 {
		serverCfg.Port = servePort
	}

	templatesDir := filepath.Join(config.Project.RootDir, config.Project.TemplatesDir)
	srv := server.New(serverCfg, todoStore, provider, config.Auth.UserID, templatesDir, logger)

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)

	fmt.Printf("TaskTalk API listening on http://localhost:%d (Ctrl+C to stop)\n", serverCfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		fmt.Printf("\nReceived %v, shutting down...\n", sig)
	case err := <-errChan:
		fmt.Printf("\nError: %v\n", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	wg.Wait()
	return nil
}
