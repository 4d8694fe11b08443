package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/josephgoksu/TaskTalk/models"
)

// RetryingStore wraps a TodoStore with bounded retry for transient failures.
// Each retry waits a little longer than the last (linear backoff); when the
// attempts are exhausted the last error is surfaced to the caller.
type RetryingStore struct {
	inner    TodoStore
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// WithRetry decorates inner with up to attempts tries per operation and a
// linearly increasing backoff between them.
func WithRetry(inner TodoStore, attempts int, backoff time.Duration, logger *slog.Logger) *RetryingStore {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingStore{inner: inner, attempts: attempts, backoff: backoff, logger: logger}
}

func (s *RetryingStore) do(ctx context.Context, name string, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		s.logger.Warn("store operation failed", "op", name, "attempt", attempt, "max", s.attempts, "error", lastErr)
		if attempt < s.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}
	}
	return lastErr
}

// Initialize passes through; configuration errors are not transient.
func (s *RetryingStore) Initialize(config map[string]string) error {
	return s.inner.Initialize(config)
}

// FetchAll retries the inner fetch with backoff.
func (s *RetryingStore) FetchAll(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.do(ctx, "fetchAll", func() error {
		var opErr error
		tasks, opErr = s.inner.FetchAll(ctx, userID)
		return opErr
	})
	return tasks, err
}

// ReplaceAll retries the inner replace with backoff.
func (s *RetryingStore) ReplaceAll(ctx context.Context, userID string, tasks []models.Task) error {
	return s.do(ctx, "replaceAll", func() error {
		return s.inner.ReplaceAll(ctx, userID, tasks)
	})
}

// AppendTask retries the inner append with backoff.
func (s *RetryingStore) AppendTask(ctx context.Context, userID string, task models.Task) error {
	return s.do(ctx, "appendTask", func() error {
		return s.inner.AppendTask(ctx, userID, task)
	})
}

// Close passes through.
func (s *RetryingStore) Close() error {
	return s.inner.Close()
}
