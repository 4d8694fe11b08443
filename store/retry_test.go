package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/josephgoksu/TaskTalk/models"
)

// flakyStore fails a configurable number of times before succeeding.
type flakyStore struct {
	failures int
	calls    int
	tasks    []models.Task
}

var errTransient = errors.New("transient backend failure")

func (f *flakyStore) Initialize(map[string]string) error { return nil }
func (f *flakyStore) Close() error                       { return nil }

func (f *flakyStore) FetchAll(ctx context.Context, userID string) ([]models.Task, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errTransient
	}
	return f.tasks, nil
}

func (f *flakyStore) ReplaceAll(ctx context.Context, userID string, tasks []models.Task) error {
	f.calls++
	if f.calls <= f.failures {
		return errTransient
	}
	f.tasks = tasks
	return nil
}

func (f *flakyStore) AppendTask(ctx context.Context, userID string, task models.Task) error {
	f.calls++
	if f.calls <= f.failures {
		return errTransient
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func TestRetryingStore_SucceedsAfterTransientFailures(t *testing.T) {
	inner := &flakyStore{failures: 2, tasks: []models.Task{models.NewTask("Buy milk")}}
	store := WithRetry(inner, 3, time.Millisecond, nil)

	tasks, err := store.FetchAll(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FetchAll should succeed on the third attempt: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("call count mismatch: got %d, want 3", inner.calls)
	}
	if len(tasks) != 1 {
		t.Errorf("task count mismatch: got %d, want 1", len(tasks))
	}
}

func TestRetryingStore_ExhaustsAttempts(t *testing.T) {
	inner := &flakyStore{failures: 10}
	store := WithRetry(inner, 3, time.Millisecond, nil)

	_, err := store.FetchAll(context.Background(), "user-1")
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected the last transient error, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("call count mismatch: got %d, want 3", inner.calls)
	}
}

func TestRetryingStore_StopsOnContextCancel(t *testing.T) {
	inner := &flakyStore{failures: 10}
	store := WithRetry(inner, 5, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FetchAll(ctx, "user-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("cancelled context should stop after the first attempt, got %d calls", inner.calls)
	}
}

func TestRetryingStore_WriteRetries(t *testing.T) {
	inner := &flakyStore{failures: 1}
	store := WithRetry(inner, 3, time.Millisecond, nil)

	task := models.NewTask("Call mom")
	if err := store.AppendTask(context.Background(), "user-1", task); err != nil {
		t.Fatalf("AppendTask should succeed on retry: %v", err)
	}
	if len(inner.tasks) != 1 {
		t.Errorf("append should have landed exactly once, got %d tasks", len(inner.tasks))
	}
}

func TestRetryingStore_MinimumOneAttempt(t *testing.T) {
	inner := &flakyStore{}
	store := WithRetry(inner, 0, 0, nil)

	if _, err := store.FetchAll(context.Background(), "user-1"); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("attempts below one should clamp to one, got %d calls", inner.calls)
	}
}
