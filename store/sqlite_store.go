package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/josephgoksu/TaskTalk/models"
	"github.com/josephgoksu/TaskTalk/types"

	_ "modernc.org/sqlite"
)

// SQLiteTodoStore implements TodoStore on a local SQLite database. Each user
// document is one row holding the whole collection as JSON, which preserves
// the wholesale read/replace semantics of the file backend while getting
// real transactional locking from the database.
type SQLiteTodoStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteTodoStore creates a new instance. Initialize must be called
// separately.
func NewSQLiteTodoStore() *SQLiteTodoStore {
	return &SQLiteTodoStore{}
}

// Initialize opens (or creates) the database file given by 'dataFile' and
// ensures the schema exists.
func (s *SQLiteTodoStore) Initialize(config map[string]string) error {
	path := config[dataFileKey]
	if path == "" {
		path = "todos.db"
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	// Whole-document writes are short; a single connection sidesteps
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS user_todos (
	user_id    TEXT PRIMARY KEY,
	todos      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("create schema: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// FetchAll returns the user's collection, creating an empty document on
// first access.
func (s *SQLiteTodoStore) FetchAll(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return nil, types.ErrNoUserID
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT todos FROM user_todos WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.writeDocument(ctx, userID, models.TaskDocument{Todos: []models.Task{}}); err != nil {
			return nil, err
		}
		return []models.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch todos for %s: %w", userID, err)
	}

	var doc models.TaskDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode todos document for %s: %w", userID, err)
	}
	return doc.Todos, nil
}

// ReplaceAll overwrites the user's whole collection.
func (s *SQLiteTodoStore) ReplaceAll(ctx context.Context, userID string, tasks []models.Task) error {
	if userID == "" {
		return types.ErrNoUserID
	}
	doc := models.TaskDocument{Todos: make([]models.Task, len(tasks))}
	copy(doc.Todos, tasks)
	return s.writeDocument(ctx, userID, doc)
}

// AppendTask adds one task to the end of the user's collection inside a
// transaction, so concurrent appenders cannot drop each other's rows.
func (s *SQLiteTodoStore) AppendTask(ctx context.Context, userID string, task models.Task) error {
	if userID == "" {
		return types.ErrNoUserID
	}
	if strings.TrimSpace(task.Description) == "" {
		return types.ErrEmptyDescription
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var doc models.TaskDocument
	var raw string
	err = tx.QueryRowContext(ctx, `SELECT todos FROM user_todos WHERE user_id = ?`, userID).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		doc = models.TaskDocument{Todos: []models.Task{}}
	case err != nil:
		return fmt.Errorf("fetch todos for append: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return fmt.Errorf("decode todos document for append: %w", err)
		}
	}

	doc.Todos = append(doc.Todos, task)
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode todos document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_todos (user_id, todos, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET todos = excluded.todos, updated_at = excluded.updated_at`,
		userID, string(encoded), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write todos document: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteTodoStore) writeDocument(ctx context.Context, userID string, doc models.TaskDocument) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode todos document: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user_todos (user_id, todos, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET todos = excluded.todos, updated_at = excluded.updated_at`,
		userID, string(encoded), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write todos document for %s: %w", userID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteTodoStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
