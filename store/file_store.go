package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/josephgoksu/TaskTalk/models"
	"github.com/josephgoksu/TaskTalk/types"
	yaml "gopkg.in/yaml.v3"
)

const (
	defaultDataFile   = "todos.json"
	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
)

// fileData is the on-disk shape: every user's document keyed by identity.
type fileData struct {
	Users map[string]models.TaskDocument `json:"users" yaml:"users"`
}

// FileTodoStore implements TodoStore with a single data file holding all
// user documents. It supports JSON and YAML formats and uses file-level
// locking so concurrent processes cannot interleave read-modify-write
// cycles.
type FileTodoStore struct {
	filePath string
	format   string
	flk      *flock.Flock
}

// NewFileTodoStore creates a new instance. Initialize must be called
// separately.
func NewFileTodoStore() *FileTodoStore {
	return &FileTodoStore{}
}

// Initialize configures the store. It expects a 'dataFile' key with the path
// to the data file and an optional 'dataFileFormat' of json or yaml. The
// file and its directory are created if missing.
func (s *FileTodoStore) Initialize(config map[string]string) error {
	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultDataFile
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFileFormat: %s. Supported formats are json, yaml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if s.filePath == defaultDataFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s.flk = flock.New(s.filePath)

	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("failed to acquire initial lock for %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	_, err := s.loadInternal()
	return err
}

// loadInternal reads and decodes the data file. The caller must hold the lock.
func (s *FileTodoStore) loadInternal() (fileData, error) {
	data := fileData{Users: make(map[string]models.TaskDocument)}

	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if f, createErr := os.OpenFile(s.filePath, os.O_CREATE|os.O_RDWR, 0o644); createErr != nil {
				return data, fmt.Errorf("failed to create data file %s: %w", s.filePath, createErr)
			} else {
				_ = f.Close()
			}
			return data, nil
		}
		return data, fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	if len(raw) == 0 {
		return data, nil
	}

	switch s.format {
	case formatJSON:
		if err := json.Unmarshal(raw, &data); err != nil {
			return data, fmt.Errorf("failed to unmarshal JSON from %s: %w", s.filePath, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return data, fmt.Errorf("failed to unmarshal YAML from %s: %w", s.filePath, err)
		}
	default:
		return data, fmt.Errorf("unsupported data format for loading: %s", s.format)
	}

	if data.Users == nil {
		data.Users = make(map[string]models.TaskDocument)
	}
	return data, nil
}

// saveInternal writes the data file atomically via a temp file and rename.
// The caller must hold the lock.
func (s *FileTodoStore) saveInternal(data fileData) error {
	var marshaled []byte
	var err error

	switch s.format {
	case formatJSON:
		marshaled, err = json.MarshalIndent(data, "", "  ")
	case formatYAML:
		marshaled, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("unsupported data format for saving: %s", s.format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal documents to %s: %w", s.format, err)
	}

	tempFilePath := s.filePath + ".tmp"
	defer func() { _ = os.Remove(tempFilePath) }()

	if err := os.WriteFile(tempFilePath, marshaled, 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary data file %s: %w", tempFilePath, err)
	}
	if err := os.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tempFilePath, s.filePath, err)
	}
	return nil
}

// FetchAll returns the user's collection, creating an empty document on
// first access.
func (s *FileTodoStore) FetchAll(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return nil, types.ErrNoUserID
	}
	if err := s.flk.Lock(); err != nil {
		return nil, fmt.Errorf("could not lock file for fetch: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := s.loadInternal()
	if err != nil {
		return nil, err
	}

	doc, ok := data.Users[userID]
	if !ok {
		data.Users[userID] = models.TaskDocument{Todos: []models.Task{}}
		if err := s.saveInternal(data); err != nil {
			return nil, err
		}
		return []models.Task{}, nil
	}

	out := make([]models.Task, len(doc.Todos))
	copy(out, doc.Todos)
	return out, nil
}

// ReplaceAll overwrites the user's whole collection.
func (s *FileTodoStore) ReplaceAll(ctx context.Context, userID string, tasks []models.Task) error {
	if userID == "" {
		return types.ErrNoUserID
	}
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for replace: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := s.loadInternal()
	if err != nil {
		return err
	}

	doc := models.TaskDocument{Todos: make([]models.Task, len(tasks))}
	copy(doc.Todos, tasks)
	data.Users[userID] = doc
	return s.saveInternal(data)
}

// AppendTask adds one task to the end of the user's collection.
func (s *FileTodoStore) AppendTask(ctx context.Context, userID string, task models.Task) error {
	if userID == "" {
		return types.ErrNoUserID
	}
	if strings.TrimSpace(task.Description) == "" {
		return types.ErrEmptyDescription
	}
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for append: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := s.loadInternal()
	if err != nil {
		return err
	}

	doc := data.Users[userID]
	doc.Todos = append(doc.Todos, task)
	data.Users[userID] = doc
	return s.saveInternal(data)
}

// Close releases the file lock if held.
func (s *FileTodoStore) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}
