package store

import (
	"context"

	"github.com/josephgoksu/TaskTalk/models"
)

// TodoStore defines the contract for per-user todo persistence.
//
// The update model is deliberately coarse: a user's collection is one
// document, fetched and replaced wholesale. Higher-level mutations
// (status change, edit, delete) are expressed as fetch-then-replace;
// AppendTask exists as an additive fast path for append-only inserts.
type TodoStore interface {
	// Initialize configures the store with backend-specific settings
	// (data file path, format). It must be called before any other
	// operation.
	Initialize(config map[string]string) error

	// FetchAll returns the user's full ordered collection. A user with no
	// document yet gets an empty collection created on first access.
	FetchAll(ctx context.Context, userID string) ([]models.Task, error)

	// ReplaceAll overwrites the user's whole collection with tasks.
	ReplaceAll(ctx context.Context, userID string, tasks []models.Task) error

	// AppendTask adds one task to the end of the user's collection without
	// the caller having to fetch it first.
	AppendTask(ctx context.Context, userID string, task models.Task) error

	// Close releases any resources held by the store.
	Close() error
}

const (
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
)
