package models

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Task represents one entry in a user's todo list.
type Task struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Description string   `json:"description" yaml:"description" validate:"required,min=1"`
	Completed   bool     `json:"completed" yaml:"completed"`
	CreatedAt   FlexTime `json:"createdAt" yaml:"createdAt"`
}

// TaskDocument is the wholesale per-user collection. It is always read and
// written as a unit; a mutation never touches individual entries in place.
type TaskDocument struct {
	Todos []Task `json:"todos" yaml:"todos" validate:"dive"`
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewTaskID returns a time-based identifier that is strictly increasing
// within this process, so back-to-back creations in the same millisecond
// cannot collide.
func NewTaskID() string {
	idMu.Lock()
	defer idMu.Unlock()
	now := time.Now().UnixMilli()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return strconv.FormatInt(now, 10)
}

// NewTask creates a pending Task with a fresh ID and creation timestamp.
func NewTask(description string) Task {
	return Task{
		ID:          NewTaskID(),
		Description: description,
		Completed:   false,
		CreatedAt:   Now(),
	}
}
