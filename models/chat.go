package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies who authored a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one entry in a session's conversation transcript.
// Messages are append-only within a session and cleared on sign-out.
type ChatMessage struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewChatMessage creates a message with a fresh ID and current timestamp.
func NewChatMessage(role MessageRole, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
