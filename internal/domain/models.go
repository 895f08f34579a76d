// Package domain defines the core domain models for the Skills Ladder API.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// MessageType identifies who produced a message in a chat session.
type MessageType string

const (
	MessageTypeHuman MessageType = "human"
	MessageTypeAI    MessageType = "ai"
)

// Validate checks that the message type is one of the known values.
func (t MessageType) Validate() error {
	switch t {
	case MessageTypeHuman, MessageTypeAI:
		return nil
	}
	return fmt.Errorf("invalid message type: %q", string(t))
}

// Message represents a single turn in a chat session. Messages are immutable
// once created; ordering within a session is conversation order.
type Message struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

// Validate checks the message shape at the store boundary.
func (m *Message) Validate() error {
	if err := m.Type.Validate(); err != nil {
		return err
	}
	return nil
}

// ChatHistory represents a persisted chat session: an id, a human-readable
// session name, and the ordered list of messages exchanged so far.
type ChatHistory struct {
	ID          string    `json:"_id"`
	SessionName string    `json:"sessionName"`
	Messages    []Message `json:"messages"`
}

// NewChatHistory creates an empty chat history with a fresh id.
func NewChatHistory(sessionName string) *ChatHistory {
	return &ChatHistory{
		ID:          uuid.New().String(),
		SessionName: sessionName,
		Messages:    []Message{},
	}
}

// Validate checks the session document shape at the store boundary.
func (h *ChatHistory) Validate() error {
	if h.SessionName == "" {
		return fmt.Errorf("sessionName is required")
	}
	for i := range h.Messages {
		if err := h.Messages[i].Validate(); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	return nil
}
