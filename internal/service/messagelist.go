package service

import (
	"context"
	"fmt"

	"github.com/domvito55/skillsladder-api/internal/domain"
)

// PushMessages appends messages to the tail of a chat session's message list,
// in call order.
func (s *Service) PushMessages(ctx context.Context, collection, sessionID string, msgs []domain.Message) error {
	if _, err := s.store.PushMessages(ctx, collection, sessionID, msgs); err != nil {
		return fmt.Errorf("failed to push messages: %w", err)
	}
	return nil
}

// PopMessage removes and returns the last message of a chat session's message
// list. Returns nil when the list is empty.
func (s *Service) PopMessage(ctx context.Context, collection, sessionID string) (*domain.Message, error) {
	msg, err := s.store.PopLastMessage(ctx, collection, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to pop message: %w", err)
	}
	return msg, nil
}
