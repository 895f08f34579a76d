package service

import (
	"context"
	"fmt"

	"github.com/domvito55/skillsladder-api/internal/domain"
)

// CreateChatHistory stores a new chat session document.
func (s *Service) CreateChatHistory(ctx context.Context, collection string, doc *domain.ChatHistory) (*domain.ChatHistory, error) {
	created, err := s.store.Insert(ctx, collection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat history: %w", err)
	}
	return created, nil
}

// GetChatHistoryByField retrieves a chat session document by a field and its
// value.
func (s *Service) GetChatHistoryByField(ctx context.Context, collection, field, value string) (*domain.ChatHistory, error) {
	return s.store.FindByField(ctx, collection, field, value)
}

// UpdateChatHistory replaces the chat session document matching field = value.
func (s *Service) UpdateChatHistory(ctx context.Context, collection, field, value string, doc *domain.ChatHistory) (bool, error) {
	updated, err := s.store.ReplaceByField(ctx, collection, field, value, doc)
	if err != nil {
		return false, fmt.Errorf("failed to update chat history: %w", err)
	}
	return updated, nil
}

// DeleteChatHistory deletes the chat session document matching field = value.
func (s *Service) DeleteChatHistory(ctx context.Context, collection, field, value string) (bool, error) {
	deleted, err := s.store.DeleteByField(ctx, collection, field, value)
	if err != nil {
		return false, fmt.Errorf("failed to delete chat history: %w", err)
	}
	return deleted, nil
}
