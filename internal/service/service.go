// Package service implements the business logic of the Skills Ladder API.
package service

import (
	"context"

	"github.com/domvito55/skillsladder-api/config"
	"github.com/domvito55/skillsladder-api/internal/adapter/history"
	"github.com/domvito55/skillsladder-api/internal/adapter/llm"
	"github.com/domvito55/skillsladder-api/internal/store"
	"github.com/domvito55/skillsladder-api/policy"
)

// Service coordinates the store, the chat-history client, the generation
// client and the policy engine. It is constructed once in main and injected
// into the transport layer.
type Service struct {
	store        store.SessionStore
	history      *history.Client
	llmClient    llm.Client
	policyEngine *policy.Engine
	config       *config.Config
}

// New creates a new service.
func New(st store.SessionStore, historyClient *history.Client, llmClient llm.Client, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:        st,
		history:      historyClient,
		llmClient:    llmClient,
		policyEngine: policyEngine,
		config:       cfg,
	}
}

// AllowCollection reports whether the collection-access policy permits the
// given operation on the collection.
func (s *Service) AllowCollection(ctx context.Context, collection, operation string) (bool, error) {
	return s.policyEngine.Allow(ctx, policy.Input{Collection: collection, Operation: operation})
}
