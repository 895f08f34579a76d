package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/domvito55/skillsladder-api/internal/adapter/history"
	"github.com/domvito55/skillsladder-api/internal/adapter/llm"
	"github.com/domvito55/skillsladder-api/internal/domain"
)

// ideationSystemPrompt frames every ideation chat turn.
const ideationSystemPrompt = "Answer to the best of your ability. Use Markdown for formatting."

// DefaultSessionName identifies the session when the caller does not name one.
const DefaultSessionName = "Test"

// FragmentWriter receives each generated text fragment as soon as it is
// available. Returning an error stops the stream.
type FragmentWriter func(fragment string) error

// RunIdeationChat runs one chat exchange: it loads the session's prior
// messages, streams the model's reply fragment by fragment through write, and
// once the stream ends persists the human/ai turn pair back to the session.
//
// History retrieval degrades to an empty context on any failure so the chat
// endpoint stays available when the store is not. Persistence is best-effort:
// by the time it runs the reply has already been delivered and cannot be
// retracted, so failures are logged, never surfaced. A client disconnect
// mid-stream still persists whatever was accumulated, keeping the store in
// step with what the user actually saw.
func (s *Service) RunIdeationChat(ctx context.Context, input, sessionName string, write FragmentWriter) error {
	if sessionName == "" {
		sessionName = DefaultSessionName
	}

	prior, sessionID, err := s.history.Load(ctx, sessionName)
	if err != nil {
		if errors.Is(err, history.ErrSessionNotFound) {
			log.Printf("chat history %q not found, starting a fresh session", sessionName)
		} else {
			log.Printf("WARN: chat history fetch for %q failed, continuing with empty history: %v", sessionName, err)
		}
		prior, sessionID = nil, ""
	}

	req := s.buildIdeationRequest(prior, input)

	var reply strings.Builder
	streamErr := s.llmClient.CreateChatCompletionStream(ctx, req, func(chunk *llm.StreamChunk) error {
		fragment := chunk.Content()
		if fragment == "" {
			return nil
		}
		reply.WriteString(fragment)
		return write(fragment)
	})

	// Nothing generated and nothing delivered: persist nothing for this
	// exchange.
	if streamErr != nil && reply.Len() == 0 {
		return streamErr
	}

	s.persistExchange(ctx, sessionName, sessionID, input, reply.String())
	return streamErr
}

// buildIdeationRequest assembles the model context: system prompt, prior
// turns in conversation order, then the new human input.
func (s *Service) buildIdeationRequest(prior []domain.Message, input string) *llm.ChatCompletionRequest {
	messages := make([]llm.ChatMessage, 0, len(prior)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: ideationSystemPrompt})
	for _, msg := range prior {
		role := "user"
		if msg.Type == domain.MessageTypeAI {
			role = "assistant"
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: input})

	temperature := s.config.ChatTemperature
	maxTokens := s.config.ChatMaxTokens
	return &llm.ChatCompletionRequest{
		Model:       s.config.ChatModel,
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
}

// persistExchange appends the completed human/ai turn pair to the session,
// creating the session document on first write. It runs on a context detached
// from the request so a disconnected caller does not abort persistence.
func (s *Service) persistExchange(ctx context.Context, sessionName, sessionID, input, reply string) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.HistoryTimeout)
	defer cancel()

	if sessionID == "" {
		created, err := s.history.CreateSession(persistCtx, domain.NewChatHistory(sessionName))
		if err != nil {
			log.Printf("ERROR: failed to create session %q, chat exchange not saved: %v", sessionName, err)
			return
		}
		sessionID = created.ID
	}

	pair := []domain.Message{
		{Type: domain.MessageTypeHuman, Content: input},
		{Type: domain.MessageTypeAI, Content: reply},
	}
	if err := s.history.Push(persistCtx, sessionID, pair); err != nil {
		log.Printf("ERROR: failed to save chat exchange for session %s: %v", sessionID, err)
	}
}
