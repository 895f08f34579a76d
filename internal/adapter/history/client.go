// Package history provides the HTTP client for the chat-history service. The
// chat orchestrator persists and retrieves message sequences through this
// client rather than touching the store directly, so history can be served by
// this process or by a remote deployment behind the same API.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/domvito55/skillsladder-api/internal/domain"
)

// ErrSessionNotFound is returned when no session matches the lookup value.
// Callers can distinguish a missing session from a transport failure.
var ErrSessionNotFound = errors.New("session not found")

// Client is the chat-history service client.
type Client struct {
	baseURL     string
	collection  string
	searchField string
	httpClient  *http.Client
}

// NewClient creates a new chat-history client. The timeout bounds every
// history call; a slow store degrades to empty history instead of stalling
// the chat stream.
func NewClient(baseURL, collection, searchField string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		collection:  collection,
		searchField: searchField,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Load retrieves the ordered message sequence for the session identified by
// fieldValue. Returns the messages in conversation order along with the
// session's document id.
func (c *Client) Load(ctx context.Context, fieldValue string) ([]domain.Message, string, error) {
	endpoint := fmt.Sprintf("%s/api/chathistory/%s/%s/%s",
		c.baseURL, url.PathEscape(c.collection), url.PathEscape(c.searchField), url.PathEscape(fieldValue))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch chat history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("chat history service error [%d]: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Message domain.ChatHistory `json:"message"`
		Code    int                `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, "", fmt.Errorf("failed to decode chat history: %w", err)
	}
	if envelope.Message.ID == "" {
		return nil, "", fmt.Errorf("malformed chat history document: missing _id")
	}

	return envelope.Message.Messages, envelope.Message.ID, nil
}

// CreateSession creates a new session document and returns it as persisted.
func (c *Client) CreateSession(ctx context.Context, doc *domain.ChatHistory) (*domain.ChatHistory, error) {
	endpoint := fmt.Sprintf("%s/api/chathistory/%s", c.baseURL, url.PathEscape(c.collection))

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chat history service error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Message domain.ChatHistory `json:"message"`
		Code    int                `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode created session: %w", err)
	}
	return &envelope.Message, nil
}

// Push appends messages to the tail of the session's message list, in call
// order.
func (c *Client) Push(ctx context.Context, sessionID string, msgs []domain.Message) error {
	endpoint := fmt.Sprintf("%s/api/messages/push/%s/%s",
		c.baseURL, url.PathEscape(c.collection), url.PathEscape(sessionID))

	body, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("message list service error [%d]: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// PopLast removes and returns the last message of the session's message list.
func (c *Client) PopLast(ctx context.Context, sessionID string) (*domain.Message, error) {
	endpoint := fmt.Sprintf("%s/api/messages/pop/%s/%s",
		c.baseURL, url.PathEscape(c.collection), url.PathEscape(sessionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to pop message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("message list service error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Message domain.Message `json:"message"`
		Code    int            `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode popped message: %w", err)
	}
	return &envelope.Message, nil
}
