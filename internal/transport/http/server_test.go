package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/domvito55/skillsladder-api/config"
	"github.com/domvito55/skillsladder-api/internal/adapter/history"
	"github.com/domvito55/skillsladder-api/internal/adapter/llm"
	"github.com/domvito55/skillsladder-api/internal/domain"
	"github.com/domvito55/skillsladder-api/internal/service"
	transport "github.com/domvito55/skillsladder-api/internal/transport/http"
	"github.com/domvito55/skillsladder-api/policy"
	"github.com/domvito55/skillsladder-api/tests/helpers"
)

// scriptedLLM plays back fixed fragments and counts invocations.
type scriptedLLM struct {
	fragments []string
	calls     int
	err       error
}

func (s *scriptedLLM) CreateChatCompletionStream(ctx context.Context, req *llm.ChatCompletionRequest, callback llm.StreamCallback) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	for _, fragment := range s.fragments {
		chunk := &llm.StreamChunk{
			Choices: []llm.Choice{{Delta: &llm.ChatMessage{Role: "assistant", Content: fragment}}},
		}
		if err := callback(chunk); err != nil {
			return err
		}
	}
	return nil
}

// newTestAPI boots the full stack behind a real listener. The chat-history
// client is pointed back at the server itself, so ideation persistence flows
// through the same HTTP handlers under test.
func newTestAPI(t *testing.T, llmClient llm.Client, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	var inner http.Handler
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		ChatModel:          "anthropic.claude-3-haiku-20240307-v1:0",
		ChatMaxTokens:      500,
		ChatTemperature:    0.7,
		PlanMaxTokens:      5000,
		PlanTemperature:    0.7,
		HistoryBaseURL:     server.URL,
		HistoryCollection:  "chatHistories",
		HistorySearchField: "sessionName",
		HistoryTimeout:     time.Second,
	}
	if mutate != nil {
		mutate(cfg)
	}

	historyClient := history.NewClient(cfg.HistoryBaseURL, cfg.HistoryCollection, cfg.HistorySearchField, cfg.HistoryTimeout)
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to build policy engine: %v", err)
	}

	svc := service.New(helpers.NewTestSQLiteStore(t), historyClient, llmClient, engine, cfg)
	inner = transport.NewServer(svc, cfg)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, respBody
}

func TestCheck(t *testing.T) {
	server := newTestAPI(t, &scriptedLLM{}, nil)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/check", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Welcome to the Skills Ladder API!")
}

func TestChatHistoryCRUD(t *testing.T) {
	server := newTestAPI(t, &scriptedLLM{}, nil)
	base := server.URL + "/api/chathistory/chatHistories"

	// Create
	resp, body := doJSON(t, http.MethodPost, base, map[string]interface{}{
		"sessionName": "Test",
		"messages": []map[string]string{
			{"type": "human", "content": "Hello, how are you?"},
			{"type": "ai", "content": "I'm doing well, thank you for asking!"},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Message domain.ChatHistory `json:"message"`
		Code    int                `json:"code"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	assert.NotEmpty(t, created.Message.ID)
	assert.Equal(t, http.StatusCreated, created.Code)

	// Duplicate name
	resp, _ = doJSON(t, http.MethodPost, base, map[string]interface{}{"sessionName": "Test"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Get by sessionName
	resp, body = doJSON(t, http.MethodGet, base+"/sessionName/Test", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched struct {
		Message domain.ChatHistory `json:"message"`
	}
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("failed to decode get response: %v", err)
	}
	assert.Equal(t, created.Message.ID, fetched.Message.ID)
	assert.Len(t, fetched.Message.Messages, 2)

	// Get by _id
	resp, _ = doJSON(t, http.MethodGet, base+"/_id/"+created.Message.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Missing document
	resp, body = doJSON(t, http.MethodGet, base+"/sessionName/doesNotExist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Chat history not found")

	// Unqueryable field
	resp, _ = doJSON(t, http.MethodGet, base+"/password/x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Update
	resp, _ = doJSON(t, http.MethodPut, base+"/sessionName/Test", map[string]interface{}{
		"sessionName": "Renamed",
		"messages":    []map[string]string{{"type": "ai", "content": "replaced"}},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, base+"/sessionName/Renamed", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("failed to decode get response: %v", err)
	}
	assert.Len(t, fetched.Message.Messages, 1)

	// Update of a missing document
	resp, _ = doJSON(t, http.MethodPut, base+"/sessionName/doesNotExist", map[string]interface{}{"sessionName": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Delete
	resp, _ = doJSON(t, http.MethodDelete, base+"/sessionName/Renamed", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, base+"/sessionName/Renamed", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, base+"/sessionName/Renamed", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateChatHistoryRejectsInvalidMessageType(t *testing.T) {
	server := newTestAPI(t, &scriptedLLM{}, nil)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/chathistory/chatHistories", map[string]interface{}{
		"sessionName": "Test",
		"messages":    []map[string]string{{"type": "robot", "content": "beep"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMessagePushAndPop(t *testing.T) {
	server := newTestAPI(t, &scriptedLLM{}, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/chathistory/chatHistories",
		map[string]interface{}{"sessionName": "Test"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Message domain.ChatHistory `json:"message"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	sessionID := created.Message.ID

	pushURL := server.URL + "/api/messages/push/chatHistories/" + sessionID
	popURL := server.URL + "/api/messages/pop/chatHistories/" + sessionID

	// Push a turn pair.
	resp, body = doJSON(t, http.MethodPost, pushURL, []map[string]string{
		{"type": "human", "content": "hi"},
		{"type": "ai", "content": "hello"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(body), "Messages pushed successfully")

	// The document now lists the messages in push order.
	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/chathistory/chatHistories/_id/"+sessionID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched struct {
		Message domain.ChatHistory `json:"message"`
	}
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("failed to decode get response: %v", err)
	}
	if assert.Len(t, fetched.Message.Messages, 2) {
		assert.Equal(t, "hi", fetched.Message.Messages[0].Content)
		assert.Equal(t, "hello", fetched.Message.Messages[1].Content)
	}

	// Pop returns the most recently pushed message first.
	resp, body = doJSON(t, http.MethodDelete, popURL, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var popped struct {
		Message domain.Message `json:"message"`
	}
	if err := json.Unmarshal(body, &popped); err != nil {
		t.Fatalf("failed to decode pop response: %v", err)
	}
	assert.Equal(t, "hello", popped.Message.Content)

	resp, body = doJSON(t, http.MethodDelete, popURL, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	if err := json.Unmarshal(body, &popped); err != nil {
		t.Fatalf("failed to decode pop response: %v", err)
	}
	assert.Equal(t, "hi", popped.Message.Content)

	// Popping an empty list.
	resp, body = doJSON(t, http.MethodDelete, popURL, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "No message to pop")

	// Push validation.
	resp, body = doJSON(t, http.MethodPost, pushURL, []map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "No messages to push")

	resp, _ = doJSON(t, http.MethodPost, pushURL, []map[string]string{{"type": "robot", "content": "beep"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Unknown session.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/messages/push/chatHistories/nope",
		[]map[string]string{{"type": "human", "content": "hi"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Chat session not found")
}

func TestCollectionPolicyDenies(t *testing.T) {
	server := newTestAPI(t, &scriptedLLM{}, nil)

	for _, collection := range []string{"_internal", "users"} {
		resp, body := doJSON(t, http.MethodPost, server.URL+"/api/chathistory/"+collection,
			map[string]interface{}{"sessionName": "Test"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "collection %q", collection)
		assert.Contains(t, string(body), "Access to collection denied")

		resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/chathistory/"+collection+"/sessionName/Test", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "collection %q", collection)
	}
}

func TestIdeationChatStreamsAndPersists(t *testing.T) {
	server := newTestAPI(t, llm.NewMockClient(), nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/ideation/", map[string]string{
		"message":     "What should I build?",
		"sessionName": "brainstorm",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	reply := string(body)
	assert.Contains(t, reply, "What should I build?")

	// The exchange was persisted through the server's own history API.
	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/chathistory/chatHistories/sessionName/brainstorm", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched struct {
		Message domain.ChatHistory `json:"message"`
	}
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("failed to decode get response: %v", err)
	}
	if assert.Len(t, fetched.Message.Messages, 2) {
		assert.Equal(t, domain.MessageTypeHuman, fetched.Message.Messages[0].Type)
		assert.Equal(t, "What should I build?", fetched.Message.Messages[0].Content)
		assert.Equal(t, domain.MessageTypeAI, fetched.Message.Messages[1].Type)
		assert.Equal(t, reply, fetched.Message.Messages[1].Content)
	}
}

func TestIdeationChatEmitsErrorFragment(t *testing.T) {
	server := newTestAPI(t, &scriptedLLM{err: fmt.Errorf("generation backend unavailable")}, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/ideation/", map[string]string{
		"message": "hi",
	})
	// The stream never drops the connection; failures arrive in-band.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "Error: "), "body: %q", string(body))
}

func TestGenerateBusinessPlanEndpoint(t *testing.T) {
	llmStub := &scriptedLLM{fragments: []string{"# Title\n", "## Executive Summary\n"}}
	server := newTestAPI(t, llmStub, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/pagebp/", map[string]string{
		"businessInfo": "A bakery in Toronto",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "# Title\n## Executive Summary\n", string(body))
	assert.Equal(t, 1, llmStub.calls)
}

func TestGenerateBusinessPlanRequiresBusinessInfo(t *testing.T) {
	llmStub := &scriptedLLM{fragments: []string{"never"}}
	server := newTestAPI(t, llmStub, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/pagebp/", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Missing 'businessInfo' in request data")
	assert.Equal(t, 0, llmStub.calls)
}

func TestBearerAuth(t *testing.T) {
	server := newTestAPI(t, &scriptedLLM{}, func(cfg *config.Config) {
		cfg.AuthEnabled = true
		cfg.AuthToken = "secret"
	})

	// The liveness probe stays open.
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/check", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Everything else requires the token.
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/chathistory/chatHistories/sessionName/Test", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/chathistory/chatHistories/sessionName/Test", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer authed.Body.Close()
	assert.Equal(t, http.StatusNotFound, authed.StatusCode)
}
