package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvLLMMode is the environment variable name for mode selection.
	EnvLLMMode = "LLM_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewClient creates a generation client based on the LLM_MODE environment
// variable. If LLM_MODE=MOCK, returns a MockClient; otherwise returns a real
// HTTPClient.
func NewClient(baseURL, apiKey string, timeout time.Duration) Client {
	if os.Getenv(EnvLLMMode) == ModeMock {
		log.Println("LLM_MODE=MOCK detected, using mock generation client")
		return NewMockClient()
	}

	return NewHTTPClient(baseURL, apiKey, timeout)
}
