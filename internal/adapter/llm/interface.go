package llm

import "context"

// Client defines the interface for generation API operations.
type Client interface {
	// CreateChatCompletionStream sends a streaming chat completion request.
	// The callback is called for each chunk received, in yield order. The
	// stream is not restartable; re-invocation re-queries the model.
	CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest, callback StreamCallback) error
}

// Ensure HTTPClient implements the Client interface.
var _ Client = (*HTTPClient)(nil)
