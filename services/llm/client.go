package llm

import "context"

// Role constants for conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of a conversation sent to a backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams carries the optional sampling knobs a caller may set.
// Nil fields mean "use the backend default".
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// StreamCallback receives each text delta as the backend produces it.
// Returning an error aborts the stream and propagates out of ChatStream.
type StreamCallback func(delta string) error

// LLMClient defines the standard interface for any LLM backend.
//
// # Description
//
//	Chat performs a blocking chat completion over the full message
//	history and returns the assistant text. ChatStream performs the
//	same call but delivers the answer incrementally through the
//	callback; it returns only after the stream is fully drained or
//	failed. Both honor ctx cancellation.
type LLMClient interface {
	Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error)
	ChatStream(ctx context.Context, messages []Message, params GenerationParams, callback StreamCallback) error
}

// GenerationError wraps a backend failure so callers can distinguish
// LLM-side errors from their own plumbing.
type GenerationError struct {
	Op  string // operation that failed, e.g. "chat_stream"
	Err error
}

func (e *GenerationError) Error() string {
	return "llm: " + e.Op + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }
