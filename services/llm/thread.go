package llm

import "sync"

// Thread is a mutable conversation history. It is safe for concurrent
// use; Snapshot returns a copy so callers never observe a mid-append
// slice.
type Thread struct {
	mu       sync.RWMutex
	messages []Message
}

// NewThread creates a thread seeded with the system prompt.
func NewThread(systemPrompt string) *Thread {
	return &Thread{
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Snapshot returns a copy of the current message history.
func (t *Thread) Snapshot() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Append records a completed user/assistant exchange. Both turns are
// committed together so a reader never sees a user turn without its
// answer.
func (t *Thread) Append(userContent, assistantContent string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages,
		Message{Role: RoleUser, Content: userContent},
		Message{Role: RoleAssistant, Content: assistantContent},
	)
}

// Len returns the number of messages, system prompt included.
func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
