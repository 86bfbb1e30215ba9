package notify

import (
	"context"
	"sync"
)

// Memory records messages in memory for tests.
type Memory struct {
	mu       sync.Mutex
	messages []Message

	// Err, when set, is returned from every Notify call.
	Err error
}

// NewMemory creates an in-memory notifier.
func NewMemory() *Memory {
	return &Memory{}
}

// Notify implements Notifier.
func (m *Memory) Notify(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of all recorded messages.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
