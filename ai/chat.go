package ai

import (
	"context"
	"sync"
)

// Chat is an ongoing conversation with the model. The full message history,
// starting with the system instruction, is replayed on every request so the
// model remembers prior turns. A Chat is owned by exactly one session; Send
// is still guarded by a mutex so a misbehaving caller cannot interleave turns.
type Chat struct {
	svc         *Service
	temperature float64

	mu       sync.Mutex
	messages []Message
}

// NewChat creates a conversation seeded with the given system instruction.
func (s *Service) NewChat(systemInstruction string, temperature float64) *Chat {
	return &Chat{
		svc:         s,
		temperature: temperature,
		messages: []Message{
			{Role: "system", Content: systemInstruction},
		},
	}
}

// Send appends the user message to the conversation, requests a completion
// over the whole history, records the reply and returns it. On error the
// history is left unchanged so the turn can be retried.
func (c *Chat) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]Message, len(c.messages), len(c.messages)+2)
	copy(messages, c.messages)
	messages = append(messages, Message{Role: "user", Content: text})

	reply, err := c.svc.generate(ctx, messages, c.temperature)
	if err != nil {
		return "", err
	}

	c.messages = append(messages, Message{Role: "assistant", Content: reply})
	return reply, nil
}

// Len returns the number of messages in the conversation, including the
// system instruction.
func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
