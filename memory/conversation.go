package memory

import (
	"fmt"
	"sync"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultGreeting seeds a fresh conversation.
const DefaultGreeting = "Hi, I am a Search engine chatbot who can search the Web!!"

// Turn is a single chat message. Treat it as immutable once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn returns a turn authored by the user.
func UserTurn(content string) Turn { return Turn{Role: RoleUser, Content: content} }

// AssistantTurn returns a turn authored by the assistant.
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }

// Conversation is an ordered, append-only log of turns.
// The zero value is an empty conversation ready for Initialize.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewConversation returns a conversation seeded with greeting.
func NewConversation(greeting string) *Conversation {
	c := &Conversation{}
	c.Initialize(greeting)
	return c
}

// Initialize seeds the log with one assistant greeting if it is empty.
// Calling it again on a non-empty log is a no-op.
func (c *Conversation) Initialize(greeting string) {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.turns) == 0 {
		c.turns = append(c.turns, AssistantTurn(greeting))
	}
}

// Append adds t to the end of the log.
func (c *Conversation) Append(t Turn) error {
	switch t.Role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("memory: unknown role %q", t.Role)
	}
	c.mu.Lock()
	c.turns = append(c.turns, t)
	c.mu.Unlock()
	return nil
}

// All returns a copy of the log in chronological order.
func (c *Conversation) All() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len reports the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}
