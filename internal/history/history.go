package history

import (
	"fmt"
	"sync"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Message is one turn of the conversation. Messages are never edited after
// they have been appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("unknown role %q", m.Role)
	}
	return nil
}

// Transcript is the ordered list of turns of one session.
type Transcript struct {
	mu   sync.RWMutex
	msgs []Message
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) AppendUser(content string) Message {
	return t.append(Message{Role: RoleUser, Content: content})
}

func (t *Transcript) AppendAssistant(content string) Message {
	return t.append(Message{Role: RoleAssistant, Content: content})
}

func (t *Transcript) append(msg Message) Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, msg)
	return msg
}

// Replace swaps the whole transcript for msgs. The slice is copied.
func (t *Transcript) Replace(msgs []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append([]Message(nil), msgs...)
}

func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = nil
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}

// Messages returns a copy of all turns in conversation order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}
