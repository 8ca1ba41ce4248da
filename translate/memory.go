package translate

import "sync"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a session conversation.
type Message struct {
	Role    string
	Content string
}

// Memory keeps the most recent messages of each session.
type Memory struct {
	mu       sync.Mutex
	window   int
	sessions map[string][]Message
}

// NewMemory returns a Memory holding at most window messages per session.
// A window of zero keeps nothing.
func NewMemory(window int) *Memory {
	return &Memory{window: window, sessions: make(map[string][]Message)}
}

// History returns a copy of the messages kept for sessionID, oldest first.
func (m *Memory) History(sessionID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.sessions[sessionID]
	if len(msgs) == 0 {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Append records msgs for sessionID and drops the oldest messages beyond the
// window. The kept history always starts with a user turn.
func (m *Memory) Append(sessionID string, msgs ...Message) {
	if m.window <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := append(m.sessions[sessionID], msgs...)
	if len(all) > m.window {
		all = all[len(all)-m.window:]
		for len(all) > 0 && all[0].Role != RoleUser {
			all = all[1:]
		}
		all = append([]Message(nil), all...)
	}
	m.sessions[sessionID] = all
}
