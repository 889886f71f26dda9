// Package memory holds per-session conversational history. Sessions live only
// in process memory; a restart clears everything. That is a documented
// property of the system, not a bug.
package memory

import (
	"strings"
	"sync"
	"time"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a session.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// DefaultMaxTurns bounds a session when the store is built with no explicit cap.
const DefaultMaxTurns = 20

// Store keeps an ordered, bounded turn log per session id. Appends beyond the
// cap evict the oldest turn first. All operations on the same session are
// serialized; different sessions never contend.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	maxTurns int
}

type session struct {
	mu    sync.Mutex
	turns []Turn
}

// NewStore creates a store capping every session at maxTurns turns.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
	}
}

// lookup returns the session for id, creating it lazily.
func (s *Store) lookup(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// Append records a turn at the end of the session log.
func (s *Store) Append(sessionID string, role Role, content string) {
	sess := s.lookup(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, Turn{Role: role, Content: content, Timestamp: time.Now().UTC()})
	if len(sess.turns) > s.maxTurns {
		sess.turns = sess.turns[len(sess.turns)-s.maxTurns:]
	}
}

// Window returns up to maxTurns most recent turns in insertion order. A
// non-positive maxTurns means the full (already capped) log.
func (s *Store) Window(sessionID string, maxTurns int) []Turn {
	sess := s.lookup(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	turns := sess.turns
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear drops the session entirely.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Render formats a window as a plain transcript for prompt construction.
func Render(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, turn := range turns {
		switch turn.Role {
		case RoleUser:
			sb.WriteString("User: ")
		case RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString(string(turn.Role) + ": ")
		}
		sb.WriteString(strings.TrimSpace(turn.Content))
		sb.WriteString("\n")
	}
	return sb.String()
}
