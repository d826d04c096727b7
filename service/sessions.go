package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionKind distinguishes the two conversation flavors.
type SessionKind string

const (
	KindDBQuery      SessionKind = "db_query"
	KindFileAnalysis SessionKind = "file_analysis"
)

// Conversation is the stateful model chat handle a session owns. Exactly one
// request at a time talks to a given conversation.
type Conversation interface {
	Send(ctx context.Context, message string) (string, error)
}

// ChatFactory creates a fresh conversation seeded with a system instruction.
type ChatFactory func(systemInstruction string, temperature float64) Conversation

type session struct {
	kind     SessionKind
	chat     Conversation
	lastUsed time.Time
}

// SessionStore maps session ids to live model conversations. All access goes
// through the four operations; the map itself is never exposed. Sessions
// expire after a sliding TTL enforced by a janitor goroutine, since nothing
// else ever removes an individual session.
type SessionStore struct {
	newChat     ChatFactory
	temperature float64
	ttl         time.Duration

	mu       sync.Mutex
	sessions map[string]*session

	stopJanitor chan struct{}
	stopOnce    sync.Once
}

func NewSessionStore(newChat ChatFactory, ttl time.Duration) *SessionStore {
	s := &SessionStore{
		newChat:     newChat,
		temperature: 0.2,
		ttl:         ttl,
		sessions:    make(map[string]*session),
		stopJanitor: make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

// GetOrCreate returns the conversation for sessionID, minting a new session
// when the id is empty or unknown. The instruction factory is only invoked
// when a session is minted, and it runs inside the store's critical section:
// ClearAll holds the same lock, so a session registered after a switch's
// ClearAll derives its instruction from the post-swap target, never the old
// one. The returned id always identifies a live session.
func (s *SessionStore) GetOrCreate(sessionID string, kind SessionKind, instruction func() string) (string, Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if sess, ok := s.sessions[sessionID]; ok {
			sess.lastUsed = time.Now()
			return sessionID, sess.chat
		}
	}

	sessionID = uuid.New().String()
	sess := &session{
		kind:     kind,
		chat:     s.newChat(instruction(), s.temperature),
		lastUsed: time.Now(),
	}
	s.sessions[sessionID] = sess
	log.Printf("[SESSIONS] Created new %s session: %s", kind, shortID(sessionID))
	return sessionID, sess.chat
}

// Clear replaces the session's conversation with a freshly seeded one under
// the same id. The session's kind never changes. Returns false when the id is
// unknown.
func (s *SessionStore) Clear(sessionID string, instruction string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		log.Printf("[SESSIONS] Session not found for clearing: %s", shortID(sessionID))
		return false
	}

	sess.chat = s.newChat(instruction, s.temperature)
	sess.lastUsed = time.Now()
	log.Printf("[SESSIONS] Cleared %s session: %s", sess.kind, shortID(sessionID))
	return true
}

// Kind returns the session's kind, or false when the id is unknown.
func (s *SessionStore) Kind(sessionID string) (SessionKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", false
	}
	return sess.kind, true
}

// ClearAll empties the store and returns the number of sessions removed.
// Used by the database switch: sessions are invalidated, not migrated.
func (s *SessionStore) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.sessions)
	s.sessions = make(map[string]*session)
	log.Printf("[SESSIONS] Cleared all sessions: %d removed", count)
	return count
}

// Counts is a diagnostic snapshot of the store.
func (s *SessionStore) Counts() (total int, byKind map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind = make(map[string]int)
	for _, sess := range s.sessions {
		byKind[string(sess.kind)]++
	}
	return len(s.sessions), byKind
}

// Stop terminates the janitor goroutine.
func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopJanitor) })
}

func (s *SessionStore) janitor() {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stopJanitor:
			return
		}
	}
}

// sweep removes sessions idle longer than the TTL.
func (s *SessionStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[SESSIONS] Expired %d idle sessions", removed)
	}
	return removed
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
