// Package session holds per-user conversational state: the hydrated resume
// context snapshot and the working roadmap copy that natural-language edits
// mutate. Sessions are process-local and created lazily on first use; there
// is no eviction, so state lives for the lifetime of the process.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/types"
	"golang.org/x/sync/semaphore"
)

// Session is one user's conversational working memory. The working roadmap
// is only ever replaced wholesale, never patched field by field, so readers
// never observe a half-applied edit.
type Session struct {
	mu sync.RWMutex

	// turn serializes conversational turns for this user. Weight 1: a second
	// send waits until the in-flight turn completes or its context expires.
	turn *semaphore.Weighted

	hydrated    bool
	snapshot    types.ContextSnapshot
	working     types.Roadmap
	workingGoal string
}

func newSession() *Session {
	return &Session{turn: semaphore.NewWeighted(1)}
}

// BeginTurn acquires the turn lock, blocking until the previous turn for this
// user finishes or ctx expires. Turns for one user are strictly serialized.
func (s *Session) BeginTurn(ctx context.Context) error {
	return s.turn.Acquire(ctx, 1)
}

// EndTurn releases the turn lock.
func (s *Session) EndTurn() {
	s.turn.Release(1)
}

// Hydrated reports whether a context snapshot has been attached at least once.
func (s *Session) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Snapshot returns the current context snapshot.
func (s *Session) Snapshot() types.ContextSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// SetSnapshot replaces the context snapshot. Repeated hydration simply
// replaces the snapshot with the then-latest analysis.
func (s *Session) SetSnapshot(snap types.ContextSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.hydrated = true
}

// MarkHydrated records that hydration ran, even when no analysis existed.
// A missing analysis is a documented no-op, not an error.
func (s *Session) MarkHydrated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrated = true
}

// Working returns the session working roadmap and its goal.
func (s *Session) Working() (types.Roadmap, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.working, s.workingGoal
}

// SetWorking replaces the working roadmap wholesale.
func (s *Session) SetWorking(weeks types.Roadmap, goal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = weeks
	s.workingGoal = goal
}

// Store is a keyed collection of sessions, one per user.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*Session)}
}

// Get returns the session for a user, creating it on first use.
func (st *Store) Get(userID uuid.UUID) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[userID]
	if !ok {
		sess = newSession()
		st.sessions[userID] = sess
	}
	return sess
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
