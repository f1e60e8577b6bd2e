package api

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/heartsgammon/pkg/engine"
	"github.com/yourusername/heartsgammon/pkg/game"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps hot-seat sessions in memory.
type SessionStore struct {
	mu    sync.RWMutex
	games map[string]*sessionEntry
	seeds *rand.Rand // guarded by mu
}

// sessionEntry serializes access to one session and fans out snapshots.
type sessionEntry struct {
	id   string
	mu   sync.Mutex
	sess *game.Session
	subs map[chan game.Snapshot]struct{}
}

// NewSessionStore creates an empty store. Session seeds are drawn from seed.
func NewSessionStore(seed int64) *SessionStore {
	return &SessionStore{
		games: make(map[string]*sessionEntry),
		seeds: rand.New(rand.NewSource(seed)),
	}
}

// create starts a session. A zero seed draws one from the store.
func (st *SessionStore) create(seed int64) *sessionEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	if seed == 0 {
		seed = st.seeds.Int63()
	}
	e := &sessionEntry{
		id:   uuid.NewString(),
		sess: game.New(engine.NewRoller(seed)),
		subs: make(map[chan game.Snapshot]struct{}),
	}
	st.games[e.id] = e
	return e
}

// get looks up a session.
func (st *SessionStore) get(id string) (*sessionEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.games[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Delete drops a session and closes its subscribers.
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	e, ok := st.games[id]
	delete(st.games, id)
	st.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subs {
		delete(e.subs, ch)
		close(ch)
	}
	return nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.games)
}

// do runs fn with the session locked and publishes the resulting snapshot
// when fn succeeds.
func (e *sessionEntry) do(fn func(*game.Session) error) (game.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.sess); err != nil {
		return game.Snapshot{}, err
	}
	snap := e.sess.Snapshot()
	for ch := range e.subs {
		// Slow subscribers miss intermediate snapshots.
		select {
		case ch <- snap:
		default:
		}
	}
	return snap, nil
}

// snapshot returns the current view without publishing.
func (e *sessionEntry) snapshot() game.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Snapshot()
}

// subscribe registers for snapshots. The current snapshot is delivered first.
// The returned function unregisters; the channel is closed when the session
// is deleted.
func (e *sessionEntry) subscribe() (<-chan game.Snapshot, func()) {
	ch := make(chan game.Snapshot, 16)
	e.mu.Lock()
	e.subs[ch] = struct{}{}
	ch <- e.sess.Snapshot()
	e.mu.Unlock()

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	}
}

// nextSeed draws a seed for work outside a session, such as dice audits.
func (st *SessionStore) nextSeed() int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.seeds.Int63()
}
