package refund

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vendorhub/console/internal/domain/refund"
)

// sessionEntry owns one session. mu serialises every read and write of the
// session; ctx is cancelled when the session closes so background identity
// fetches stop and their late results are dropped.
type sessionEntry struct {
	mu      sync.Mutex
	session *refund.Session

	ctx    context.Context
	cancel context.CancelFunc

	lastAccess       atomic.Int64
	identitiesLoaded chan struct{}
}

func newSessionEntry(parent context.Context, session *refund.Session, now time.Time) *sessionEntry {
	ctx, cancel := context.WithCancel(parent)
	e := &sessionEntry{
		session:          session,
		ctx:              ctx,
		cancel:           cancel,
		identitiesLoaded: make(chan struct{}),
	}
	e.touch(now)
	return e
}

func (e *sessionEntry) touch(now time.Time) {
	e.lastAccess.Store(now.UnixNano())
}

func (e *sessionEntry) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, e.lastAccess.Load()))
}

// SessionStore keeps open refund sessions in memory and evicts idle ones
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
	now     func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewSessionStore creates an empty store
func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		entries:  make(map[string]*sessionEntry),
		now:      now,
		stopChan: make(chan struct{}),
	}
}

func (s *SessionStore) put(e *sessionEntry) {
	s.mu.Lock()
	s.entries[e.session.ID] = e
	s.mu.Unlock()
}

// get returns the entry and records the access
func (s *SessionStore) get(id string) (*sessionEntry, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		e.touch(s.now())
	}
	return e, ok
}

func (s *SessionStore) remove(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	return e, ok
}

// Len returns the number of open sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// drain removes and returns every entry
func (s *SessionStore) drain() []*sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*sessionEntry, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, e)
		delete(s.entries, id)
	}
	return out
}

// evictIdle removes entries idle for at least ttl and returns them
func (s *SessionStore) evictIdle(ttl time.Duration) []*sessionEntry {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []*sessionEntry
	for id, e := range s.entries {
		if e.idleSince(now) >= ttl {
			expired = append(expired, e)
			delete(s.entries, id)
		}
	}
	return expired
}

// StartCleanup runs evictIdle every interval and hands expired entries to
// onExpire. Only the first call starts the loop.
func (s *SessionStore) StartCleanup(interval, ttl time.Duration, onExpire func(*sessionEntry)) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-s.stopChan:
					return
				case <-ticker.C:
					for _, e := range s.evictIdle(ttl) {
						onExpire(e)
					}
				}
			}
		}()
	})
}

// Stop ends the cleanup loop. Safe to call multiple times.
func (s *SessionStore) Stop() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}
