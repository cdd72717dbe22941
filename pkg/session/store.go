// Package session keeps one design context per editing session in memory and
// evicts sessions that stay idle longer than the configured TTL.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formdesigner/pkg/designer"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/toast"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 2 * time.Hour

// Session bundles the state of one editor.
type Session struct {
	ID        string
	Designer  *designer.Designer
	Toasts    *toast.Queue
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last touched.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the idle expiry. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTypeChecker is passed to every designer the store creates.
func WithTypeChecker(checker designer.TypeChecker) Option {
	return func(s *Store) {
		s.types = checker
	}
}

// WithSeed applies design to every new session.
func WithSeed(design model.Design) Option {
	return func(s *Store) {
		seed := design.Clone()
		s.seed = &seed
	}
}

// WithToastLimit caps each session's toast queue.
func WithToastLimit(limit int) Option {
	return func(s *Store) {
		s.toastLimit = limit
	}
}

// Store is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	ttl        time.Duration
	now        func() time.Time
	types      designer.TypeChecker
	seed       *model.Design
	toastLimit int
}

// NewStore builds an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// TTL returns the configured idle expiry.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a new session with a fresh ID.
func (s *Store) Create() (*Session, error) {
	opts := []designer.Option{designer.WithTypeChecker(s.types)}
	if seed, ok := s.Seed(); ok {
		opts = append(opts, designer.WithDesign(seed))
	}
	d, err := designer.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Designer:  d,
		Toasts:    toast.NewQueue(s.toastLimit),
		CreatedAt: now,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Seed returns a copy of the design new sessions start from.
func (s *Store) Seed() (model.Design, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seed == nil {
		return model.Design{}, false
	}
	return s.seed.Clone(), true
}

// SetSeed replaces the seed for sessions created from now on. Existing
// sessions keep their state.
func (s *Store) SetSeed(design model.Design) {
	seed := design.Clone()
	s.mu.Lock()
	s.seed = &seed
	s.mu.Unlock()
}

// Get returns a live session and marks it as used. Sessions idle past the TTL
// are treated as missing even before the sweeper removes them.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	now := s.now()
	if s.expired(sess, now) {
		s.Delete(id)
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	sess.touch(now)
	return sess, nil
}

// Delete removes a session. Unknown IDs are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle past the TTL at now and returns how many were
// removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done. It returns ctx.Err().
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = s.ttl / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.LastSeen()) > s.ttl
}
