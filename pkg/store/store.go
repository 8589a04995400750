// Package store holds scan results in memory, keyed by opaque token,
// with a fixed time-to-live. Nothing survives a process restart; that
// is an accepted limitation, not a bug.
package store

import (
	"sync"
	"time"

	errs "github.com/RIMANOuk/gallery-grabber/pkg/errors"
)

// ScanResult is one stored scan outcome. Entries are never mutated
// after creation; the store hands out copies.
type ScanResult struct {
	Token        string
	SourceURL    string
	DisplayName  string
	Images       []string
	AssetsHidden bool
	CreatedAt    time.Time
}

// Store is a token-keyed in-memory cache of scan results. The clock
// and token source are injected so TTL behaviour is testable.
type Store struct {
	mu      sync.Mutex
	entries map[string]ScanResult
	ttl     time.Duration
	now     func() time.Time
	token   func() (string, error)
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTokenSource replaces the token generator
func WithTokenSource(token func() (string, error)) Option {
	return func(s *Store) { s.token = token }
}

// New creates a store with the given TTL
func New(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]ScanResult),
		ttl:     ttl,
		now:     time.Now,
		token:   NewToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stamps the result with a fresh token and creation time, inserts
// it and returns the token. Expired entries are evicted first.
func (s *Store) Put(result ScanResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	token, err := s.token()
	if err != nil {
		return "", err
	}

	result.Token = token
	result.CreatedAt = now
	s.entries[token] = result

	return token, nil
}

// Get returns a copy of the entry for the token. Unknown, evicted and
// expired tokens all report NotFound.
func (s *Store) Get(token string) (ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(s.now())

	entry, ok := s.entries[token]
	if !ok {
		return ScanResult{}, errs.NotFound(token)
	}

	// copy the image list so callers cannot mutate the stored entry
	images := make([]string, len(entry.Images))
	copy(images, entry.Images)
	entry.Images = images

	return entry, nil
}

// EvictExpired removes every entry older than the TTL and returns the
// number of evicted entries
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(s.now())
}

// Len returns the number of live entries without evicting
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) evictLocked(now time.Time) int {
	evicted := 0
	for token, entry := range s.entries {
		if now.Sub(entry.CreatedAt) > s.ttl {
			delete(s.entries, token)
			evicted++
		}
	}
	return evicted
}
