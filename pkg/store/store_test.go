package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	errs "github.com/RIMANOuk/gallery-grabber/pkg/errors"
)

// fakeClock is a controllable time source for TTL tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestPutAndGet(t *testing.T) {
	s := New(15 * time.Minute)

	token, err := s.Put(ScanResult{
		SourceURL:   "https://x.test/page",
		DisplayName: "x.test-page",
		Images:      []string{"https://x.test/a.jpg"},
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a non-empty token")
	}

	entry, err := s.Get(token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Token != token {
		t.Errorf("Expected token %q stamped on entry, got %q", token, entry.Token)
	}
	if entry.SourceURL != "https://x.test/page" {
		t.Errorf("Unexpected source URL %q", entry.SourceURL)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be stamped")
	}
}

func TestGetUnknownToken(t *testing.T) {
	s := New(15 * time.Minute)

	_, err := s.Get("never-issued")
	if err == nil {
		t.Fatal("Expected NotFound for unknown token")
	}

	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeNotFound {
		t.Errorf("Expected not_found error, got %v", err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	s := New(15 * time.Minute)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := s.Put(ScanResult{SourceURL: "https://x.test"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("Token %q issued twice", token)
		}
		seen[token] = true
	}
}

func TestTTLEviction(t *testing.T) {
	clock := newFakeClock()
	ttl := 15 * time.Minute
	s := New(ttl, WithClock(clock.Now))

	token, err := s.Put(ScanResult{SourceURL: "https://x.test"})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// still retrievable one second before expiry
	clock.Advance(ttl - time.Second)
	if _, err := s.Get(token); err != nil {
		t.Errorf("Expected entry alive at TTL-1s, got %v", err)
	}

	// absent one second past expiry
	clock.Advance(2 * time.Second)
	_, err = s.Get(token)
	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeNotFound {
		t.Errorf("Expected not_found at TTL+1s, got %v", err)
	}
}

func TestPutEvictsLazily(t *testing.T) {
	clock := newFakeClock()
	s := New(time.Minute, WithClock(clock.Now))

	if _, err := s.Put(ScanResult{SourceURL: "https://old.test"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	clock.Advance(2 * time.Minute)

	if _, err := s.Put(ScanResult{SourceURL: "https://new.test"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if got := s.Len(); got != 1 {
		t.Errorf("Expected expired entry evicted on Put, have %d entries", got)
	}
}

func TestEvictExpiredCount(t *testing.T) {
	clock := newFakeClock()
	s := New(time.Minute, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		if _, err := s.Put(ScanResult{SourceURL: "https://x.test"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	clock.Advance(30 * time.Second)
	if evicted := s.EvictExpired(); evicted != 0 {
		t.Errorf("Expected no evictions before TTL, got %d", evicted)
	}

	clock.Advance(31 * time.Second)
	if evicted := s.EvictExpired(); evicted != 3 {
		t.Errorf("Expected 3 evictions past TTL, got %d", evicted)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New(time.Minute)

	token, err := s.Put(ScanResult{Images: []string{"https://x.test/a.jpg", "https://x.test/b.jpg"}})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	first, _ := s.Get(token)
	first.Images[0] = "mutated"

	second, _ := s.Get(token)
	if second.Images[0] != "https://x.test/a.jpg" {
		t.Error("Expected stored entry to be immune to caller mutation")
	}
}

func TestTokenSourceInjection(t *testing.T) {
	calls := 0
	s := New(time.Minute, WithTokenSource(func() (string, error) {
		calls++
		return fmt.Sprintf("fixed-%d", calls), nil
	}))

	token, err := s.Put(ScanResult{})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if token != "fixed-1" {
		t.Errorf("Expected injected token source to be used, got %q", token)
	}
}

func TestTokenSourceFailure(t *testing.T) {
	s := New(time.Minute, WithTokenSource(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))

	if _, err := s.Put(ScanResult{}); err == nil {
		t.Fatal("Expected Put to surface token generation failure")
	}
	if s.Len() != 0 {
		t.Error("Expected no entry inserted on token failure")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(time.Minute)

	var wg sync.WaitGroup
	tokens := make([]string, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := s.Put(ScanResult{SourceURL: fmt.Sprintf("https://x.test/%d", i)})
			if err != nil {
				t.Errorf("Put failed: %v", err)
				return
			}
			tokens[i] = token
			if _, err := s.Get(token); err != nil {
				t.Errorf("Get after Put failed: %v", err)
			}
			s.EvictExpired()
		}(i)
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("Expected 50 live entries, got %d", s.Len())
	}
	for i, token := range tokens {
		entry, err := s.Get(token)
		if err != nil {
			t.Errorf("Entry %d missing: %v", i, err)
			continue
		}
		if entry.SourceURL != fmt.Sprintf("https://x.test/%d", i) {
			t.Errorf("Entry %d corrupted: %q", i, entry.SourceURL)
		}
	}
}

func TestNewTokenShape(t *testing.T) {
	token, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	if len(token) != 32 {
		t.Errorf("Expected 32 hex characters, got %d", len(token))
	}
}
