package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucketAllow(t *testing.T) {
	bucket := NewTokenBucket(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if bucket.Allow() {
		t.Error("Expected request to be denied once bucket is empty")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := NewTokenBucket(1, 20*time.Millisecond)

	if !bucket.Allow() {
		t.Fatal("Expected first request to be allowed")
	}
	if bucket.Allow() {
		t.Fatal("Expected second request to be denied")
	}

	time.Sleep(30 * time.Millisecond)

	if !bucket.Allow() {
		t.Error("Expected request to be allowed after refill period")
	}
}

func TestTokenBucketWait(t *testing.T) {
	bucket := NewTokenBucket(1, 20*time.Millisecond)
	bucket.Allow()

	start := time.Now()
	bucket.Wait()
	elapsed := time.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("Expected Wait to block until refill, only waited %v", elapsed)
	}
}

func TestUnlimited(t *testing.T) {
	limiter := Unlimited{}
	for i := 0; i < 100; i++ {
		if !limiter.Allow() {
			t.Fatal("Expected unlimited limiter to always allow")
		}
	}
	limiter.Wait() // must not block
}
