package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RIMANOuk/gallery-grabber/pkg/config"
	errs "github.com/RIMANOuk/gallery-grabber/pkg/errors"
	"github.com/RIMANOuk/gallery-grabber/pkg/logger"
)

func testClient(timeout time.Duration, maxAttempts int) *Client {
	fetchCfg := config.FetchConfig{
		Timeout:   timeout,
		UserAgent: "test-agent/1.0",
	}
	retryCfg := config.RetryConfig{
		MaxAttempts:          maxAttempts,
		BackoffBase:          time.Millisecond,
		RetryableStatusCodes: []int{429, 500, 502, 503, 504},
		RetryableMethods:     []string{"GET", "HEAD"},
	}
	return New(fetchCfg, retryCfg, logger.NewTestLogger())
}

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent/1.0" {
			t.Errorf("Expected configured user agent, got %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got == "" {
			t.Error("Expected browser-like Accept-Language header")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client := testClient(5*time.Second, 3)
	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "<html></html>" {
		t.Errorf("Unexpected body %q", resp.Body)
	}
	if resp.ContentType() != "text/html" {
		t.Errorf("Expected content type text/html, got %q", resp.ContentType())
	}
}

func TestGetRetriesUntilCeiling(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(5*time.Second, 3)
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("Expected exactly 3 attempts against a permanent 503, got %d", got)
	}

	var typed *errs.Error
	if !errors.As(err, &typed) {
		t.Fatal("Expected a typed fetch error")
	}
	if typed.Type != errs.ErrorTypeHTTPStatus || typed.Code != 503 {
		t.Errorf("Expected http_status/503, got %s/%d", typed.Type, typed.Code)
	}
	if typed.URL != server.URL {
		t.Errorf("Expected offending URL in error, got %q", typed.URL)
	}
}

func TestGetRecoversAfterTransientFailure(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := testClient(5*time.Second, 3)
	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected recovery on third attempt, got %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("Unexpected body %q", resp.Body)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(5*time.Second, 3)
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("Expected 1 attempt for 404, got %d", got)
	}

	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Code != 404 {
		t.Errorf("Expected http_status error with code 404, got %v", err)
	}
}

func TestGetTimeoutIsRetryable(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := testClient(20*time.Millisecond, 2)
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("Expected timeout to count as retryable failure (2 attempts), got %d", got)
	}
}

func TestGetConnectionRefusedClassifiedAsNetwork(t *testing.T) {
	client := testClient(time.Second, 1)
	_, err := client.Get(context.Background(), "http://127.0.0.1:1/unreachable")
	if err == nil {
		t.Fatal("Expected connection error")
	}
	var typed *errs.Error
	if !errors.As(err, &typed) {
		t.Fatal("Expected typed error")
	}
	if typed.Type != errs.ErrorTypeNetwork && typed.Type != errs.ErrorTypeTimeout {
		t.Errorf("Expected network or timeout classification, got %s", typed.Type)
	}
}

func TestGetRespectsBodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 1024))
	}))
	defer server.Close()

	fetchCfg := config.FetchConfig{Timeout: time.Second, MaxBodyBytes: 100}
	retryCfg := config.RetryConfig{MaxAttempts: 1, RetryableMethods: []string{"GET"}}
	client := New(fetchCfg, retryCfg, logger.NewTestLogger())

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if len(resp.Body) != 100 {
		t.Errorf("Expected body capped at 100 bytes, got %d", len(resp.Body))
	}
}
