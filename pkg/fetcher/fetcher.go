// Package fetcher performs outbound HTTP requests with a browser-like
// identity and a bounded retry/backoff policy.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/RIMANOuk/gallery-grabber/pkg/config"
	errs "github.com/RIMANOuk/gallery-grabber/pkg/errors"
	"github.com/RIMANOuk/gallery-grabber/pkg/logger"
	"github.com/RIMANOuk/gallery-grabber/pkg/retry"
)

// Response is the outcome of a successful fetch
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response Content-Type header, if any
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Client fetches URLs with retry and a fixed browser-like identity.
// It is stateless across calls; the underlying connection pool is reused.
type Client struct {
	httpClient   *http.Client
	headers      map[string]string
	policy       config.RetryConfig
	timeout      time.Duration
	maxBodyBytes int64
	logger       logger.Logger
}

// New creates a fetch client from the fetch and retry configuration
func New(fetchCfg config.FetchConfig, retryCfg config.RetryConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := fetchCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		headers: map[string]string{
			"User-Agent":      fetchCfg.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
		},
		policy:       retryCfg,
		timeout:      timeout,
		maxBodyBytes: fetchCfg.MaxBodyBytes,
		logger:       log,
	}
}

// SetHeader sets a custom header applied to every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Get fetches the URL, retrying network failures and retryable status
// codes per the configured policy. The returned error after exhaustion
// is definitive; callers must not retry further.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url)
}

// Head issues a HEAD request under the same retry policy as Get
func (c *Client) Head(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, http.MethodHead, url)
}

func (c *Client) do(ctx context.Context, method, url string) (*Response, error) {
	maxAttempts := c.policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	// Non-idempotent methods are never retried
	if !c.methodRetryable(method) {
		maxAttempts = 1
	}

	cfg := &retry.Config{
		MaxAttempts: maxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:  c.policy.BackoffBase,
			Multiplier: 2.0,
		},
		RetryIf: c.errorRetryable,
		Context: ctx,
		Logger:  c.logger,
	}

	return retry.DoWithResult(func() (*Response, error) {
		return c.attempt(ctx, method, url)
	}, cfg)
}

// attempt performs a single request, classifying every failure
func (c *Client) attempt(ctx context.Context, method, url string) (*Response, error) {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, nil)
	if err != nil {
		return nil, errs.NewFetchError(errs.ErrorTypeUnknown, fmt.Sprintf("build request: %v", err), 0, url)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": method,
		"url":    url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		errorType := errs.ErrorTypeNetwork
		if isTimeout(err) && ctx.Err() == nil {
			errorType = errs.ErrorTypeTimeout
		}
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.NewFetchError(errorType, err.Error(), 0, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.WarnWithFields("HTTP request returned error status", map[string]interface{}{
			"method": method,
			"url":    url,
			"status": resp.StatusCode,
		})
		return nil, errs.NewFetchError(errs.ErrorTypeHTTPStatus,
			fmt.Sprintf("unexpected status %s", resp.Status), resp.StatusCode, url)
	}

	var reader io.Reader = resp.Body
	if c.maxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		errorType := errs.ErrorTypeNetwork
		if isTimeout(err) && ctx.Err() == nil {
			errorType = errs.ErrorTypeTimeout
		}
		return nil, errs.NewFetchError(errorType, fmt.Sprintf("read body: %v", err), 0, url)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      url,
		"status":   resp.StatusCode,
		"bytes":    len(body),
		"duration": duration,
	})

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// errorRetryable applies the configured status code policy
func (c *Client) errorRetryable(err error) bool {
	var typed *errs.Error
	if !errors.As(err, &typed) {
		return false
	}
	if typed.Type == errs.ErrorTypeHTTPStatus {
		for _, code := range c.policy.RetryableStatusCodes {
			if typed.Code == code {
				return true
			}
		}
		return false
	}
	return errs.IsRetryable(typed.Type)
}

func (c *Client) methodRetryable(method string) bool {
	for _, m := range c.policy.RetryableMethods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
