// Package archive bundles remote images into a zip, tolerating
// individual fetch failures.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/RIMANOuk/gallery-grabber/pkg/fetcher"
	"github.com/RIMANOuk/gallery-grabber/pkg/logger"
	"github.com/RIMANOuk/gallery-grabber/pkg/ratelimit"
)

// fallback member name when a URL has no usable path segment
const fallbackFileName = "image"

// Fetcher is the subset of the fetch client the builder needs
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetcher.Response, error)
}

// memberResult is the outcome of fetching one archive member; failures
// are carried as values so the skip policy is an explicit fold, not
// hidden control flow
type memberResult struct {
	url  string
	name string
	body []byte
	err  error
}

// Builder fetches image URLs and writes them into a deflate-compressed
// zip. Member fetches run with bounded parallelism, but member order
// always follows the URL list, never completion order.
type Builder struct {
	fetcher     Fetcher
	limiter     ratelimit.Limiter
	concurrency int
	logger      logger.Logger
}

// New creates a builder. concurrency < 1 means sequential fetching.
func New(f Fetcher, limiter ratelimit.Limiter, concurrency int, log logger.Logger) *Builder {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Builder{
		fetcher:     f,
		limiter:     limiter,
		concurrency: concurrency,
		logger:      log,
	}
}

// Build fetches every URL and returns the zip bytes plus the number of
// members written. A failed fetch is logged and skipped; it never
// aborts the build. When every fetch fails the result is a valid but
// empty archive, and deciding whether that is acceptable is left to
// the caller.
//
// Two URLs sharing a basename collide inside the archive; the last one
// wins. Known limitation.
func (b *Builder) Build(ctx context.Context, urls []string) ([]byte, int, error) {
	results := make([]memberResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, imageURL := range urls {
		g.Go(func() error {
			b.limiter.Wait()
			resp, err := b.fetcher.Get(gctx, imageURL)
			if err != nil {
				results[i] = memberResult{url: imageURL, err: err}
				return nil // per-item failures never fail the group
			}
			results[i] = memberResult{
				url:  imageURL,
				name: fileNameFor(imageURL),
				body: resp.Body,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	written := 0
	for _, result := range results {
		if result.err != nil {
			b.logger.WarnWithFields("skipping failed archive member", map[string]interface{}{
				"url":   result.url,
				"error": result.err.Error(),
			})
			continue
		}
		w, err := zw.Create(result.name)
		if err != nil {
			zw.Close()
			return nil, 0, err
		}
		if _, err := w.Write(result.body); err != nil {
			zw.Close()
			return nil, 0, err
		}
		written++
	}

	if err := zw.Close(); err != nil {
		return nil, 0, err
	}

	b.logger.InfoWithFields("archive built", map[string]interface{}{
		"requested": len(urls),
		"written":   written,
		"bytes":     buf.Len(),
	})

	return buf.Bytes(), written, nil
}

// fileNameFor derives the archive member name from the URL's last path
// segment
func fileNameFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackFileName
	}

	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return fallbackFileName
}
