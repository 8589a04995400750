// Package gallery orchestrates the scan, browse and download
// lifecycle: fetch a page, extract its image references, keep the
// outcome under a token and serve archives or single images from it.
package gallery

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/RIMANOuk/gallery-grabber/pkg/archive"
	"github.com/RIMANOuk/gallery-grabber/pkg/config"
	errs "github.com/RIMANOuk/gallery-grabber/pkg/errors"
	"github.com/RIMANOuk/gallery-grabber/pkg/extractor"
	"github.com/RIMANOuk/gallery-grabber/pkg/fetcher"
	"github.com/RIMANOuk/gallery-grabber/pkg/logger"
	"github.com/RIMANOuk/gallery-grabber/pkg/naming"
	"github.com/RIMANOuk/gallery-grabber/pkg/ratelimit"
	"github.com/RIMANOuk/gallery-grabber/pkg/store"
)

// Fetcher is the fetch surface the service depends on
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetcher.Response, error)
}

// Service binds the fetcher, extractor, result store and archive
// builder behind the boundary operations the presentation layer calls
type Service struct {
	fetcher Fetcher
	store   *store.Store
	builder *archive.Builder
	logger  logger.Logger
}

// New creates a fully wired service from the configuration
func New(cfg *config.Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.GetLogger()
	}

	client := fetcher.New(cfg.Fetch, cfg.Retry, log)

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.Archive.RequestsPerMinute > 0 {
		limiter = ratelimit.NewTokenBucket(cfg.Archive.RequestsPerMinute, time.Minute)
	}

	return &Service{
		fetcher: client,
		store:   store.New(cfg.Store.TTL),
		builder: archive.New(client, limiter, cfg.Archive.ConcurrentFetches, log),
		logger:  log,
	}
}

// NewWithDeps wires a service from explicit collaborators, for tests
// and embedders that inject their own clock or fetch layer
func NewWithDeps(f Fetcher, s *store.Store, b *archive.Builder, log logger.Logger) *Service {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Service{fetcher: f, store: s, builder: b, logger: log}
}

// Scan fetches the page, extracts image references, optionally filters
// site assets and stores the outcome. It returns the token addressing
// the stored result. Zero extracted images is a valid outcome, not an
// error.
func (s *Service) Scan(ctx context.Context, pageURL, nameHint string, hideAssets bool) (string, error) {
	resp, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", pageURL).Error("page fetch failed")
		return "", fmt.Errorf("fetch page %s: %w", pageURL, err)
	}

	images, err := extractor.Extract(pageURL, resp.Body)
	if err != nil {
		return "", fmt.Errorf("extract images from %s: %w", pageURL, err)
	}

	if hideAssets {
		images = extractor.FilterSiteAssets(images)
	}

	name := naming.SafeName(nameHint)
	if strings.TrimSpace(nameHint) == "" {
		name = naming.DefaultNameFromURL(pageURL)
	}

	token, err := s.store.Put(store.ScanResult{
		SourceURL:    pageURL,
		DisplayName:  name,
		Images:       images,
		AssetsHidden: hideAssets,
	})
	if err != nil {
		return "", fmt.Errorf("store scan result: %w", err)
	}

	s.logger.InfoWithFields("page scanned", map[string]interface{}{
		"url":         pageURL,
		"images":      len(images),
		"hide_assets": hideAssets,
		"token":       token,
	})

	return token, nil
}

// Lookup returns the stored scan result for a token
func (s *Service) Lookup(token string) (store.ScanResult, error) {
	return s.store.Get(token)
}

// ArchiveAll bundles every stored image for the token into a zip and
// returns the bytes plus the download filename. A token with an empty
// image list is rejected before any fetch is attempted.
func (s *Service) ArchiveAll(ctx context.Context, token string) ([]byte, string, error) {
	result, err := s.store.Get(token)
	if err != nil {
		return nil, "", err
	}

	if len(result.Images) == 0 {
		return nil, "", errs.EmptyResult(token)
	}

	data, written, err := s.builder.Build(ctx, result.Images)
	if err != nil {
		return nil, "", fmt.Errorf("build archive for %s: %w", token, err)
	}

	if written == 0 {
		s.logger.WarnWithFields("archive contains no members", map[string]interface{}{
			"token":  token,
			"images": len(result.Images),
		})
	}

	return data, result.DisplayName + ".zip", nil
}

// FetchSingle retrieves one stored image by its position and returns
// the bytes with a content type
func (s *Service) FetchSingle(ctx context.Context, token string, index int) ([]byte, string, error) {
	result, err := s.store.Get(token)
	if err != nil {
		return nil, "", err
	}

	if index < 0 || index >= len(result.Images) {
		return nil, "", errs.IndexOutOfRange(token, index, len(result.Images))
	}

	imageURL := result.Images[index]
	resp, err := s.fetcher.Get(ctx, imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image %s: %w", imageURL, err)
	}

	contentType := resp.ContentType()
	if contentType == "" {
		contentType = contentTypeFromURL(imageURL)
	}

	return resp.Body, contentType, nil
}

// EvictExpired removes expired results; the serve loop calls this on a
// ticker to keep memory bounded when no requests arrive
func (s *Service) EvictExpired() int {
	return s.store.EvictExpired()
}

// contentTypeFromURL falls back to the URL extension when the upstream
// response carries no Content-Type
func contentTypeFromURL(rawURL string) string {
	ext := path.Ext(strings.SplitN(rawURL, "?", 2)[0])
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
