// Package extractor discovers image references in page markup.
//
// Discovery runs a fixed, ordered list of strategies over a parsed
// document. Every raw reference passes through a single
// resolve-and-filter step, and the combined sequence is deduplicated
// preserving first-seen order, so extraction is deterministic for a
// given (pageURL, body) pair.
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy collects raw candidate references from a parsed document
type Strategy struct {
	Name    string
	Collect func(doc *goquery.Document) []string
}

// recognized image file extensions, matched against the URL path
// (query string ignored), case-insensitively
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".svg":  true,
	".avif": true,
}

// Extract parses the page body and returns every discovered image
// reference as an absolute URL, deduplicated in first-seen order.
// A page with no qualifying references yields an empty slice.
func Extract(pageURL string, body []byte) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}

	seen := make(map[string]bool)
	var found []string

	for _, strategy := range strategies() {
		for _, raw := range strategy.Collect(doc) {
			resolved, ok := resolveCandidate(base, raw)
			if !ok || seen[resolved] {
				continue
			}
			seen[resolved] = true
			found = append(found, resolved)
		}
	}

	return found, nil
}

// resolveCandidate trims the raw reference, rejects empty and data: URI
// values, resolves it against the page URL and keeps it only when its
// path carries a recognized image extension
func resolveCandidate(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(raw), "data:") {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)

	ext := strings.ToLower(path.Ext(abs.Path))
	if !imageExtensions[ext] {
		return "", false
	}

	return abs.String(), true
}
