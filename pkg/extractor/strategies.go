package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// lazy-load attribute names checked on every img element, vendor-agnostic
var lazyAttrs = []string{"data-src", "data-lazy-src", "data-original", "data-image", "data-url"}

// lazy-load responsive set attributes; only w-suffixed widths compared
var lazySrcsetAttrs = []string{"data-srcset", "data-lazy-srcset"}

var inlineURLPattern = regexp.MustCompile(`url\(([^)]*)\)`)

// strategies returns the discovery strategies in their fixed order.
// The order determines where a URL found by several strategies lands
// in the final sequence.
func strategies() []Strategy {
	return []Strategy{
		{Name: "anchor", Collect: collectAnchorHrefs},
		{Name: "img-src", Collect: collectImgSrc},
		{Name: "img-srcset", Collect: collectImgSrcset},
		{Name: "img-lazy", Collect: collectLazyAttrs},
		{Name: "img-lazy-srcset", Collect: collectLazySrcsets},
		{Name: "meta-preview", Collect: collectMetaPreviews},
		{Name: "icon-link", Collect: collectIconLinks},
		{Name: "inline-style", Collect: collectInlineStyles},
	}
}

func collectAnchorHrefs(doc *goquery.Document) []string {
	var raws []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		raws = append(raws, href)
	})
	return raws
}

func collectImgSrc(doc *goquery.Document) []string {
	var raws []string
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		raws = append(raws, src)
	})
	return raws
}

// collectImgSrcset emits one candidate per img: the srcset entry with
// the highest score, density descriptors scaled to compare with widths
func collectImgSrcset(doc *goquery.Document) []string {
	var raws []string
	doc.Find("img[srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		if best, ok := bestSrcsetCandidate(srcset, false); ok {
			raws = append(raws, best)
		}
	})
	return raws
}

func collectLazyAttrs(doc *goquery.Document) []string {
	var raws []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range lazyAttrs {
			if value, exists := s.Attr(attr); exists {
				raws = append(raws, value)
			}
		}
	})
	return raws
}

func collectLazySrcsets(doc *goquery.Document) []string {
	var raws []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range lazySrcsetAttrs {
			if value, exists := s.Attr(attr); exists {
				if best, ok := bestSrcsetCandidate(value, true); ok {
					raws = append(raws, best)
				}
			}
		}
	})
	return raws
}

func collectMetaPreviews(doc *goquery.Document) []string {
	var raws []string
	doc.Find(`meta[property="og:image"], meta[name="og:image"], meta[name="twitter:image"], meta[property="twitter:image"]`).Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			raws = append(raws, content)
		}
	})
	return raws
}

func collectIconLinks(doc *goquery.Document) []string {
	var raws []string
	doc.Find(`link[rel="icon"], link[rel="apple-touch-icon"], link[rel="apple-touch-icon-precomposed"]`).Each(func(_ int, s *goquery.Selection) {
		if href, exists := s.Attr("href"); exists {
			raws = append(raws, href)
		}
	})
	return raws
}

// collectInlineStyles pulls url(...) occurrences out of inline style
// attributes, stripping surrounding quotes
func collectInlineStyles(doc *goquery.Document) []string {
	var raws []string
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		for _, match := range inlineURLPattern.FindAllStringSubmatch(style, -1) {
			value := strings.TrimSpace(match[1])
			value = strings.Trim(value, `'"`)
			raws = append(raws, value)
		}
	})
	return raws
}
