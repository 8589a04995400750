package extractor

import (
	"net/url"
	"path"
	"strings"
)

// site-chrome keywords matched case-insensitively against the URL path:
// branding, navigation icons, payment/social badges, cookie banners
var assetKeywords = []string{
	"logo",
	"favicon",
	"icon",
	"sprite",
	"badge",
	"avatar",
	"visa",
	"mastercard",
	"amex",
	"paypal",
	"stripe",
	"klarna",
	"facebook",
	"twitter",
	"instagram",
	"linkedin",
	"youtube",
	"pinterest",
	"tiktok",
	"whatsapp",
	"cookie",
	"consent",
	"gdpr",
}

var faviconBasenames = map[string]bool{
	"favicon.ico": true,
	"favicon.png": true,
	"favicon.svg": true,
}

// IsSiteAsset reports whether the URL looks like a non-content site
// asset (logo, icon, badge) rather than gallery content. Pure predicate;
// unparsable URLs are kept as content.
func IsSiteAsset(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	lowerPath := strings.ToLower(u.Path)

	if faviconBasenames[path.Base(lowerPath)] {
		return true
	}

	for _, segment := range strings.Split(lowerPath, "/") {
		if segment == "icon" || segment == "icons" {
			return true
		}
	}

	for _, keyword := range assetKeywords {
		if strings.Contains(lowerPath, keyword) {
			return true
		}
	}

	return false
}

// FilterSiteAssets drops site-asset URLs, preserving the extraction
// order of the survivors
func FilterSiteAssets(urls []string) []string {
	filtered := make([]string, 0, len(urls))
	for _, u := range urls {
		if !IsSiteAsset(u) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}
