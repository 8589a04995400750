package extractor

import (
	"reflect"
	"testing"
)

func TestIsSiteAsset(t *testing.T) {
	tests := []struct {
		url   string
		asset bool
	}{
		{"https://x.test/favicon.ico", true},
		{"https://x.test/static/favicon.png", true},
		{"https://x.test/assets/favicon.svg", true},
		{"https://x.test/icons/arrow.png", true},
		{"https://x.test/icon/close.svg", true},
		{"https://x.test/img/site-logo.png", true},
		{"https://x.test/img/sprite.webp", true},
		{"https://x.test/pay/visa.png", true},
		{"https://x.test/social/facebook.svg", true},
		{"https://x.test/banners/cookie-consent.png", true},
		{"https://x.test/photos/sunset.jpg", false},
		{"https://x.test/gallery/2024/beach.webp", false},
		{"https://x.test/a.jpg", false},
	}

	for _, test := range tests {
		t.Run(test.url, func(t *testing.T) {
			if got := IsSiteAsset(test.url); got != test.asset {
				t.Errorf("IsSiteAsset(%q) = %v, want %v", test.url, got, test.asset)
			}
		})
	}
}

func TestIsSiteAssetCaseInsensitive(t *testing.T) {
	if !IsSiteAsset("https://x.test/img/LOGO.PNG") {
		t.Error("Expected keyword match to be case-insensitive")
	}
}

func TestFilterSiteAssetsPreservesOrder(t *testing.T) {
	urls := []string{
		"https://x.test/photos/one.jpg",
		"https://x.test/favicon.ico",
		"https://x.test/photos/two.jpg",
		"https://x.test/img/logo.png",
		"https://x.test/photos/three.jpg",
	}

	expected := []string{
		"https://x.test/photos/one.jpg",
		"https://x.test/photos/two.jpg",
		"https://x.test/photos/three.jpg",
	}

	if got := FilterSiteAssets(urls); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestFilterSiteAssetsEmptyInput(t *testing.T) {
	if got := FilterSiteAssets(nil); len(got) != 0 {
		t.Errorf("Expected empty output for nil input, got %v", got)
	}
}
