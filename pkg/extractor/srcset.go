package extractor

import (
	"strconv"
	"strings"
)

// densityScale puts pixel-density descriptors on a common footing with
// width descriptors: an Nx candidate scores N*1000
const densityScale = 1000

// bestSrcsetCandidate parses a srcset value as comma-separated
// (url, descriptor) pairs and returns the single URL with the highest
// score. A width descriptor ("400w") scores its integer value; a
// density descriptor ("2x") scores its value scaled by densityScale.
// With widthOnly set, only w-suffixed candidates compete. Unparsable
// segments are skipped, never fatal.
func bestSrcsetCandidate(srcset string, widthOnly bool) (string, bool) {
	bestURL := ""
	bestScore := -1.0

	for _, segment := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(segment))
		if len(fields) == 0 {
			continue
		}

		candidate := fields[0]
		if candidate == "" {
			continue
		}

		score, ok := scoreDescriptor(fields[1:], widthOnly)
		if !ok {
			continue
		}

		if score > bestScore {
			bestScore = score
			bestURL = candidate
		}
	}

	return bestURL, bestURL != ""
}

func scoreDescriptor(descriptors []string, widthOnly bool) (float64, bool) {
	if len(descriptors) == 0 {
		// A bare URL is an implicit 1x candidate; it cannot compete
		// when only widths are compared.
		if widthOnly {
			return 0, false
		}
		return densityScale, true
	}

	descriptor := strings.ToLower(descriptors[0])
	switch {
	case strings.HasSuffix(descriptor, "w"):
		width, err := strconv.Atoi(strings.TrimSuffix(descriptor, "w"))
		if err != nil || width < 0 {
			return 0, false
		}
		return float64(width), true
	case strings.HasSuffix(descriptor, "x") && !widthOnly:
		density, err := strconv.ParseFloat(strings.TrimSuffix(descriptor, "x"), 64)
		if err != nil || density < 0 {
			return 0, false
		}
		return density * densityScale, true
	}
	return 0, false
}
