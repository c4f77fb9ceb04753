package dedupe

import "strings"

const (
	// PreferredWidth is the rendition width favoured above all others
	PreferredWidth = 1024

	mediumMinWidth = 768
	mediumMaxWidth = 1536

	// Aspect ratio markers found in PIM rendition URLs
	WideMarker     = "AR_16_9"
	StandardMarker = "AR_4_3"
)

// Score computes the preference score for a reference with the given width.
// The result is always within [10, 120].
func Score(ref string, width int) int {
	score := 0

	switch {
	case width == PreferredWidth:
		score += 100
	case width >= mediumMinWidth && width <= mediumMaxWidth:
		score += 50
	case width > mediumMaxWidth:
		score += 25
	default:
		score += 10
	}

	if strings.Contains(ref, WideMarker) {
		score += 20
	} else if strings.Contains(ref, StandardMarker) {
		score += 10
	}

	return score
}
