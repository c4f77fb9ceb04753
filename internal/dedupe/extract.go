package dedupe

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultMarker is the path segment that precedes the base image id in PIM URLs
const DefaultMarker = "pim"

var widthPattern = regexp.MustCompile(`width=(\d+)`)

// Extractor derives grouping keys and widths from image references
type Extractor struct {
	marker      string
	basePattern *regexp.Regexp
}

// NewExtractor creates an extractor that looks for /<marker>/<a>/<b>/ in references
func NewExtractor(marker string) (*Extractor, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	pattern, err := regexp.Compile(`/` + regexp.QuoteMeta(marker) + `/([^/]+/[^/]+)/`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile base image pattern for marker %q: %w", marker, err)
	}
	return &Extractor{
		marker:      marker,
		basePattern: pattern,
	}, nil
}

// Marker returns the path segment the extractor anchors on
func (e *Extractor) Marker() string {
	return e.marker
}

// BaseImageID returns the two-level path following the marker segment.
// ok is false when the reference does not contain the pattern.
func (e *Extractor) BaseImageID(ref string) (string, bool) {
	m := e.basePattern.FindStringSubmatch(ref)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Width returns the width query parameter, or 0 when there is none
func (e *Extractor) Width(ref string) int {
	m := widthPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0
	}
	w, err := strconv.Atoi(m[1])
	if err != nil {
		// out of range for int
		return 0
	}
	return w
}

// Key computes the group key for a record
func (e *Extractor) Key(rec Record) (GroupKey, bool) {
	base, ok := e.BaseImageID(rec.ImageURL)
	if !ok {
		return GroupKey{}, false
	}
	return GroupKey{DecorID: rec.DecorID, BaseImageID: base}, true
}
