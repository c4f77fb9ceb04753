package report

import "strconv"

// Summary holds the before/after counts of a run
type Summary struct {
	OriginalSize int     `yaml:"originalsize"`
	DedupedSize  int     `yaml:"dedupedsize"`
	Reduction    float64 `yaml:"reduction"`
	SavedRows    int     `yaml:"savedrows"`
}

// Summarize computes the reduction percentage, rounded to one decimal, and the rows saved.
// An empty input reports a reduction of 0.
func Summarize(originalSize, dedupedSize int) Summary {
	s := Summary{
		OriginalSize: originalSize,
		DedupedSize:  dedupedSize,
		SavedRows:    originalSize - dedupedSize,
	}
	if originalSize > 0 {
		pct := (1 - float64(dedupedSize)/float64(originalSize)) * 100
		s.Reduction = roundTenth(pct)
	}
	return s
}

// roundTenth rounds to one decimal using the exact binary value, so halfway
// cases such as 81.25 go to the even digit.
func roundTenth(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
