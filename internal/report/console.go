package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
)

const ruler = "=================================================="

var _ dedupe.Observer = (*Console)(nil)

// Console prints progress and the final summary of a run.
// It implements dedupe.Observer.
type Console struct {
	out io.Writer
}

// NewConsole creates a console reporter writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Start(rows int) {
	fmt.Fprintf(c.out, "Processing %d data rows\n", rows)
}

// OnSkip reports a record whose image reference has no base image id
func (c *Console) OnSkip(rec dedupe.Record) {
	slog.Warn("No base image ID found", "line", rec.Line, "image_url", rec.ImageURL)
}

// OnGrouped reports how many distinct groups were formed
func (c *Console) OnGrouped(groups int) {
	fmt.Fprintf(c.out, "Found %d unique decor_id + base_image combinations\n", groups)
}

// OnGroup reports the reduction of a single group
func (c *Console) OnGroup(rep dedupe.Representative) {
	fmt.Fprintf(c.out, "  %s: %d → 1 (kept %dpx)\n", rep.Key.DecorID, rep.MemberCount, rep.Width)
}

func (c *Console) Selected(reps int) {
	fmt.Fprintf(c.out, "Selected %d representative rows\n", reps)
}

func (c *Console) Backup(path string) {
	fmt.Fprintf(c.out, "Backup created: %s\n", path)
}

func (c *Console) Output(path string) {
	fmt.Fprintf(c.out, "Writing deduped file: %s\n", path)
}

// Summary prints the final counts
func (c *Console) Summary(s Summary) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "DEDUPLICATION COMPLETE")
	fmt.Fprintln(c.out, ruler)
	fmt.Fprintf(c.out, "Original rows:  %d\n", s.OriginalSize)
	fmt.Fprintf(c.out, "Deduped rows:   %d\n", s.DedupedSize)
	fmt.Fprintf(c.out, "Reduction:      %.1f%%\n", s.Reduction)
	fmt.Fprintf(c.out, "Rows saved:     %d\n", s.SavedRows)
	fmt.Fprintln(c.out, ruler)
}

// Analysis prints the result of a read-only duplication analysis
func (c *Console) Analysis(path string, a dedupe.Analysis) {
	fmt.Fprintln(c.out, ruler)
	fmt.Fprintf(c.out, "%s\n", strings.ToUpper(path))
	fmt.Fprintln(c.out, ruler)
	fmt.Fprintf(c.out, "Data rows:                     %d\n", a.Rows)
	fmt.Fprintf(c.out, "Unique decor_ids:              %d\n", a.UniqueDecorIDs)
	fmt.Fprintf(c.out, "Unique decor_id + base_image:  %d\n", a.Combinations)
	fmt.Fprintf(c.out, "Unparseable image URLs:        %d\n", a.Unparseable)
	fmt.Fprintf(c.out, "Images per decor_id:           %.1f\n", a.ImagesPerDecor())

	if len(a.Duplicates) == 0 {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Duplicate groups:")
	for _, g := range a.Duplicates {
		fmt.Fprintf(c.out, "  %s: %d duplicates\n", g.Key, len(g.Members))
		for i, rec := range g.Members {
			if i == 2 {
				break
			}
			fmt.Fprintf(c.out, "    - %s\n", truncate(rec.ImageURL, 80))
		}
	}
}

// truncate shortens s to at most maxLen bytes without splitting a rune
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
