package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
)

// RunConfig records how a run was invoked
type RunConfig struct {
	RunID     string `yaml:"runid"`
	Input     string `yaml:"input"`
	Backup    string `yaml:"backup,omitempty"`
	Marker    string `yaml:"marker"`
	DryRun    bool   `yaml:"dryrun"`
	Timestamp string `yaml:"timestamp"`
}

// Selection is one chosen representative together with its derived metadata
type Selection struct {
	GroupKey      string `yaml:"groupkey" parquet:"group_key"`
	DecorID       string `yaml:"decorid" parquet:"decor_id"`
	BaseImageID   string `yaml:"baseimageid" parquet:"base_image_id"`
	ImageURL      string `yaml:"imageurl" parquet:"image_url"`
	Line          int64  `yaml:"line" parquet:"line"`
	OriginalCount int64  `yaml:"originalcount" parquet:"original_count"`
	ChosenWidth   int64  `yaml:"chosenwidth" parquet:"chosen_width"`
	ChosenScore   int64  `yaml:"chosenscore" parquet:"chosen_score"`
}

// RunReport is the complete selection report of a run
type RunReport struct {
	Config     RunConfig   `yaml:"config"`
	Summary    Summary     `yaml:"summary"`
	Skipped    int         `yaml:"skipped"`
	Groups     int         `yaml:"groups"`
	Selections []Selection `yaml:"selections"`
}

// NewRunReport builds a report from a deduplication result
func NewRunReport(cfg RunConfig, inputRows int, res dedupe.Result) *RunReport {
	r := &RunReport{
		Config:     cfg,
		Summary:    Summarize(inputRows, len(res.Representatives)),
		Skipped:    res.Skipped,
		Groups:     res.Groups,
		Selections: make([]Selection, 0, len(res.Representatives)),
	}
	for _, rep := range res.Representatives {
		r.Selections = append(r.Selections, Selection{
			GroupKey:      rep.Key.String(),
			DecorID:       rep.Key.DecorID,
			BaseImageID:   rep.Key.BaseImageID,
			ImageURL:      rep.ImageURL,
			Line:          int64(rep.Line),
			OriginalCount: int64(rep.MemberCount),
			ChosenWidth:   int64(rep.Width),
			ChosenScore:   int64(rep.Score),
		})
	}
	return r
}

// Save writes the report to path; the format follows the file extension
func (r *RunReport) Save(path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return r.saveYAML(path)
	case ".parquet":
		return r.saveParquet(path)
	default:
		return fmt.Errorf("unsupported report format: %s (supported: .yaml, .yml, .parquet)", ext)
	}
}
