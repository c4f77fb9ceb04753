package dedupe

// Record is a single row of the image dataset.
// DecorID and ImageURL are required; every other column is carried in Extra.
type Record struct {
	DecorID  string
	ImageURL string
	Extra    map[string]string

	// Line is the 1-based line in the source file (the header is line 1)
	Line int
}

// GroupKey identifies all records that are variants of one image
type GroupKey struct {
	DecorID     string
	BaseImageID string
}

func (k GroupKey) String() string {
	return k.DecorID + ":" + k.BaseImageID
}

// Group holds the members sharing a key, in input order. Never empty.
type Group struct {
	Key     GroupKey
	Members []Record
}

// ScoredRecord pairs a record with its extracted width and preference score
type ScoredRecord struct {
	Record Record
	Width  int
	Score  int
}

// Representative is the record chosen to stand in for a whole group
type Representative struct {
	Record
	Key         GroupKey
	MemberCount int
	Width       int
	Score       int
}

// Result is the outcome of a deduplication pass
type Result struct {
	Representatives []Representative
	Skipped         int
	Groups          int
}

// Observer receives events while records are grouped and selected.
// Implementations must not influence the outcome.
type Observer interface {
	OnSkip(rec Record)
	OnGrouped(groups int)
	OnGroup(rep Representative)
}

type nopObserver struct{}

func (nopObserver) OnSkip(Record)          {}
func (nopObserver) OnGrouped(int)          {}
func (nopObserver) OnGroup(Representative) {}
