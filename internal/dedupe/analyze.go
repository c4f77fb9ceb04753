package dedupe

// Analysis describes the duplication in a dataset without changing it
type Analysis struct {
	Rows           int
	UniqueDecorIDs int
	Combinations   int
	Unparseable    int
	Duplicates     []Group
}

// ImagesPerDecor is the average number of distinct base images per decor id
func (a Analysis) ImagesPerDecor() float64 {
	if a.UniqueDecorIDs == 0 {
		return 0
	}
	return float64(a.Combinations) / float64(a.UniqueDecorIDs)
}

// Analyze groups records and collects duplication statistics.
// At most maxExamples groups with more than one member are kept in Duplicates;
// a negative maxExamples keeps all of them.
func Analyze(records []Record, ex *Extractor, maxExamples int) Analysis {
	groups, skipped := GroupRecords(records, ex, nil)

	decorIDs := make(map[string]struct{})
	for _, rec := range records {
		decorIDs[rec.DecorID] = struct{}{}
	}

	a := Analysis{
		Rows:           len(records),
		UniqueDecorIDs: len(decorIDs),
		Combinations:   len(groups),
		Unparseable:    skipped,
	}

	for _, g := range groups {
		if len(g.Members) < 2 {
			continue
		}
		if maxExamples >= 0 && len(a.Duplicates) >= maxExamples {
			break
		}
		a.Duplicates = append(a.Duplicates, g)
	}

	return a
}
