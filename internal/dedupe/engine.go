package dedupe

import "sort"

// GroupRecords partitions records by group key.
//
// Groups are returned in the order their key was first seen and members keep
// their input order. Records without a base image id are reported to obs and
// counted in skipped.
func GroupRecords(records []Record, ex *Extractor, obs Observer) (groups []Group, skipped int) {
	if obs == nil {
		obs = nopObserver{}
	}

	index := make(map[GroupKey]int, len(records))
	groups = make([]Group, 0, len(records)/2+1)

	for _, rec := range records {
		key, ok := ex.Key(rec)
		if !ok {
			skipped++
			obs.OnSkip(rec)
			continue
		}

		if idx, exists := index[key]; exists {
			groups[idx].Members = append(groups[idx].Members, rec)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Group{
			Key:     key,
			Members: []Record{rec},
		})
	}

	return groups, skipped
}

// ScoreGroup scores every member of a group, preserving member order
func ScoreGroup(g Group, ex *Extractor) []ScoredRecord {
	scored := make([]ScoredRecord, 0, len(g.Members))
	for _, rec := range g.Members {
		width := ex.Width(rec.ImageURL)
		scored = append(scored, ScoredRecord{
			Record: rec,
			Width:  width,
			Score:  Score(rec.ImageURL, width),
		})
	}
	return scored
}

// Select picks the highest scoring member of a group.
// Equal scores resolve to the member that came first in the input.
func Select(g Group, ex *Extractor) Representative {
	scored := ScoreGroup(g, ex)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	best := scored[0]
	return Representative{
		Record:      best.Record,
		Key:         g.Key,
		MemberCount: len(g.Members),
		Width:       best.Width,
		Score:       best.Score,
	}
}

// Deduplicate collapses records into one representative per group.
// An empty input produces an empty result.
func Deduplicate(records []Record, ex *Extractor, obs Observer) Result {
	if obs == nil {
		obs = nopObserver{}
	}

	groups, skipped := GroupRecords(records, ex, obs)
	obs.OnGrouped(len(groups))

	reps := make([]Representative, 0, len(groups))
	for _, g := range groups {
		rep := Select(g, ex)
		obs.OnGroup(rep)
		reps = append(reps, rep)
	}

	return Result{
		Representatives: reps,
		Skipped:         skipped,
		Groups:          len(groups),
	}
}
