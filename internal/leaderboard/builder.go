// Package leaderboard turns reduced per-archer metrics into ranked views.
// Every view goes through the same builder so sorting, tie-breaking and rank
// assignment behave identically everywhere.
package leaderboard

import "sort"

// Build sorts the candidates and assigns sequential ranks. The tie-break
// chain is: metric descending, X-count descending, achieved-at ascending
// (whoever got there first), archer ID ascending. The last step makes the
// ordering fully deterministic. Ties never share a rank number; "my rank"
// answers stay unambiguous and pageable.
//
// A limit of zero or less means unlimited.
func Build(candidates []Candidate, limit int) []Entry {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Metric != b.Metric {
			return a.Metric > b.Metric
		}
		if a.XCount != b.XCount {
			return a.XCount > b.XCount
		}
		if a.AchievedAt != b.AchievedAt {
			return a.AchievedAt < b.AchievedAt
		}
		return a.ArcherID < b.ArcherID
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]Entry, len(sorted))
	for i, candidate := range sorted {
		entries[i] = Entry{
			Rank:       i + 1,
			ArcherID:   candidate.ArcherID,
			Name:       candidate.Name,
			Metric:     candidate.Metric,
			XCount:     candidate.XCount,
			AchievedAt: candidate.AchievedAt,
		}
	}
	return entries
}

// Locate finds an archer's entry in a built ranking. Nil when absent; an
// archer with no qualifying data has no rank, which is distinct from a rank
// with metric zero.
func Locate(entries []Entry, archerID string) *Entry {
	for i := range entries {
		if entries[i].ArcherID == archerID {
			return &entries[i]
		}
	}
	return nil
}

// view assembles the truncated top-N and the caller's entry from one
// candidate set. The caller's rank comes from the unlimited ranking, so it
// matches what an unlimited query would report.
func view(candidates []Candidate, limit int, callerID string) View {
	full := Build(candidates, 0)
	v := View{Entries: full}
	if limit > 0 && len(full) > limit {
		v.Entries = full[:limit]
	}
	if callerID != "" {
		v.Mine = Locate(full, callerID)
	}
	return v
}
