package store

import "github.com/memolish/memolish/internal/memo"

// FilteredMemos is a pure selector: given a collection and a filter it
// returns the matching subset in original relative order. The "all" filter
// is identity and returns the input slice unchanged, so unchanged inputs
// yield a referentially stable result. The input collection is never
// mutated by any filter value.
func FilteredMemos(memos []memo.Memo, filter string) []memo.Memo {
	if filter == memo.FilterAll {
		return memos
	}

	status := memo.Status(filter)
	filtered := make([]memo.Memo, 0)
	for _, m := range memos {
		if m.Status == status {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// CountByStatus tallies the collection per status for the board's filter bar.
func CountByStatus(memos []memo.Memo) map[memo.Status]int {
	counts := make(map[memo.Status]int, len(memo.AllStatuses))
	for _, m := range memos {
		counts[m.Status]++
	}
	return counts
}

// Filtered applies the active filter to the current collection.
func (s *Store) Filtered() []memo.Memo {
	snap := s.Snapshot()
	return FilteredMemos(snap.Memos, snap.ActiveFilter)
}
