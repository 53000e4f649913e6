package note

import (
	"sort"
	"strings"
)

// Filter returns the subsequence of notes whose title or content contains
// query as a case-insensitive substring, sorted by UpdatedAt descending.
// An empty query matches everything (still sorted). Pure function: the
// input slice is never mutated.
func Filter(notes []Note, query string) []Note {
	q := strings.ToLower(query)

	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if q == "" ||
			strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})

	return out
}
