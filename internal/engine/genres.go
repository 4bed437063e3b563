package engine

import "sort"

// RankGenres takes a flat list of genre strings, one per artist occurrence,
// and returns the distinct genres ordered by descending occurrence count.
// Ties keep first-occurrence order. Empty strings are dropped.
func RankGenres(genres []string) []string {
	counts := make(map[string]int)
	var distinct []string

	for _, genre := range genres {
		if genre == "" {
			continue
		}
		if counts[genre] == 0 {
			distinct = append(distinct, genre)
		}
		counts[genre]++
	}

	sort.SliceStable(distinct, func(i, j int) bool {
		return counts[distinct[i]] > counts[distinct[j]]
	})
	return distinct
}
