package models

// Estimate picks the most frequent vote. Ties go to the lowest value.
// The second return is false when there are no votes.
func Estimate(votes []int) (int, bool) {
	if len(votes) == 0 {
		return 0, false
	}

	counts := make(map[int]int, len(votes))
	maxCount := 0
	for _, v := range votes {
		counts[v]++
		if counts[v] > maxCount {
			maxCount = counts[v]
		}
	}

	best, found := 0, false
	for v, c := range counts {
		if c != maxCount {
			continue
		}
		if !found || v < best {
			best, found = v, true
		}
	}
	return best, true
}
