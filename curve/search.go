package curve

import "sort"

// searchTime finds the index of the first time >= target using binary search.
// Returns len(times) if all times are before target.
func searchTime(times []float64, target float64) int {
	return sort.Search(len(times), func(i int) bool {
		return times[i] >= target
	})
}

// findBracket finds two adjacent pillar indices that bracket the target.
// Returns (i1, i2, true) where times[i1] <= target <= times[i2], or
// (0, 0, false) if the target lies outside the pillar range.
//
// This uses binary search for O(log n) complexity instead of O(n) linear search.
func findBracket(times []float64, target float64) (i1, i2 int, found bool) {
	if len(times) < 2 {
		return 0, 0, false
	}

	idx := searchTime(times, target)

	// Handle boundary cases
	if idx == 0 {
		// target is before or equal to first pillar
		if times[0] == target {
			return 0, 1, true
		}
		return 0, 0, false
	}

	if idx >= len(times) {
		// target is after all pillars
		return 0, 0, false
	}

	// Normal case: times[idx-1] < target <= times[idx]
	return idx - 1, idx, true
}

// findBracketOrBoundary finds two adjacent pillar indices that bracket the
// target. If the target is outside the range, returns the nearest boundary
// pair.
//
// This is useful for extrapolation where we still want the two nearest pillars.
func findBracketOrBoundary(times []float64, target float64) (i1, i2 int) {
	if len(times) < 2 {
		panic("findBracketOrBoundary: need at least 2 pillars")
	}

	idx := searchTime(times, target)

	if idx <= 0 {
		return 0, 1
	}

	if idx >= len(times) {
		return len(times) - 2, len(times) - 1
	}

	return idx - 1, idx
}
