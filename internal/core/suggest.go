package core

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// SuggestName returns the candidate closest to input when it is within a
// length-scaled edit distance. Comparison ignores case.
func SuggestName(input string, candidates []string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if len(needle) < 3 {
		return "", false
	}
	best, bestDist := "", -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(needle, strings.ToLower(cand))
		if dist > suggestionLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && cand < best) {
			best, bestDist = cand, dist
		}
	}
	return best, bestDist >= 0
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
