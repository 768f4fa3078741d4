package alerr

import "fmt"

// maxSuggestDistance catches a dropped, doubled or swapped character in a
// table or column name without pairing unrelated names.
const maxSuggestDistance = 3

// editDistance is the Levenshtein distance between a and b, counted in runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			up := row[j]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[j] = min(row[j]+1, row[j-1]+1, diag+cost)
			diag = up
		}
	}
	return row[len(rb)]
}

// Closest returns the candidate nearest to input, if one is within reach.
// Ties keep the earlier candidate.
func Closest(input string, candidates []string) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := editDistance(input, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= maxSuggestDistance
}

// DidYouMean formats a "did you mean 'X'?" hint, or "" when nothing is close.
func DidYouMean(input string, candidates []string) string {
	if match, ok := Closest(input, candidates); ok && match != input {
		return fmt.Sprintf("did you mean '%s'?", match)
	}
	return ""
}
