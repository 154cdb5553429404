package index

import "unicode/utf8"

// MaxEditDistance is the largest edit distance at which Closest still
// proposes a correction.
const MaxEditDistance = 2

// shortTermLength is the rune length below which only one edit is allowed.
// Two edits on a two-letter word can reach almost any other short word.
const shortTermLength = 4

// Distance returns the Levenshtein distance between a and b, counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// maxDistanceFor returns the edit budget for a term of the given length.
func maxDistanceFor(term string) int {
	if utf8.RuneCountInString(term) < shortTermLength {
		return 1
	}
	return MaxEditDistance
}

// Closest returns the vocabulary entry nearest to term.
// vocab maps each term to its document frequency.
//
// No correction is returned when term is itself in the vocabulary or when no
// entry lies within the edit budget. Among candidates the smallest distance
// wins, then the highest document frequency, then the lexicographically
// smallest term, so the result is deterministic.
func Closest(term string, vocab map[string]int) (string, bool) {
	if term == "" {
		return "", false
	}
	if _, ok := vocab[term]; ok {
		return "", false
	}

	budget := maxDistanceFor(term)
	termLen := utf8.RuneCountInString(term)

	best := ""
	bestDist := budget + 1
	bestFreq := 0
	for candidate, freq := range vocab {
		diff := utf8.RuneCountInString(candidate) - termLen
		if diff > budget || -diff > budget {
			continue
		}
		d := Distance(term, candidate)
		if d > budget {
			continue
		}
		switch {
		case d < bestDist,
			d == bestDist && freq > bestFreq,
			d == bestDist && freq == bestFreq && candidate < best:
			best, bestDist, bestFreq = candidate, d, freq
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}
