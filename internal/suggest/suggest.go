// Package suggest proposes near-miss alternatives for unknown names.
package suggest

import (
	"sort"
	"strconv"
	"strings"
)

const maxResults = 3

// Similar returns up to three candidates within edit distance of target,
// closest first, ties alphabetical. Short targets use a tighter threshold
// so one-letter names do not match half the candidate set.
func Similar(target string, candidates []string) []string {
	if target == "" || len(candidates) == 0 {
		return nil
	}
	threshold := 3
	if len(target) <= 3 {
		threshold = 1
	} else if len(target) <= 5 {
		threshold = 2
	}

	lowered := strings.ToLower(target)
	type match struct {
		name string
		dist int
	}
	var matches []match
	for _, candidate := range candidates {
		if candidate == "" || strings.ToLower(candidate) == lowered {
			continue
		}
		dist := editDistance(lowered, strings.ToLower(candidate))
		if dist <= threshold {
			matches = append(matches, match{name: candidate, dist: dist})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

// Hint formats matches as a "did you mean" clause. Empty when there is
// nothing to say.
func Hint(matches []string) string {
	switch len(matches) {
	case 0:
		return ""
	case 1:
		return "did you mean " + strconv.Quote(matches[0]) + "?"
	default:
		var b strings.Builder
		b.WriteString("did you mean one of ")
		for i, m := range matches {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(m))
		}
		b.WriteString("?")
		return b.String()
	}
}

// editDistance is a two-row Levenshtein implementation over runes.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
