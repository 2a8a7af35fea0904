// Package suggest finds likely intended names for mistyped mask keys,
// config keys and commands.
package suggest

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps how many names Closest returns.
const maxSuggestions = 3

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Closest returns up to three names from valid that unknown was probably
// meant to be, best first. Subsequence matches ("build" for
// "maskBuildings") rank ahead of near misses by edit distance
// ("maskBuidlings").
func Closest(unknown string, valid []string) []string {
	unknown = strings.TrimLeft(unknown, "-")
	if unknown == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] && len(out) < maxSuggestions {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, m := range fuzzy.Find(unknown, valid) {
		add(m.Str)
	}

	type scored struct {
		name string
		dist int
	}
	var near []scored
	lower := strings.ToLower(unknown)
	maxDist := max(3, len(unknown)/2)
	for _, v := range valid {
		if d := levenshtein(lower, strings.ToLower(v)); d <= maxDist {
			near = append(near, scored{v, d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	for _, n := range near {
		add(n.name)
	}
	return out
}

// Hint formats suggestions as " (did you mean a or b?)", or "" when
// there are none.
func Hint(suggestions []string) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return " (did you mean " + suggestions[0] + "?)"
	}
	return " (did you mean " + strings.Join(suggestions[:len(suggestions)-1], ", ") +
		" or " + suggestions[len(suggestions)-1] + "?)"
}
