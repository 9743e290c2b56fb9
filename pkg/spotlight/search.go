package spotlight

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxDistance is the largest edit distance between the query and a label word
// that still counts as a match.
const maxDistance = 2

// Search ranks the actions matching query. Substring matches on the label come
// first, then substring matches on the description, then labels with a word
// within a small edit distance of the query. Ties keep the input order. An
// empty query returns every action.
func Search(actions []Action, query string) []Action {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Action(nil), actions...)
	}

	type hit struct {
		action Action
		rank   int
	}
	var hits []hit
	for _, a := range actions {
		label := strings.ToLower(a.Label)
		switch {
		case strings.Contains(label, q):
			hits = append(hits, hit{a, 0})
		case strings.Contains(strings.ToLower(a.Description), q):
			hits = append(hits, hit{a, 1})
		default:
			if d := closest(label, q); d <= maxDistance {
				hits = append(hits, hit{a, 2 + d})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	out := make([]Action, len(hits))
	for i, h := range hits {
		out[i] = h.action
	}
	return out
}

func closest(label, q string) int {
	best := len(q) + 1
	for _, word := range strings.Fields(label) {
		if d := levenshtein.ComputeDistance(word, q); d < best {
			best = d
		}
	}
	return best
}
