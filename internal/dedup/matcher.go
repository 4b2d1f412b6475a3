package dedup

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultThreshold is the minimum similarity (exclusive) for a fuzzy match.
const DefaultThreshold = 0.6

// Scored is one ranked candidate. Index points back into the slice given to Rank.
type Scored struct {
	Name  CanonicalName
	Score float64
	Index int
}

// Similarity returns a symmetric score in [0,1] for two match keys: 2*M/T where M
// is the number of characters in matching runs and T the combined length.
//
// Keys are compared as written and with their tokens sorted, and the better of
// the two wins, so "clancy tom" and "tom clancy" are treated as the same name.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	score := ratio(a, b)
	if sa, sb := sortTokens(a), sortTokens(b); sa != a || sb != b {
		if s := ratio(sa, sb); s > score {
			score = s
		}
	}
	return score
}

// Rank scores every candidate against query and returns those strictly above
// threshold, best first. Ties keep candidate order.
func Rank(query string, candidates []CanonicalName, threshold float64) []Scored {
	key := MatchKey(query)
	if key == "" {
		return nil
	}

	ranked := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		score := Similarity(key, c.MatchKey)
		if score > threshold {
			ranked = append(ranked, Scored{Name: c, Score: score, Index: i})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ratio runs SequenceMatcher both ways. Its longest-block search breaks ties by
// position, which can make a single direction slightly asymmetric.
func ratio(a, b string) float64 {
	sa, sb := strings.Split(a, ""), strings.Split(b, "")
	forward := difflib.NewMatcher(sa, sb).Ratio()
	if backward := difflib.NewMatcher(sb, sa).Ratio(); backward > forward {
		return backward
	}
	return forward
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
