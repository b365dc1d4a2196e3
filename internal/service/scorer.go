package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// NameScorer rates the similarity of two person names in [0, 1]. The matcher
// is pluggable so the algorithm and threshold can be tuned without touching
// identity resolution control flow.
type NameScorer interface {
	Score(a, b string) float64
}

// LevenshteinScorer scores names by normalized edit distance over
// token-sorted, case-folded input, so "Rivera, Ana" and "ana rivera" compare
// cleanly.
type LevenshteinScorer struct{}

// NewLevenshteinScorer constructs the default scorer.
func NewLevenshteinScorer() *LevenshteinScorer {
	return &LevenshteinScorer{}
}

// Score implements NameScorer.
func (s *LevenshteinScorer) Score(a, b string) float64 {
	na := tokenSort(a)
	nb := tokenSort(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	dist := fuzzy.LevenshteinDistance(na, nb)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	score := 1 - float64(dist)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}

func tokenSort(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '-', '\'':
			return ' '
		default:
			return r
		}
	}, strings.ToLower(name))

	tokens := strings.Fields(cleaned)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
