package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinScorerExactMatch(t *testing.T) {
	scorer := NewLevenshteinScorer()
	assert.Equal(t, 1.0, scorer.Score("Ana Rivera", "Ana Rivera"))
}

func TestLevenshteinScorerTokenOrderAndCase(t *testing.T) {
	scorer := NewLevenshteinScorer()
	assert.Equal(t, 1.0, scorer.Score("Rivera, Ana", "ana rivera"))
	assert.Equal(t, 1.0, scorer.Score("O'Brien, Sam", "sam o brien"))
}

func TestLevenshteinScorerNearMatch(t *testing.T) {
	scorer := NewLevenshteinScorer()

	score := scorer.Score("Jon Smith", "John Smith")
	assert.Greater(t, score, 0.85)
	assert.Less(t, score, 1.0)
}

func TestLevenshteinScorerDistantNames(t *testing.T) {
	scorer := NewLevenshteinScorer()
	assert.Less(t, scorer.Score("Ana Rivera", "Marcus Webb"), 0.5)
}

func TestLevenshteinScorerEmptyInput(t *testing.T) {
	scorer := NewLevenshteinScorer()
	assert.Equal(t, 0.0, scorer.Score("", "Ana Rivera"))
	assert.Equal(t, 0.0, scorer.Score("Ana Rivera", ""))
	assert.Equal(t, 0.0, scorer.Score("", ""))
}
