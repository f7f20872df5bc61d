package pipeline

import (
	"strings"

	"github.com/NatiBytes/crispy-vison/pkg/models"

	"github.com/arbovm/levenshtein"
)

// scoreMatch compares the extracted text with the expected text and returns a
// normalized similarity score in [0, 1] plus the character error rate.
// Comparison is case-insensitive and whitespace-collapsed.
func scoreMatch(expected, extracted string) *models.MatchResult {
	ref := normalizeText(expected)
	hyp := normalizeText(extracted)

	match := &models.MatchResult{ExpectedText: expected}
	if ref == "" {
		return match
	}

	distance := levenshtein.Distance(ref, hyp)
	refLen := len([]rune(ref))
	hypLen := len([]rune(hyp))

	match.CER = float64(distance) / float64(refLen)

	longest := refLen
	if hypLen > longest {
		longest = hypLen
	}
	score := 1.0 - float64(distance)/float64(longest)
	if score < 0 {
		score = 0
	}
	match.MatchScore = score

	return match
}

// normalizeText lowercases and collapses runs of whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
