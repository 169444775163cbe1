package search

import (
	"strings"

	"github.com/winfind/winfind/internal/models"
)

// Per-field weights. Title dominates, owner name next, subtitle last.
const (
	exactTitleBonus    = 100.0
	exactOwnerBonus    = 90.0
	exactSubtitleBonus = 80.0

	prefixTitleBonus    = 50.0
	prefixOwnerBonus    = 45.0
	prefixSubtitleBonus = 40.0

	wordTitleWeight    = 30.0
	wordOwnerWeight    = 25.0
	wordSubtitleWeight = 20.0

	acronymTitleWeight = 25.0
	acronymOwnerWeight = 20.0

	containsTitleBonus    = 15.0
	containsOwnerBonus    = 12.0
	containsSubtitleBonus = 10.0

	fuzzyTitleWeight    = 3.0
	fuzzyOwnerWeight    = 2.0
	fuzzySubtitleWeight = 1.0
)

const tokenSeparators = " \t\n\r.,;:!?-_()[]{}/@#$%^&*+=|\\~`\"'<>"

// Score rates query against one item's text fields. Pure and deterministic:
// same inputs, same score, no side effects. The query must already be
// lower-cased; an empty query scores zero (callers bypass matching entirely
// for empty queries).
func Score(query string, it models.Item) float64 {
	if query == "" {
		return 0
	}

	title := strings.ToLower(it.Title)
	owner := strings.ToLower(it.OwnerName)
	subtitle := strings.ToLower(it.Subtitle)

	var score float64

	// Exact full-string match, one field at most.
	switch query {
	case title:
		score += exactTitleBonus
	case owner:
		score += exactOwnerBonus
	case subtitle:
		score += exactSubtitleBonus
	}

	// Prefix match, one field at most.
	switch {
	case strings.HasPrefix(title, query):
		score += prefixTitleBonus
	case owner != "" && strings.HasPrefix(owner, query):
		score += prefixOwnerBonus
	case subtitle != "" && strings.HasPrefix(subtitle, query):
		score += prefixSubtitleBonus
	}

	score += wordBoundaryMatch(query, title) * wordTitleWeight
	score += wordBoundaryMatch(query, owner) * wordOwnerWeight
	score += wordBoundaryMatch(query, subtitle) * wordSubtitleWeight

	score += acronymMatch(query, title) * acronymTitleWeight
	score += acronymMatch(query, owner) * acronymOwnerWeight

	if strings.Contains(title, query) {
		score += containsTitleBonus
	}
	if owner != "" && strings.Contains(owner, query) {
		score += containsOwnerBonus
	}
	if subtitle != "" && strings.Contains(subtitle, query) {
		score += containsSubtitleBonus
	}

	score += fuzzyMatch(query, title) * fuzzyTitleWeight
	score += fuzzyMatch(query, owner) * fuzzyOwnerWeight
	score += fuzzyMatch(query, subtitle) * fuzzySubtitleWeight

	return score
}

// fuzzyMatch scans text left to right matching query as a subsequence. Each
// matched rune contributes its current consecutive-run length, so clustered
// matches beat scattered ones. The sum is normalized by query length; an
// incomplete match scores zero.
func fuzzyMatch(query, text string) float64 {
	q := []rune(query)
	if len(q) == 0 || text == "" {
		return 0
	}

	qi := 0
	run := 0
	var score float64
	for _, r := range text {
		if qi >= len(q) {
			break
		}
		if r == q[qi] {
			run++
			score += float64(run)
			qi++
		} else {
			run = 0
		}
	}

	if qi < len(q) {
		return 0
	}
	return score / float64(len(q))
}

// wordBoundaryMatch counts tokens of text that start with query.
func wordBoundaryMatch(query, text string) float64 {
	if text == "" {
		return 0
	}
	matches := 0
	for _, word := range splitTokens(text) {
		if strings.HasPrefix(word, query) {
			matches++
		}
	}
	return float64(matches)
}

// acronymMatch compares query against the string of token first-letters.
// Full prefix match of the acronym scores 1.0; otherwise partial credit is
// the matched query-prefix length over the query length.
func acronymMatch(query, text string) float64 {
	if text == "" {
		return 0
	}
	words := splitTokens(text)
	if len(words) < len([]rune(query)) {
		return 0
	}

	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		b.WriteRune(r[0])
	}
	acronym := b.String()

	if strings.HasPrefix(acronym, query) {
		return 1.0
	}

	q := []rune(query)
	a := []rune(acronym)
	matched := 0
	for matched < len(q) && matched < len(a) && q[matched] == a[matched] {
		matched++
	}
	return float64(matched) / float64(len(q))
}

func splitTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(tokenSeparators, r)
	})
}
