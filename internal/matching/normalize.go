// Package matching decides which listings on different venues represent the
// same real-world event. It normalizes listing titles into word sets, scores
// pairs with pluggable similarity strategies, and keeps pairs above a
// configured threshold.
package matching

import "strings"

// defaultStopWords are articles, auxiliary verbs, and prepositions that carry
// no signal for event identity.
var defaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "of", "in", "to", "for", "is",
	"are", "was", "were", "be", "been", "being", "on", "at", "by", "it",
	"will", "would", "shall", "should", "can", "could", "may", "might",
	"do", "does", "did", "have", "has", "had", "vs", "with", "this",
	"that", "from", "as", "before", "after", "into", "over", "under",
}

// Normalizer turns a listing title into a set of significant lowercase words.
type Normalizer struct {
	stopWords map[string]struct{}
}

// NewNormalizer creates a Normalizer with the given stop words. Passing nil
// uses the built-in default set.
func NewNormalizer(stopWords []string) *Normalizer {
	if stopWords == nil {
		stopWords = defaultStopWords
	}
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopWords: set}
}

// Process lowercases the title, strips everything but letters, digits, and
// whitespace, splits on whitespace, and subtracts the stop-word set.
// Duplicate words collapse into the set.
func (n *Normalizer) Process(title string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			b.WriteByte(' ')
		default:
			// Punctuation becomes a separator so "Trump-wins" splits cleanly.
			b.WriteByte(' ')
		}
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(b.String()) {
		if _, stop := n.stopWords[w]; stop {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}
