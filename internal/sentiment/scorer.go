// Package sentiment scores text polarity with a weighted news lexicon.
package sentiment

import (
	"math"
	"strings"
)

// Normalization constant from the VADER compound formula.
const alpha = 15.0

// Weight multiplier applied when a matched term sits inside a negation
// window.
const negationScalar = -0.74

var negations = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"none":    {},
	"neither": {},
	"nor":     {},
	"cannot":  {},
	"without": {},
}

// Scorer computes a compound polarity in [-1, 1] from a term-weight
// lexicon. Multi-word lexicon entries match as whole phrases.
type Scorer struct {
	lexicon      map[string][]lexiconEntry
	maxPhraseLen int
}

type lexiconEntry struct {
	tokens []string
	weight float64
}

// NewScorer indexes the lexicon by leading token for phrase lookup.
func NewScorer(lexicon map[string]float64) *Scorer {
	s := &Scorer{
		lexicon:      make(map[string][]lexiconEntry, len(lexicon)),
		maxPhraseLen: 1,
	}
	for term, weight := range lexicon {
		tokens := tokenize(term)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) > s.maxPhraseLen {
			s.maxPhraseLen = len(tokens)
		}
		head := tokens[0]
		s.lexicon[head] = append(s.lexicon[head], lexiconEntry{tokens: tokens, weight: weight})
	}

	// Longest phrase first so greedy matching prefers "nuclear power"
	// over "nuclear".
	for head, entries := range s.lexicon {
		sorted := entries
		for i := 1; i < len(sorted); i++ {
			for j := i; j > 0 && len(sorted[j].tokens) > len(sorted[j-1].tokens); j-- {
				sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			}
		}
		s.lexicon[head] = sorted
	}
	return s
}

// Compound returns the normalized polarity of text in [-1, 1]. Zero means
// neutral or no lexicon hits.
func (s *Scorer) Compound(text string) float64 {
	if s == nil {
		return 0
	}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(tokens); {
		entry, matched := s.matchAt(tokens, i)
		if !matched {
			i++
			continue
		}

		weight := entry.weight
		if negatedBefore(tokens, i) {
			weight *= negationScalar
		}
		sum += weight
		i += len(entry.tokens)
	}

	if sum == 0 {
		return 0
	}
	compound := sum / math.Sqrt(sum*sum+alpha)
	return math.Max(-1, math.Min(1, compound))
}

func (s *Scorer) matchAt(tokens []string, start int) (lexiconEntry, bool) {
	entries, ok := s.lexicon[tokens[start]]
	if !ok {
		return lexiconEntry{}, false
	}
	for _, entry := range entries {
		if start+len(entry.tokens) > len(tokens) {
			continue
		}
		match := true
		for j, want := range entry.tokens {
			if tokens[start+j] != want {
				match = false
				break
			}
		}
		if match {
			return entry, true
		}
	}
	return lexiconEntry{}, false
}

// negatedBefore reports whether any of the three tokens preceding start is
// a negation.
func negatedBefore(tokens []string, start int) bool {
	for back := 1; back <= 3 && start-back >= 0; back++ {
		if _, ok := negations[tokens[start-back]]; ok {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		trimmed := strings.Trim(field, `.,:;!?"'()[]{}`)
		if trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}
