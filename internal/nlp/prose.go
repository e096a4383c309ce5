// Package nlp wraps the prose toolkit behind the narrow capabilities the
// pipeline needs: named-entity extraction and generated-text cleanup.
package nlp

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

// Extractor pulls named entities out of article titles.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the entity mention strings found in text, in order.
func (e *Extractor) Extract(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(trimmed, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}

	entities := doc.Entities()
	names := make([]string, 0, len(entities))
	for _, entity := range entities {
		names = append(names, entity.Text)
	}
	return names, nil
}

// Cleaner normalizes generated headline and summary text: contraction
// expansion, punctuation spacing, sentence capitalization, and
// part-of-speech driven proper-noun recapitalization.
type Cleaner struct {
	contractions []contraction
}

type contraction struct {
	pattern   *regexp.Regexp
	expansion string
}

var spaceBeforePunct = regexp.MustCompile(`\s+([?.!,"])`)

func NewCleaner(contractions map[string]string) (*Cleaner, error) {
	cleaner := &Cleaner{}
	for short, long := range contractions {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(short) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile contraction %q: %w", short, err)
		}
		cleaner.contractions = append(cleaner.contractions, contraction{pattern: pattern, expansion: long})
	}
	return cleaner, nil
}

// FixText is best effort: tagging failures degrade to the partially
// cleaned text rather than an error.
func (c *Cleaner) FixText(text string) string {
	out := strings.TrimSpace(text)
	if out == "" {
		return ""
	}

	if c != nil {
		for _, entry := range c.contractions {
			expansion := entry.expansion
			out = entry.pattern.ReplaceAllStringFunc(out, func(match string) string {
				return matchCase(match, expansion)
			})
		}
	}

	out = spaceBeforePunct.ReplaceAllString(out, "$1")
	out = capitalizeSentences(out)

	recapped, err := capitalizeProperNouns(out)
	if err == nil {
		out = recapped
	}
	return strings.TrimSpace(out)
}

// matchCase carries the leading capital of the matched text onto the
// expansion.
func matchCase(match, expansion string) string {
	if match == "" || expansion == "" {
		return expansion
	}
	first := []rune(match)[0]
	if unicode.IsUpper(first) {
		runes := []rune(expansion)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}
	return expansion
}

// capitalizeSentences lowercases each sentence and uppercases its first
// letter; proper nouns are restored afterwards from POS tags.
func capitalizeSentences(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	start := true
	for _, r := range text {
		switch {
		case start && unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
			start = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
			if r == '.' || r == '!' || r == '?' {
				start = true
			}
		}
	}
	return b.String()
}

func capitalizeProperNouns(text string) (string, error) {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return "", fmt.Errorf("tag document: %w", err)
	}

	tokens := doc.Tokens()
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		word := token.Text
		if token.Tag == "NNP" || token.Tag == "NNPS" {
			runes := []rune(word)
			if len(runes) > 0 {
				runes[0] = unicode.ToUpper(runes[0])
				word = string(runes)
			}
		}
		parts = append(parts, word)
	}
	return joinTokens(parts), nil
}

// joinTokens reassembles tagger output without reintroducing space before
// trailing punctuation.
func joinTokens(tokens []string) string {
	var b strings.Builder
	for i, token := range tokens {
		if i > 0 && !closesWord(token) && !opensWord(tokens[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteString(token)
	}
	return b.String()
}

func closesWord(token string) bool {
	switch token {
	case ".", ",", ":", ";", "!", "?", ")", "]", "'", `"`, "'s", "n't", "'re", "'ll", "'ve", "'m", "'d", "%":
		return true
	}
	return false
}

func opensWord(token string) bool {
	switch token {
	case "(", "[", "$":
		return true
	}
	return false
}
