// Package scoring holds the two priority policies: a weighted
// title score applied to every raw article, and a keyword containment
// count applied to assembled stories. They are separate policies with
// separate scales; neither feeds the other.
package scoring

import (
	"regexp"
	"strings"

	"horse.fit/bulletin/internal/rules"
)

const (
	sentimentWeight = 0.4
	impactWeight    = 0.3
	actionWeight    = 0.3

	// Compound polarity lands in [-1, 1]; scale it to the same
	// [-5, 5] band the impact and action axes use.
	sentimentScale = 5.0

	axisFloor = -5.0
	axisCeil  = 5.0
)

// PolarityScorer yields a compound sentiment in [-1, 1] for a short text.
type PolarityScorer interface {
	Compound(text string) float64
}

// TitleScorer ranks raw article titles before clustering.
type TitleScorer struct {
	polarity PolarityScorer
	rules    *rules.Set
}

func NewTitleScorer(polarity PolarityScorer, set *rules.Set) *TitleScorer {
	return &TitleScorer{polarity: polarity, rules: set}
}

// Components returns the three axes separately: scaled polarity plus
// the impact and action keyword counts. Each axis counts keyword
// presence once per keyword, never per occurrence, and is clamped to
// [-5, 5].
func (s *TitleScorer) Components(text string) (sentiment, impact, action float64) {
	sentiment = s.polarity.Compound(text) * sentimentScale
	impact = axisScore(text, s.rules.ImpactHigh, s.rules.ImpactLow)
	action = axisScore(text, s.rules.ActionHigh, s.rules.ActionLow)
	return sentiment, impact, action
}

// Score blends the component axes over the raw title.
func (s *TitleScorer) Score(title string) float64 {
	sentiment, impact, action := s.Components(title)
	return sentimentWeight*sentiment + impactWeight*impact + actionWeight*action
}

func axisScore(text string, high, low []*regexp.Regexp) float64 {
	var score float64
	for _, pattern := range high {
		if pattern.MatchString(text) {
			score++
		}
	}
	for _, pattern := range low {
		if pattern.MatchString(text) {
			score--
		}
	}
	if score < axisFloor {
		return axisFloor
	}
	if score > axisCeil {
		return axisCeil
	}
	return score
}

// StoryKeywordScore counts how many priority terms appear anywhere in
// the story's headline or combined member text. Matching is plain
// lowercase substring containment, so "war" also matches "warning";
// this makes the score a coarse volume signal rather than a precise one.
func StoryKeywordScore(headline, memberText string, keywords []string) int {
	text := strings.ToLower(headline + " " + memberText)

	count := 0
	for _, term := range keywords {
		if term == "" {
			continue
		}
		if strings.Contains(text, term) {
			count++
		}
	}
	return count
}
