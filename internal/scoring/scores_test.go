package scoring

import (
	"math"
	"regexp"
	"testing"

	"horse.fit/bulletin/internal/rules"
)

type fixedPolarity struct {
	value float64
}

func (f fixedPolarity) Compound(string) float64 { return f.value }

func wordPatterns(words ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return patterns
}

func TestTitleScoreWeighting(t *testing.T) {
	t.Parallel()

	set := &rules.Set{
		ImpactHigh: wordPatterns("strike", "emergency"),
		ImpactLow:  wordPatterns("minor"),
		ActionHigh: wordPatterns("launches"),
	}
	scorer := NewTitleScorer(fixedPolarity{value: 0.5}, set)

	got := scorer.Score("Union launches emergency strike")
	want := 0.4*(0.5*5) + 0.3*2 + 0.3*1
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTitleAxesOnNewsKeywords(t *testing.T) {
	t.Parallel()

	set, err := rules.Load()
	if err != nil {
		t.Fatalf("expected tables to load, got %v", err)
	}
	scorer := NewTitleScorer(fixedPolarity{}, set)

	_, impact, action := scorer.Components("Major Strike Halts Shipping as Markets Plunge")
	if impact <= 0 {
		t.Fatalf("expected positive impact for strike coverage, got %v", impact)
	}
	if action == 0 {
		t.Fatal("expected a nonzero action signal from markets")
	}
}

func TestAxisScoreClampsToBand(t *testing.T) {
	t.Parallel()

	high := wordPatterns("a1", "a2", "a3", "a4", "a5", "a6", "a7")
	got := axisScore("a1 a2 a3 a4 a5 a6 a7", high, nil)
	if got != 5 {
		t.Fatalf("expected clamp at 5, got %v", got)
	}

	low := wordPatterns("b1", "b2", "b3", "b4", "b5", "b6")
	got = axisScore("b1 b2 b3 b4 b5 b6", nil, low)
	if got != -5 {
		t.Fatalf("expected clamp at -5, got %v", got)
	}
}

func TestAxisScoreCountsKeywordOnce(t *testing.T) {
	t.Parallel()

	got := axisScore("crisis after crisis after crisis", wordPatterns("crisis"), nil)
	if got != 1 {
		t.Fatalf("expected one hit per keyword, got %v", got)
	}
}

func TestStoryKeywordScoreSubstringContainment(t *testing.T) {
	t.Parallel()

	keywords := []string{"war", "economy", "trade deal", ""}
	got := StoryKeywordScore("Warnings mount", "analysts fear for the economy", keywords)
	if got != 2 {
		t.Fatalf("expected war+economy to count, got %d", got)
	}
}

func TestStoryKeywordScoreLowercasesInput(t *testing.T) {
	t.Parallel()

	got := StoryKeywordScore("ECONOMY IN FOCUS", "", []string{"economy"})
	if got != 1 {
		t.Fatalf("expected case-insensitive containment, got %d", got)
	}
}
