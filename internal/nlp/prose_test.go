package nlp

import (
	"strings"
	"testing"
)

func TestExtractEmptyInput(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor()
	names, err := extractor.Extract("   ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no entities, got %v", names)
	}
}

func TestExtractMentionsComeFromInput(t *testing.T) {
	t.Parallel()

	input := "Barack Obama met Angela Merkel in Berlin."
	extractor := NewExtractor()
	names, err := extractor.Extract(input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			t.Fatalf("expected non-empty mentions, got %v", names)
		}
		if !strings.Contains(input, name) {
			t.Fatalf("expected mention %q to appear in input", name)
		}
	}
}

func TestFixTextExpandsContractionsAndCapitalizes(t *testing.T) {
	t.Parallel()

	cleaner, err := NewCleaner(map[string]string{
		"don't": "do not",
		"won't": "will not",
	})
	if err != nil {
		t.Fatalf("expected cleaner, got %v", err)
	}

	got := cleaner.FixText("don't panic, markets will recover.")
	if !strings.HasPrefix(got, "Do not panic") {
		t.Fatalf("expected expanded capitalized opening, got %q", got)
	}
	if strings.Contains(got, "don't") {
		t.Fatalf("expected contraction expanded, got %q", got)
	}
}

func TestFixTextTightensPunctuation(t *testing.T) {
	t.Parallel()

	cleaner, err := NewCleaner(nil)
	if err != nil {
		t.Fatalf("expected cleaner, got %v", err)
	}

	got := cleaner.FixText("rates hold steady .")
	if strings.Contains(got, " .") {
		t.Fatalf("expected punctuation attached to word, got %q", got)
	}
	if !strings.HasPrefix(got, "R") {
		t.Fatalf("expected sentence capitalized, got %q", got)
	}
}

func TestJoinTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{name: "trailing period", tokens: []string{"Fed", "raises", "rates", "."}, want: "Fed raises rates."},
		{name: "parenthetical", tokens: []string{"(", "AP", ")"}, want: "(AP)"},
		{name: "clitic", tokens: []string{"It", "'s", "over"}, want: "It's over"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := joinTokens(tc.tokens); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
