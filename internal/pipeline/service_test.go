package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/bulletin/internal/globaltime"
	"horse.fit/bulletin/internal/news"
	"horse.fit/bulletin/internal/nlp"
	"horse.fit/bulletin/internal/rules"
)

type stubEmbedder struct {
	byText map[string][]float64
	err    error
	calls  int
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float64, 0, len(texts))
	for _, text := range texts {
		vector, ok := s.byText[text]
		if !ok {
			vector = []float64{1, 0}
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

type stubGenerator struct {
	mu      sync.Mutex
	reply   func(prompt string) (string, error)
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _, _ int) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	reply := g.reply
	g.mu.Unlock()
	if reply == nil {
		return "generated text", nil
	}
	return reply(prompt)
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type stubEntities struct {
	err error
}

func (s stubEntities) Extract(string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

type stubPolarity struct {
	byText map[string]float64
}

func (s stubPolarity) Compound(text string) float64 {
	return s.byText[text]
}

type stubSources struct {
	byURL map[string]string
}

func (s stubSources) DisplayName(rawURL string) string {
	return s.byURL[rawURL]
}

func newTestService(t *testing.T, res Resources, opts Options) *Service {
	t.Helper()

	set, err := rules.Load()
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if res.Rules == nil {
		res.Rules = set
	}
	if res.Cleaner == nil {
		cleaner, err := nlp.NewCleaner(set.Contractions)
		if err != nil {
			t.Fatalf("build cleaner: %v", err)
		}
		res.Cleaner = cleaner
	}
	if res.Embedder == nil {
		res.Embedder = &stubEmbedder{}
	}
	if res.Generator == nil {
		res.Generator = &stubGenerator{}
	}
	if res.Entities == nil {
		res.Entities = stubEntities{}
	}
	if res.Polarity == nil {
		res.Polarity = stubPolarity{}
	}
	if res.Sources == nil {
		res.Sources = stubSources{}
	}
	res.Logger = zerolog.Nop()
	return NewService(res, opts)
}

func TestBuildDigestUninitialized(t *testing.T) {
	t.Parallel()

	var s *Service
	if _, _, err := s.BuildDigest(context.Background(), nil); err == nil {
		t.Fatal("expected error for uninitialized service")
	}
}

func TestBuildDigestEmptyBatch(t *testing.T) {
	t.Parallel()

	s := newTestService(t, Resources{}, Options{})
	digest, result, err := s.BuildDigest(context.Background(), nil)
	if err != nil {
		t.Fatalf("build digest: %v", err)
	}
	if len(digest.Days) != 0 {
		t.Fatalf("expected empty digest, got %d days", len(digest.Days))
	}
	if result.ArticlesIn != 0 || result.Kept != 0 {
		t.Fatalf("unexpected result counts: %+v", result)
	}
}

// Mutates the shared clock; must not run in parallel.
func TestBuildDigestEndToEnd(t *testing.T) {
	globaltime.SetMockTime(time.Date(2025, 5, 6, 12, 0, 0, 0, globaltime.Reference()))
	defer globaltime.ResetTime()

	makeArticles := func() []*news.Article {
		return []*news.Article{
			{
				Title:          "Fed Raises Interest Rates Again",
				URL:            "https://one.example/fed",
				RawPublishDate: "2025-05-05 10:00:00",
				Content:        "<p>The central bank lifted its benchmark rate.</p>",
			},
			{
				Title:          "Federal Reserve Lifts Benchmark Rate",
				URL:            "https://two.example/fed",
				RawPublishDate: "2025-05-05 11:30:00",
				Content:        "Borrowing costs rise across the board.",
			},
			{
				Title:          "Fed Hikes Rates In Surprise Move",
				URL:            "https://three.example/fed",
				RawPublishDate: "2025-05-04 09:00:00",
				Content:        "Markets reacted sharply to the decision.",
			},
			{
				Title:          "Local Team Wins Championship Game Finally",
				URL:            "https://four.example/sports",
				RawPublishDate: "2025-05-05 08:00:00",
				Content:        "A long awaited victory for the home side.",
			},
			{
				Title:          "New Museum Opens Downtown This Week",
				URL:            "https://five.example/arts",
				RawPublishDate: "2025-05-05 09:00:00",
				Content:        "The gallery opens its doors to visitors.",
			},
		}
	}

	embedder := &stubEmbedder{byText: map[string][]float64{
		"Fed Raises Interest Rates Again":           {1, 0},
		"Federal Reserve Lifts Benchmark Rate":      {1, 0},
		"Fed Hikes Rates In Surprise Move":          {1, 0},
		"Local Team Wins Championship Game Finally": {0, 1},
		"New Museum Opens Downtown This Week":       {0.7071, 0.7071},
	}}
	generator := &stubGenerator{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Summarize") {
			return "The central bank raised its benchmark rate and markets moved.", nil
		}
		return "Central Bank Raises Benchmark Rate Once More.", nil
	}}
	sources := stubSources{byURL: map[string]string{
		"https://one.example/fed":   "One Wire",
		"https://two.example/fed":   "Two Wire",
		"https://three.example/fed": "One Wire",
	}}

	s := newTestService(t, Resources{Embedder: embedder, Generator: generator, Sources: sources}, Options{})
	digest, result, err := s.BuildDigest(context.Background(), makeArticles())
	if err != nil {
		t.Fatalf("build digest: %v", err)
	}

	if result.ArticlesIn != 5 || result.Kept != 5 {
		t.Fatalf("unexpected filter counts: %+v", result)
	}
	if result.Clusters != 3 {
		t.Fatalf("expected 3 clusters, got %d", result.Clusters)
	}
	if result.Stories != 1 || result.Days != 1 {
		t.Fatalf("expected a single story on a single day, got %+v", result)
	}

	if len(digest.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(digest.Days))
	}
	day := digest.Days[0]
	if day.Label != "Monday, May 5, 2025" {
		t.Fatalf("unexpected day label: %q", day.Label)
	}
	if len(day.Headlines) != 1 {
		t.Fatalf("expected 1 headline, got %d", len(day.Headlines))
	}

	story := day.Headlines[0]
	if story.MemberCount != 3 {
		t.Fatalf("expected 3 members, got %d", story.MemberCount)
	}
	if got := strings.ToLower(story.Headline); got != "central bank raises benchmark rate once more" {
		t.Fatalf("unexpected headline: %q", story.Headline)
	}
	if story.TimeDisplay != "10:00AM" {
		t.Fatalf("unexpected time display: %q", story.TimeDisplay)
	}
	if !strings.Contains(story.Sources, `<a href="https://one.example/fed">One Wire</a>`) {
		t.Fatalf("expected source anchor, got %q", story.Sources)
	}
	if strings.Count(story.Sources, "<a ") != 2 {
		t.Fatalf("expected 2 distinct sources, got %q", story.Sources)
	}
	if len(story.MetaTags) > 5 {
		t.Fatalf("expected at most 5 tags, got %v", story.MetaTags)
	}
	for _, tag := range story.MetaTags {
		if !strings.HasPrefix(tag, "#") || strings.Contains(tag, " ") {
			t.Fatalf("malformed tag %q in %v", tag, story.MetaTags)
		}
	}
	if story.Summary == "" || story.Summary == summaryUnavailable {
		t.Fatalf("expected a generated summary, got %q", story.Summary)
	}

	second, _, err := s.BuildDigest(context.Background(), makeArticles())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	firstJSON, err := json.Marshal(digest)
	if err != nil {
		t.Fatalf("marshal first digest: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second digest: %v", err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatalf("expected identical digests across runs:\n%s\n%s", firstJSON, secondJSON)
	}
}
