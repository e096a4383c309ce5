// Package pipeline turns a validated article batch into a day-grouped
// digest: filter, cluster, aggregate, group, summarize.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/bulletin/internal/nlp"
	"horse.fit/bulletin/internal/rules"
	"horse.fit/bulletin/internal/scoring"
)

const (
	DefaultSummaryBatchSize    = 8
	DefaultSummaryBatchTimeout = 60 * time.Second
)

// Embedder turns texts into unit-length vectors, one per input, in
// input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Generator produces model text for a prompt, bounded to a token band
// the adapter enforces however its backend allows.
type Generator interface {
	Generate(ctx context.Context, prompt string, minTokens, maxTokens int) (string, error)
}

// EntityExtractor pulls named-entity mentions out of a title.
type EntityExtractor interface {
	Extract(text string) ([]string, error)
}

// SourceResolver maps an article URL to an outlet display name, or ""
// when none can be derived.
type SourceResolver interface {
	DisplayName(rawURL string) string
}

// Resources bundles the capabilities the pipeline stages borrow. Every
// field is required; stage-level degradation handles runtime failures,
// not missing wiring.
type Resources struct {
	Embedder  Embedder
	Generator Generator
	Entities  EntityExtractor
	Polarity  scoring.PolarityScorer
	Sources   SourceResolver
	Rules     *rules.Set
	Cleaner   *nlp.Cleaner
	Logger    zerolog.Logger
}

type Options struct {
	SummaryBatchSize    int
	SummaryBatchTimeout time.Duration
}

type Service struct {
	res    Resources
	opts   Options
	titles *scoring.TitleScorer
}

func NewService(res Resources, opts Options) *Service {
	return &Service{
		res:    res,
		opts:   normalizeOptions(opts),
		titles: scoring.NewTitleScorer(res.Polarity, res.Rules),
	}
}

func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.SummaryBatchSize <= 0 {
		normalized.SummaryBatchSize = DefaultSummaryBatchSize
	}
	if normalized.SummaryBatchTimeout <= 0 {
		normalized.SummaryBatchTimeout = DefaultSummaryBatchTimeout
	}
	return normalized
}
