package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"horse.fit/bulletin/internal/cli"
	"horse.fit/bulletin/internal/config"
	"horse.fit/bulletin/internal/embed"
	"horse.fit/bulletin/internal/gemini"
	"horse.fit/bulletin/internal/langdetect"
	"horse.fit/bulletin/internal/logging"
	"horse.fit/bulletin/internal/news"
	"horse.fit/bulletin/internal/nlp"
	"horse.fit/bulletin/internal/pipeline"
	"horse.fit/bulletin/internal/rules"
	"horse.fit/bulletin/internal/sentiment"
	"horse.fit/bulletin/internal/sources"
	payloadschema "horse.fit/bulletin/schema"
)

func runDigest(args []string) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	input := fs.String("input", "", "Path to the article batch JSON file (default: stdin)")
	out := fs.String("out", "", "Path for the digest JSON output (default: stdout)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "digest does not accept positional arguments")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	raw, err := readInput(strings.TrimSpace(*input))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read article batch: %v\n", err)
		return 2
	}

	batch, err := payloadschema.ValidateBatchPayload(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid article batch: %v\n", err)
		return 2
	}

	articles := loadArticles(batch)

	set, err := rules.Load()
	if err != nil {
		logger.Error().Err(err).Msg("rule tables failed to load")
		return 1
	}
	cleaner, err := nlp.NewCleaner(set.Contractions)
	if err != nil {
		logger.Error().Err(err).Msg("contraction table failed to compile")
		return 1
	}

	ctx := context.Background()
	generator, err := gemini.NewClient(ctx, gemini.Options{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GenerationModel,
	})
	if err != nil {
		logger.Error().Err(err).Msg("generation client failed to initialize")
		return 1
	}

	service := pipeline.NewService(pipeline.Resources{
		Embedder: embed.NewClient(embed.Options{
			Endpoint:       cfg.EmbeddingEndpoint,
			BatchSize:      cfg.EmbeddingBatchSize,
			MaxLength:      cfg.EmbeddingMaxLength,
			RequestTimeout: cfg.EmbeddingTimeout,
		}),
		Generator: generator,
		Entities:  nlp.NewExtractor(),
		Polarity:  sentiment.NewScorer(set.SentimentLexicon),
		Sources:   sources.NewResolver(set.SourceDomains),
		Rules:     set,
		Cleaner:   cleaner,
		Logger:    logger,
	}, pipeline.Options{
		SummaryBatchSize:    cfg.SummaryBatchSize,
		SummaryBatchTimeout: cfg.SummaryBatchTimeout,
	})

	digest, result, err := service.BuildDigest(ctx, articles)
	if err != nil {
		logger.Error().Err(err).Msg("digest build failed")
		return 1
	}

	encoded, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("digest serialization failed")
		return 1
	}
	encoded = append(encoded, '\n')

	if path := strings.TrimSpace(*out); path != "" {
		if err := os.WriteFile(path, encoded, 0o644); err != nil {
			logger.Error().Err(err).Msg("digest write failed")
			return 1
		}
	} else if _, err := os.Stdout.Write(encoded); err != nil {
		logger.Error().Err(err).Msg("digest write failed")
		return 1
	}

	fmt.Fprintf(
		os.Stderr,
		"digest articles=%d kept=%d clusters=%d stories=%d days=%d\n",
		result.ArticlesIn,
		result.Kept,
		result.Clusters,
		result.Stories,
		result.Days,
	)
	return 0
}

func readInput(path string) (json.RawMessage, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// loadArticles converts validated batch records into pipeline articles,
// resolving each record's content origin and annotating each one with a
// normalized or detected language code.
func loadArticles(batch *payloadschema.Batch) []*news.Article {
	articles := make([]*news.Article, 0, len(batch.Articles))
	for _, record := range batch.Articles {
		article := &news.Article{
			Title:          strings.TrimSpace(record.Title),
			URL:            derefString(record.URL),
			RawPublishDate: derefString(record.Published),
			Source:         derefString(record.Source),
			Language:       langdetect.NormalizeCode(derefString(record.Language)),
		}

		switch {
		case strings.TrimSpace(derefString(record.Content)) != "":
			article.Content = derefString(record.Content)
			article.Origin = news.OriginInline
		case strings.TrimSpace(derefString(record.Summary)) != "":
			article.Content = derefString(record.Summary)
			article.Origin = news.OriginSummary
		default:
			article.Content = article.Title
			article.Origin = news.OriginFetchedFallback
		}

		if article.Language == "" {
			article.Language = langdetect.DetectISO6391(languageSample(article))
		}
		articles = append(articles, article)
	}
	return articles
}

func languageSample(article *news.Article) string {
	const sampleRunes = 280
	runes := []rune(article.Title + " " + article.Content)
	if len(runes) > sampleRunes {
		runes = runes[:sampleRunes]
	}
	return string(runes)
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
