package pipeline

import (
	"context"
	"errors"

	"horse.fit/bulletin/internal/news"
)

// RunResult carries per-stage counts for the run summary.
type RunResult struct {
	ArticlesIn int
	Kept       int
	Clusters   int
	Stories    int
	Days       int
}

// BuildDigest runs the full pipeline over one article batch: filter,
// cluster, aggregate, group, summarize. An empty batch produces an
// empty digest, not an error; past input validation the pipeline only
// degrades, it does not fail.
func (s *Service) BuildDigest(ctx context.Context, articles []*news.Article) (*news.Digest, RunResult, error) {
	if s == nil || s.res.Rules == nil {
		return nil, RunResult{}, errors.New("digest service is not initialized")
	}

	result := RunResult{ArticlesIn: len(articles)}
	if len(articles) == 0 {
		s.res.Logger.Info().Msg("no articles to digest")
		return &news.Digest{Days: []news.DigestDay{}}, result, nil
	}

	filtered := s.prepareArticles(articles)
	result.Kept = len(filtered.Kept)
	if len(filtered.Kept) == 0 {
		s.res.Logger.Info().
			Int("articles", len(articles)).
			Msg("no articles survived filtering")
		return &news.Digest{Days: []news.DigestDay{}}, result, nil
	}

	clusters := s.clusterArticles(ctx, filtered.Kept)
	result.Clusters = len(clusters)

	aggregated := s.aggregateClusters(ctx, clusters)
	result.Stories = len(aggregated.Stories)
	if len(aggregated.Stories) == 0 {
		s.res.Logger.Info().
			Int("clusters", len(clusters)).
			Msg("no clusters qualified for aggregation")
		return &news.Digest{Days: []news.DigestDay{}}, result, nil
	}

	days := s.groupStories(aggregated.Stories)
	result.Days = len(days)

	s.summarizeDigest(ctx, days)

	s.res.Logger.Info().
		Int("articles_in", result.ArticlesIn).
		Int("kept", result.Kept).
		Int("clusters", result.Clusters).
		Int("stories", result.Stories).
		Int("days", result.Days).
		Msg("digest ready")
	return &news.Digest{Days: days}, result, nil
}
