package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"horse.fit/bulletin/internal/news"
)

const (
	summaryMinTokens = 40
	summaryMaxTokens = 80
	summaryMemberCap = 3

	summaryUnavailable = "Summary not available."
)

// summarizeDigest walks the grouped days, fills in story summaries, and
// finalizes each headline with its display scores. Summary generation
// degrades to a placeholder per batch; it never fails the digest.
func (s *Service) summarizeDigest(ctx context.Context, days []news.DigestDay) {
	for di := range days {
		s.fillSummaries(ctx, days[di].Headlines)
		for hi := range days[di].Headlines {
			story := &days[di].Headlines[hi]
			story.Headline = trimSourceSuffix(story.Headline)
			story.Sentiment, story.Impact, story.Action = s.titles.Components(story.Headline)
		}
	}
}

// fillSummaries generates a summary per story from the content of its
// first members. Stories without usable content get the placeholder
// up front; the rest run in timed batches, and a batch that errors or
// times out falls back to the placeholder as a unit.
func (s *Service) fillSummaries(ctx context.Context, stories []news.AggregatedHeadline) {
	type job struct {
		story *news.AggregatedHeadline
		text  string
	}

	queue := make([]job, 0, len(stories))
	for i := range stories {
		combined := summaryInput(stories[i].Articles)
		if combined == "" {
			stories[i].Summary = summaryUnavailable
			continue
		}
		queue = append(queue, job{story: &stories[i], text: combined})
	}

	fallbacks := 0
	for start := 0; start < len(queue); start += s.opts.SummaryBatchSize {
		end := min(start+s.opts.SummaryBatchSize, len(queue))
		batch := queue[start:end]

		batchCtx, cancel := context.WithTimeout(ctx, s.opts.SummaryBatchTimeout)
		grp, grpCtx := errgroup.WithContext(batchCtx)
		results := make([]string, len(batch))
		for bi, item := range batch {
			grp.Go(func() error {
				text, err := s.res.Generator.Generate(grpCtx, summaryPrompt(item.text), summaryMinTokens, summaryMaxTokens)
				if err != nil {
					return fmt.Errorf("summarize story: %w", err)
				}
				results[bi] = text
				return nil
			})
		}
		err := grp.Wait()
		cancel()

		if err != nil {
			s.res.Logger.Warn().
				Err(err).
				Int("batch_size", len(batch)).
				Msg("summary batch failed; using placeholder")
			for _, item := range batch {
				item.story.Summary = summaryUnavailable
			}
			fallbacks += len(batch)
			continue
		}
		for bi, item := range batch {
			summary := strings.TrimSpace(s.res.Cleaner.FixText(results[bi]))
			if summary == "" {
				summary = summaryUnavailable
				fallbacks++
			}
			item.story.Summary = summary
		}
	}

	if fallbacks > 0 {
		s.res.Logger.Info().
			Int("stories", len(stories)).
			Int("placeholders", fallbacks).
			Msg("summaries generated with fallbacks")
	}
}

func summaryPrompt(content string) string {
	return fmt.Sprintf(
		"Summarize the following news coverage. Reply with the summary only.\n\n%s",
		truncateRunes(content, promptInputRunes),
	)
}

// summaryInput joins the cleaned content of the first few members.
// Content is passed through preprocessing again so stitched fragments
// share one whitespace regime.
func summaryInput(members []*news.Article) string {
	limit := min(len(members), summaryMemberCap)
	parts := make([]string, 0, limit)
	for _, member := range members[:limit] {
		cleaned := preprocessContent(member.Preprocessed)
		if cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// trimSourceSuffix drops a trailing " - Outlet" attribution some
// generations append to headlines.
func trimSourceSuffix(headline string) string {
	if idx := strings.LastIndex(headline, " - "); idx != -1 {
		return headline[:idx]
	}
	return headline
}
