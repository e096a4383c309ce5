package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"horse.fit/bulletin/internal/globaltime"
	"horse.fit/bulletin/internal/news"
	"horse.fit/bulletin/internal/rules"
	"horse.fit/bulletin/internal/scoring"
)

const (
	minClusterMembers = 3
	maxStoryTags      = 5
	maxStorySources   = 3

	headlineMinTokens = 10
	headlineMaxTokens = 30

	// Keeps generation prompts bounded when clusters are large.
	promptInputRunes = 4000

	fallbackHeadline = "Untitled Headline"
)

type AggregateResult struct {
	Stories         []news.AggregatedHeadline
	DroppedSmall    int
	DroppedUntitled int
	DroppedDenied   int
}

// aggregateClusters turns qualifying clusters into stories: a generated
// headline, ranked tags, linked sources, and the publish time of the
// newest member. Clusters below the member floor, without any titles,
// or whose headline trips the denylist are dropped.
func (s *Service) aggregateClusters(ctx context.Context, clusters []news.StoryCluster) AggregateResult {
	var result AggregateResult

	for _, cluster := range clusters {
		if len(cluster.Members) < minClusterMembers {
			s.res.Logger.Debug().
				Int("cluster_id", cluster.ID).
				Int("members", len(cluster.Members)).
				Msg("skipping small cluster")
			result.DroppedSmall++
			continue
		}

		titles := make([]string, 0, len(cluster.Members))
		for _, member := range cluster.Members {
			if member.Title != "" {
				titles = append(titles, member.Title)
			}
		}
		if len(titles) == 0 {
			s.res.Logger.Debug().
				Int("cluster_id", cluster.ID).
				Msg("no titles found in cluster; skipping")
			result.DroppedUntitled++
			continue
		}
		combinedTitles := strings.Join(titles, " ")

		headline := s.generateHeadline(ctx, combinedTitles)
		if deniedHeadline(headline, s.res.Rules.HeadlineDenylist) {
			s.res.Logger.Debug().
				Str("headline", headline).
				Msg("skipping denied headline")
			result.DroppedDenied++
			continue
		}

		publishedAt, timeDisplay, dayLabel := s.resolveStoryTime(latestMember(cluster.Members))

		result.Stories = append(result.Stories, news.AggregatedHeadline{
			Headline:      headline,
			MetaTags:      buildTags(headline, s.res.Rules),
			Articles:      cluster.Members,
			TimeDisplay:   timeDisplay,
			Sources:       buildSourceLinks(cluster.Members, s.res.Sources),
			PublishedAt:   publishedAt,
			DayLabel:      dayLabel,
			MemberCount:   len(cluster.Members),
			PriorityScore: scoring.StoryKeywordScore(headline, combinedMemberText(cluster.Members), s.res.Rules.PriorityKeywords),
		})
	}

	s.res.Logger.Info().
		Int("clusters", len(clusters)).
		Int("stories", len(result.Stories)).
		Msg("aggregated stories")
	return result
}

// generateHeadline asks the generator for a short headline over the
// combined member titles. Failures fall back to a placeholder instead
// of dropping the cluster.
func (s *Service) generateHeadline(ctx context.Context, combinedTitles string) string {
	prompt := fmt.Sprintf(
		"Write a single news headline summarizing these related headlines. Reply with the headline only.\n\n%s",
		truncateRunes(combinedTitles, promptInputRunes),
	)

	text, err := s.res.Generator.Generate(ctx, prompt, headlineMinTokens, headlineMaxTokens)
	if err != nil {
		s.res.Logger.Warn().Err(err).Msg("headline generation failed")
		return fallbackHeadline
	}

	headline := s.res.Cleaner.FixText(text)
	headline = strings.TrimRight(strings.TrimSpace(headline), ".")
	if headline == "" {
		return fallbackHeadline
	}
	return headline
}

func deniedHeadline(headline string, denylist []*regexp.Regexp) bool {
	for _, pattern := range denylist {
		if pattern.MatchString(headline) {
			return true
		}
	}
	return false
}

// buildTags ranks tag-bank and country matches found in the headline.
// Counts rise once per matching pattern; ties keep first-match order,
// mirroring how the counter fills.
func buildTags(headline string, set *rules.Set) []string {
	text := strings.ToLower(headline)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	bump := func(name string) {
		if _, ok := counts[name]; !ok {
			firstSeen[name] = len(firstSeen)
		}
		counts[name]++
	}

	for _, tag := range set.Tags {
		for _, pattern := range tag.Patterns {
			if pattern.MatchString(text) {
				bump(tag.Name)
			}
		}
	}
	for _, country := range set.Countries {
		if country.Pattern.MatchString(text) {
			bump(country.Display)
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return firstSeen[names[i]] < firstSeen[names[j]]
	})
	if len(names) > maxStoryTags {
		names = names[:maxStoryTags]
	}

	tags := make([]string, 0, maxStoryTags)
	seen := make(map[string]struct{}, maxStoryTags)
	for _, name := range names {
		if _, stop := set.TagStopwords[strings.ToLower(name)]; stop {
			continue
		}
		if len(name) <= 1 {
			continue
		}
		rendered := "#" + strings.ReplaceAll(name, " ", "")
		if _, dup := seen[rendered]; dup {
			continue
		}
		seen[rendered] = struct{}{}
		tags = append(tags, rendered)
	}
	return tags
}

// buildSourceLinks renders up to three distinct outlets as HTML anchors
// joined by "; ". Members whose URL yields no display name are skipped.
func buildSourceLinks(members []*news.Article, resolver SourceResolver) string {
	links := make([]string, 0, maxStorySources)
	seen := make(map[string]struct{}, maxStorySources)
	for _, member := range members {
		name := resolver.DisplayName(member.URL)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		links = append(links, fmt.Sprintf("<a href=\"%s\">%s</a>", member.URL, name))
		if len(links) == maxStorySources {
			break
		}
	}
	return strings.Join(links, "; ")
}

// latestMember picks the member with the newest canonical day; the
// first one wins ties since comparison is day-granular.
func latestMember(members []*news.Article) *news.Article {
	var best *news.Article
	for _, member := range members {
		if member.PublishDate.IsZero() {
			continue
		}
		if best == nil || member.PublishDate.After(best.PublishDate) {
			best = member
		}
	}
	return best
}

// resolveStoryTime derives the display datetime for a story from its
// newest member. The raw feed date is re-parsed to recover the clock
// time the canonical day dropped; when that fails the story keeps a
// day label with an empty clock, and is never dropped. Fully
// unresolvable dates land on today's label.
func (s *Service) resolveStoryTime(member *news.Article) (*time.Time, string, string) {
	if member == nil {
		return nil, "", formatDayLabel(globaltime.Today())
	}

	if raw := strings.TrimSpace(member.RawPublishDate); raw != "" {
		_, display, err := resolvePublishDate(raw, s.res.Rules.Timezones)
		if err == nil {
			return &display, formatClock(display), formatDayLabel(display)
		}
		s.res.Logger.Warn().
			Err(err).
			Str("title", member.Title).
			Msg("story publish time re-parse failed")
		if !member.PublishDate.IsZero() {
			return nil, "", formatDayLabel(member.PublishDate)
		}
		return nil, "", formatDayLabel(globaltime.Today())
	}

	if member.PublishDate.IsZero() {
		return nil, "", formatDayLabel(globaltime.Today())
	}
	midnight := member.PublishDate
	return &midnight, formatClock(midnight), formatDayLabel(midnight)
}

func combinedMemberText(members []*news.Article) string {
	parts := make([]string, 0, len(members))
	for _, member := range members {
		if member.Preprocessed != "" {
			parts = append(parts, member.Preprocessed)
		}
	}
	return strings.Join(parts, " ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
