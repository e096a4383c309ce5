package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"horse.fit/bulletin/internal/globaltime"
	"horse.fit/bulletin/internal/langdetect"
	"horse.fit/bulletin/internal/news"
)

const (
	minTitleWords      = 4
	maxContentRunes    = 10000
	languageSampleSize = 280
)

var (
	markupPattern = regexp.MustCompile(`<.*?>`)
	urlPattern    = regexp.MustCompile(`http\S+`)
)

type FilterResult struct {
	Kept              []*news.Article
	DroppedOutside    int
	DroppedShortTitle int
	FallbackDates     int
}

// prepareArticles derives publish dates, duplicate counts, and title
// scores for the whole batch, then keeps only articles inside the
// admission window that carry a usable title. Duplicate counts and
// scores are computed before any filtering so they reflect the full
// batch.
func (s *Service) prepareArticles(articles []*news.Article) FilterResult {
	today := globaltime.Today()
	lower, upper := digestWindow(today)

	occurrences := titleOccurrences(articles)

	var result FilterResult
	for _, article := range articles {
		raw := strings.TrimSpace(article.RawPublishDate)
		if raw == "" {
			s.res.Logger.Warn().
				Str("title", article.Title).
				Msg("article has no publish date; assigning today")
			article.PublishDate = today
			result.FallbackDates++
		} else if day, _, err := resolvePublishDate(raw, s.res.Rules.Timezones); err != nil {
			s.res.Logger.Warn().
				Err(err).
				Str("title", article.Title).
				Msg("unrecognized publish date; assigning today")
			article.PublishDate = today
			result.FallbackDates++
		} else {
			article.PublishDate = day
		}

		if key := titleKey(article.Title); key != "" {
			article.DuplicateCount = occurrences[key] - 1
		}
		article.PriorityScore = s.titles.Score(article.Title)

		if !withinWindow(article.PublishDate, lower, upper) {
			s.res.Logger.Debug().
				Str("title", article.Title).
				Time("publish_date", article.PublishDate).
				Msg("skipping article outside admission window")
			result.DroppedOutside++
			continue
		}

		if !validTitle(article.Title) {
			s.res.Logger.Debug().
				Str("title", article.Title).
				Msg("skipping article with short title")
			result.DroppedShortTitle++
			continue
		}

		article.Preprocessed = preprocessContent(article.Content)
		article.Entities = s.extractEntities(article.Title)
		if article.Language == "" {
			article.Language = detectLanguage(article)
		}

		result.Kept = append(result.Kept, article)
	}

	return result
}

func (s *Service) extractEntities(title string) []string {
	entities, err := s.res.Entities.Extract(title)
	if err != nil {
		s.res.Logger.Warn().
			Err(err).
			Str("title", title).
			Msg("entity extraction failed")
		return nil
	}
	return entities
}

// preprocessContent strips markup and URLs, collapses whitespace, and
// truncates oversized bodies.
func preprocessContent(content string) string {
	text := stripMarkup(content)
	text = urlPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxContentRunes {
		text = string(runes[:maxContentRunes]) + "..."
	}
	return text
}

func stripMarkup(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return markupPattern.ReplaceAllString(content, "")
	}
	return doc.Text()
}

func detectLanguage(article *news.Article) string {
	if code := langdetect.DetectISO6391(article.Title); code != "" {
		return code
	}
	sample := []rune(article.Preprocessed)
	if len(sample) > languageSampleSize {
		sample = sample[:languageSampleSize]
	}
	return langdetect.DetectISO6391(string(sample))
}

func titleOccurrences(articles []*news.Article) map[string]int {
	counts := make(map[string]int, len(articles))
	for _, article := range articles {
		if key := titleKey(article.Title); key != "" {
			counts[key]++
		}
	}
	return counts
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func validTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	return trimmed != "" && len(strings.Fields(trimmed)) >= minTitleWords
}
