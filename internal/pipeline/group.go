package pipeline

import (
	"sort"

	"horse.fit/bulletin/internal/globaltime"
	"horse.fit/bulletin/internal/news"
)

// groupStories buckets stories under their day heading, orders each
// day's stories by cluster size then priority, and orders the days
// newest first. The heading comes from the resolved datetime when one
// exists, else the story's own day label, else today.
func (s *Service) groupStories(stories []news.AggregatedHeadline) []news.DigestDay {
	labels := make([]string, 0)
	buckets := make(map[string][]news.AggregatedHeadline)

	for _, story := range stories {
		label := story.DayLabel
		if story.PublishedAt != nil {
			label = formatDayLabel(*story.PublishedAt)
		}
		if label == "" {
			label = formatDayLabel(globaltime.Today())
		}
		if _, ok := buckets[label]; !ok {
			labels = append(labels, label)
		}
		buckets[label] = append(buckets[label], story)
	}

	days := make([]news.DigestDay, 0, len(labels))
	for _, label := range labels {
		group := buckets[label]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].MemberCount != group[j].MemberCount {
				return group[i].MemberCount > group[j].MemberCount
			}
			return group[i].PriorityScore > group[j].PriorityScore
		})
		days = append(days, news.DigestDay{
			Label:     label,
			Date:      parseDayLabel(label),
			Headlines: group,
		})
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})

	s.res.Logger.Info().
		Int("stories", len(stories)).
		Int("days", len(days)).
		Msg("grouped stories by day")
	return days
}
