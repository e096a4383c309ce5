package pipeline

import (
	"context"

	"horse.fit/bulletin/internal/news"
)

const (
	clusterEpsilon   = 0.25
	clusterMinPoints = 2
)

// Internal density labels.
const (
	labelUnclassified = -2
	labelNoise        = -1
)

// clusterArticles embeds kept titles and groups them by density over
// cosine distance. Noise points become singleton clusters with negative
// ids so no article is lost. Embedding failure degrades the whole batch
// to singletons rather than aborting the digest.
func (s *Service) clusterArticles(ctx context.Context, articles []*news.Article) []news.StoryCluster {
	if len(articles) == 0 {
		s.res.Logger.Warn().Msg("no articles available for clustering")
		return nil
	}

	titles := make([]string, 0, len(articles))
	for _, article := range articles {
		titles = append(titles, article.Title)
	}

	vectors, err := s.res.Embedder.EmbedTexts(ctx, titles)
	if err != nil {
		s.res.Logger.Warn().
			Err(err).
			Int("articles", len(articles)).
			Msg("title embedding failed; treating every article as its own story")
		return singletonClusters(articles)
	}

	labels := dbscan(vectors, clusterEpsilon, clusterMinPoints)

	order := make([]int, 0, len(labels))
	members := make(map[int][]*news.Article, len(labels))
	for idx, label := range labels {
		id := label
		if label == labelNoise {
			id = -(idx + 1)
		}
		if _, seen := members[id]; !seen {
			order = append(order, id)
		}
		members[id] = append(members[id], articles[idx])
	}

	clusters := make([]news.StoryCluster, 0, len(order))
	for _, id := range order {
		clusters = append(clusters, news.StoryCluster{ID: id, Members: members[id]})
	}

	s.res.Logger.Info().
		Int("articles", len(articles)).
		Int("clusters", len(clusters)).
		Msg("clustering complete")
	return clusters
}

// dbscan labels each point with a dense cluster id or the noise label.
// Points are visited in input order, so labeling is deterministic for a
// given batch.
func dbscan(points [][]float64, eps float64, minPoints int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = labelUnclassified
	}

	next := 0
	for i := range points {
		if labels[i] != labelUnclassified {
			continue
		}

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPoints {
			labels[i] = labelNoise
			continue
		}

		labels[i] = next
		queue := append([]int(nil), neighbors...)
		for head := 0; head < len(queue); head++ {
			j := queue[head]
			if labels[j] == labelNoise {
				labels[j] = next
			}
			if labels[j] != labelUnclassified {
				continue
			}
			labels[j] = next

			reachable := regionQuery(points, j, eps)
			if len(reachable) >= minPoints {
				queue = append(queue, reachable...)
			}
		}
		next++
	}

	return labels
}

// regionQuery returns the indices within eps of idx, the point itself
// included.
func regionQuery(points [][]float64, idx int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if cosineDistance(points[idx], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// cosineDistance assumes unit-length vectors.
func cosineDistance(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return 1 - dot
}

func singletonClusters(articles []*news.Article) []news.StoryCluster {
	clusters := make([]news.StoryCluster, 0, len(articles))
	for idx, article := range articles {
		clusters = append(clusters, news.StoryCluster{
			ID:      -(idx + 1),
			Members: []*news.Article{article},
		})
	}
	return clusters
}
