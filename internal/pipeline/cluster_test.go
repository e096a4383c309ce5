package pipeline

import (
	"context"
	"errors"
	"testing"

	"horse.fit/bulletin/internal/news"
)

func TestDBSCANDenseAndNoise(t *testing.T) {
	t.Parallel()

	points := [][]float64{
		{1, 0},
		{1, 0},
		{0.99, 0.141},
		{0, 1},
	}
	labels := dbscan(points, clusterEpsilon, clusterMinPoints)

	want := []int{0, 0, 0, labelNoise}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected labels %v, got %v", want, labels)
		}
	}
}

func TestDBSCANNumbersClustersByFirstAppearance(t *testing.T) {
	t.Parallel()

	points := [][]float64{
		{0, 1},
		{0, 1},
		{1, 0},
		{1, 0},
	}
	labels := dbscan(points, clusterEpsilon, clusterMinPoints)

	want := []int{0, 0, 1, 1}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected labels %v, got %v", want, labels)
		}
	}
}

func TestClusterArticlesPartition(t *testing.T) {
	t.Parallel()

	articles := []*news.Article{
		{Title: "alpha one"},
		{Title: "alpha two"},
		{Title: "alpha three"},
		{Title: "beta one"},
		{Title: "gamma one"},
	}
	embedder := &stubEmbedder{byText: map[string][]float64{
		"alpha one":   {1, 0},
		"alpha two":   {1, 0},
		"alpha three": {1, 0},
		"beta one":    {0, 1},
		"gamma one":   {0.7071, 0.7071},
	}}

	s := newTestService(t, Resources{Embedder: embedder}, Options{})
	clusters := s.clusterArticles(context.Background(), articles)

	if len(clusters) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(clusters))
	}
	if len(clusters[0].Members) != 3 {
		t.Fatalf("expected dense cluster of 3, got %d", len(clusters[0].Members))
	}

	seen := make(map[*news.Article]int)
	for _, cluster := range clusters {
		if len(cluster.Members) == 0 {
			t.Fatalf("cluster %d has no members", cluster.ID)
		}
		for _, member := range cluster.Members {
			seen[member]++
		}
	}
	for i, article := range articles {
		if seen[article] != 1 {
			t.Fatalf("article %d appears %d times across clusters", i, seen[article])
		}
	}
}

func TestClusterArticlesNoiseGetsUniqueNegativeIDs(t *testing.T) {
	t.Parallel()

	articles := []*news.Article{
		{Title: "beta one"},
		{Title: "gamma one"},
	}
	embedder := &stubEmbedder{byText: map[string][]float64{
		"beta one":  {0, 1},
		"gamma one": {1, 0},
	}}

	s := newTestService(t, Resources{Embedder: embedder}, Options{})
	clusters := s.clusterArticles(context.Background(), articles)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 singleton clusters, got %d", len(clusters))
	}
	if clusters[0].ID >= 0 || clusters[1].ID >= 0 || clusters[0].ID == clusters[1].ID {
		t.Fatalf("expected distinct negative ids, got %d and %d", clusters[0].ID, clusters[1].ID)
	}
}

func TestClusterArticlesEmbedFailureDegradesToSingletons(t *testing.T) {
	t.Parallel()

	articles := []*news.Article{
		{Title: "alpha one"},
		{Title: "beta one"},
		{Title: "gamma one"},
	}
	embedder := &stubEmbedder{err: errors.New("embedding service down")}

	s := newTestService(t, Resources{Embedder: embedder}, Options{})
	clusters := s.clusterArticles(context.Background(), articles)

	if len(clusters) != 3 {
		t.Fatalf("expected one singleton per article, got %d", len(clusters))
	}
	for i, cluster := range clusters {
		if len(cluster.Members) != 1 || cluster.Members[0] != articles[i] {
			t.Fatalf("cluster %d does not wrap article %d", cluster.ID, i)
		}
	}
}

func TestClusterArticlesEmptyInput(t *testing.T) {
	t.Parallel()

	s := newTestService(t, Resources{}, Options{})
	if clusters := s.clusterArticles(context.Background(), nil); clusters != nil {
		t.Fatalf("expected nil clusters, got %v", clusters)
	}
}

func TestCosineDistance(t *testing.T) {
	t.Parallel()

	if got := cosineDistance([]float64{1, 0}, []float64{1, 0}); got != 0 {
		t.Fatalf("expected zero distance, got %f", got)
	}
	if got := cosineDistance([]float64{1, 0}, []float64{0, 1}); got != 1 {
		t.Fatalf("expected distance 1, got %f", got)
	}
}
