// Package news defines the records that flow through the digest pipeline.
package news

import "time"

// ContentOrigin records which field of the incoming record supplied the
// article body. It is resolved once at load time and never re-derived.
type ContentOrigin string

const (
	// OriginInline means the record carried a full body text.
	OriginInline ContentOrigin = "inline"
	// OriginSummary means only a feed summary was available.
	OriginSummary ContentOrigin = "summary"
	// OriginFetchedFallback means neither body nor summary was supplied
	// and the title stands in for the content.
	OriginFetchedFallback ContentOrigin = "fetched_fallback"
)

// Article is one ingested news record plus the fields derived during the
// filter stage. Articles are read-only once filtering completes.
type Article struct {
	Title          string
	URL            string
	RawPublishDate string
	Source         string
	Content        string
	Origin         ContentOrigin
	Language       string

	// Derived during filtering.
	PublishDate    time.Time
	Preprocessed   string
	Entities       []string
	DuplicateCount int
	PriorityScore  float64
}

// StoryCluster groups near-duplicate articles describing one event.
// Density-reachable clusters carry dense ids starting at 0; every noise
// point becomes its own cluster with a distinct negative id.
type StoryCluster struct {
	ID      int
	Members []*Article
}

// AggregatedHeadline is one published story built from a qualifying
// cluster. Member articles are carried for downstream stages but excluded
// from serialized output.
type AggregatedHeadline struct {
	Headline      string     `json:"headline"`
	MetaTags      []string   `json:"meta_tags"`
	Articles      []*Article `json:"-"`
	TimeDisplay   string     `json:"time"`
	Sources       string     `json:"sources"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	DayLabel      string     `json:"day_label"`
	MemberCount   int        `json:"member_count"`
	PriorityScore int        `json:"priority_score"`
	Summary       string     `json:"summary"`

	// Display axes computed over the final headline text.
	Sentiment float64 `json:"sentiment"`
	Impact    float64 `json:"impact"`
	Action    float64 `json:"action"`
}

// DigestDay is one calendar day of stories, newest-priority first.
type DigestDay struct {
	Label     string               `json:"label"`
	Date      time.Time            `json:"-"`
	Headlines []AggregatedHeadline `json:"headlines"`
}

// Digest is the final day-grouped output, days ordered newest first.
type Digest struct {
	Days []DigestDay `json:"days"`
}
