// Package sources resolves article URLs to human-readable outlet names.
package sources

import (
	"net/url"
	"strings"

	"horse.fit/bulletin/internal/rules"
)

// Resolver maps registrable domain tokens to display names using a fixed
// lookup table, falling back to a capitalized domain token.
type Resolver struct {
	mappings map[string]string
}

func NewResolver(mappings map[string]string) *Resolver {
	return &Resolver{mappings: mappings}
}

// DisplayName returns the outlet name for an article URL, or "" when no
// domain token can be extracted.
func (r *Resolver) DisplayName(rawURL string) string {
	token := domainToken(rawURL)
	if token == "" {
		return ""
	}
	if r != nil {
		if name, ok := r.mappings[token]; ok {
			return name
		}
	}
	return rules.TitleCase(token)
}

// Secondary suffixes under two-letter country codes, as in bbc.co.uk.
var secondarySuffixes = map[string]struct{}{
	"co":  {},
	"com": {},
	"org": {},
	"net": {},
	"ac":  {},
	"gov": {},
	"edu": {},
}

// domainToken extracts the registrable core label of a URL's hostname:
// "https://news.bbc.co.uk/x" yields "bbc".
func domainToken(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		// Tolerate bare hostnames without a scheme.
		host = strings.ToLower(trimmed)
		if i := strings.IndexAny(host, "/?#"); i >= 0 {
			host = host[:i]
		}
		if strings.ContainsAny(host, " \t") {
			return ""
		}
	}
	host = strings.TrimSuffix(host, ".")

	labels := strings.Split(host, ".")
	if len(labels) == 1 {
		return labels[0]
	}

	last := labels[len(labels)-1]
	secondToLast := labels[len(labels)-2]
	if len(labels) >= 3 && len(last) == 2 {
		if _, ok := secondarySuffixes[secondToLast]; ok {
			return labels[len(labels)-3]
		}
	}
	return secondToLast
}
