// Package rules loads the embedded keyword, tag, and lookup tables that
// drive filtering, tagging, and scoring. Tables are data: matching logic
// lives with the components that apply them.
package rules

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sentiment_lexicon.yaml
var sentimentLexiconYAML []byte

//go:embed timezones.yaml
var timezonesYAML []byte

//go:embed headline_denylist.yaml
var headlineDenylistYAML []byte

//go:embed priority_keywords.yaml
var priorityKeywordsYAML []byte

//go:embed tag_bank.yaml
var tagBankYAML []byte

//go:embed countries.yaml
var countriesYAML []byte

//go:embed source_domains.yaml
var sourceDomainsYAML []byte

//go:embed tag_stopwords.yaml
var tagStopwordsYAML []byte

//go:embed impact_keywords.yaml
var impactKeywordsYAML []byte

//go:embed action_keywords.yaml
var actionKeywordsYAML []byte

//go:embed contractions.yaml
var contractionsYAML []byte

// Tag is one topical tag with its precompiled keyword patterns. Declaration
// order in the table is significant: it breaks ranking ties.
type Tag struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Country pairs a lowercase match pattern with its display form.
type Country struct {
	Name    string
	Display string
	Pattern *regexp.Regexp
}

// Set bundles every embedded table, compiled and ready to match.
type Set struct {
	SentimentLexicon map[string]float64
	Timezones        map[string]string
	HeadlineDenylist []*regexp.Regexp
	PriorityKeywords []string
	Tags             []Tag
	Countries        []Country
	SourceDomains    map[string]string
	TagStopwords     map[string]struct{}
	ImpactHigh       []*regexp.Regexp
	ImpactLow        []*regexp.Regexp
	ActionHigh       []*regexp.Regexp
	ActionLow        []*regexp.Regexp
	Contractions     map[string]string
}

var (
	loadOnce sync.Once
	loaded   *Set
	loadErr  error
)

// Load parses and compiles all embedded tables. The result is shared and
// must be treated as read-only.
func Load() (*Set, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parseAll()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return loaded, nil
}

func parseAll() (*Set, error) {
	set := &Set{}

	if err := yaml.Unmarshal(sentimentLexiconYAML, &set.SentimentLexicon); err != nil {
		return nil, fmt.Errorf("parse sentiment lexicon: %w", err)
	}
	if err := yaml.Unmarshal(timezonesYAML, &set.Timezones); err != nil {
		return nil, fmt.Errorf("parse timezone table: %w", err)
	}
	if err := yaml.Unmarshal(sourceDomainsYAML, &set.SourceDomains); err != nil {
		return nil, fmt.Errorf("parse source domain table: %w", err)
	}
	if err := yaml.Unmarshal(contractionsYAML, &set.Contractions); err != nil {
		return nil, fmt.Errorf("parse contraction table: %w", err)
	}

	var denylist []string
	if err := yaml.Unmarshal(headlineDenylistYAML, &denylist); err != nil {
		return nil, fmt.Errorf("parse headline denylist: %w", err)
	}
	for _, raw := range denylist {
		pattern, err := regexp.Compile("(?i)" + raw)
		if err != nil {
			return nil, fmt.Errorf("compile denylist pattern %q: %w", raw, err)
		}
		set.HeadlineDenylist = append(set.HeadlineDenylist, pattern)
	}

	if err := yaml.Unmarshal(priorityKeywordsYAML, &set.PriorityKeywords); err != nil {
		return nil, fmt.Errorf("parse priority keywords: %w", err)
	}
	for i, keyword := range set.PriorityKeywords {
		set.PriorityKeywords[i] = strings.ToLower(strings.TrimSpace(keyword))
	}

	var bank []struct {
		Tag      string   `yaml:"tag"`
		Keywords []string `yaml:"keywords"`
	}
	if err := yaml.Unmarshal(tagBankYAML, &bank); err != nil {
		return nil, fmt.Errorf("parse tag bank: %w", err)
	}
	for _, entry := range bank {
		tag := Tag{Name: entry.Tag}
		for _, keyword := range entry.Keywords {
			pattern, err := keywordPattern(keyword)
			if err != nil {
				return nil, fmt.Errorf("compile tag %q keyword %q: %w", entry.Tag, keyword, err)
			}
			tag.Patterns = append(tag.Patterns, pattern)
		}
		set.Tags = append(set.Tags, tag)
	}

	var countries []string
	if err := yaml.Unmarshal(countriesYAML, &countries); err != nil {
		return nil, fmt.Errorf("parse country table: %w", err)
	}
	for _, name := range countries {
		pattern, err := keywordPattern(name)
		if err != nil {
			return nil, fmt.Errorf("compile country %q: %w", name, err)
		}
		set.Countries = append(set.Countries, Country{
			Name:    name,
			Display: TitleCase(name),
			Pattern: pattern,
		})
	}

	var stopwords []string
	if err := yaml.Unmarshal(tagStopwordsYAML, &stopwords); err != nil {
		return nil, fmt.Errorf("parse tag stopwords: %w", err)
	}
	set.TagStopwords = make(map[string]struct{}, len(stopwords))
	for _, word := range stopwords {
		set.TagStopwords[strings.ToLower(word)] = struct{}{}
	}

	var err error
	set.ImpactHigh, set.ImpactLow, err = parseHighLow(impactKeywordsYAML, "impact")
	if err != nil {
		return nil, err
	}
	set.ActionHigh, set.ActionLow, err = parseHighLow(actionKeywordsYAML, "action")
	if err != nil {
		return nil, err
	}

	return set, nil
}

func parseHighLow(raw []byte, tableName string) (high, low []*regexp.Regexp, err error) {
	var table struct {
		High []string `yaml:"high"`
		Low  []string `yaml:"low"`
	}
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, nil, fmt.Errorf("parse %s keywords: %w", tableName, err)
	}
	for _, keyword := range table.High {
		pattern, err := keywordPattern(keyword)
		if err != nil {
			return nil, nil, fmt.Errorf("compile %s high keyword %q: %w", tableName, keyword, err)
		}
		high = append(high, pattern)
	}
	for _, keyword := range table.Low {
		pattern, err := keywordPattern(keyword)
		if err != nil {
			return nil, nil, fmt.Errorf("compile %s low keyword %q: %w", tableName, keyword, err)
		}
		low = append(low, pattern)
	}
	return high, low, nil
}

// keywordPattern builds a case-insensitive word-boundary matcher for a
// literal keyword or phrase.
func keywordPattern(keyword string) (*regexp.Regexp, error) {
	literal := regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(keyword)))
	return regexp.Compile(`(?i)\b` + literal + `\b`)
}

// TitleCase uppercases the first letter of each space-separated word and
// lowercases the rest, mirroring how country tags are displayed.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
