package search

import (
	"sort"
	"strings"

	"interview-prep/internal/content"
)

// MaxResults caps every search, whatever limit the caller asks for.
const MaxResults = 50

const (
	weightTitleEqual      = 100
	weightTitlePrefix     = 60
	weightTitleContains   = 40
	weightKeywordEqual    = 30
	weightKeywordContains = 15
	weightTermInTitle     = 20
	weightDescription     = 10
	weightCategory        = 5
	weightFuzzyTitle      = 2

	minFuzzyTermLength = 3
)

type Options struct {
	Type  content.ItemType
	Limit int
}

type Result struct {
	Item  content.SearchItem `json:"item"`
	Score int                `json:"score"`
}

type entry struct {
	item        content.SearchItem
	title       string
	description string
	category    string
	keywords    []string
}

// Index holds the lowercased fields of a fixed item list. It is read only
// after NewIndex returns and safe for concurrent use.
type Index struct {
	entries []entry
}

func NewIndex(items []content.SearchItem) *Index {
	entries := make([]entry, 0, len(items))
	for _, item := range items {
		keywords := make([]string, 0, len(item.Keywords))
		for _, keyword := range item.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
		entries = append(entries, entry{
			item:        item,
			title:       strings.ToLower(item.Title),
			description: strings.ToLower(item.Description),
			category:    strings.ToLower(string(item.Category)),
			keywords:    keywords,
		})
	}
	return &Index{entries: entries}
}

func (idx *Index) Len() int {
	return len(idx.entries)
}

// Search scores every item against query and returns the matches ordered by
// score, then title, then id.
func (idx *Index) Search(query string, opts Options) []Result {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}
	terms := strings.Fields(normalized)

	limit := opts.Limit
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	results := make([]Result, 0)
	for _, e := range idx.entries {
		if opts.Type != "" && e.item.Type != opts.Type {
			continue
		}
		score := e.score(normalized, terms)
		if score == 0 {
			continue
		}
		results = append(results, Result{Item: e.item, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Item.Title != results[j].Item.Title {
			return results[i].Item.Title < results[j].Item.Title
		}
		return results[i].Item.ID < results[j].Item.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Normalize lowercases query, trims it and collapses inner whitespace.
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (e entry) score(query string, terms []string) int {
	score := 0
	switch {
	case e.title == query:
		score += weightTitleEqual
	case strings.HasPrefix(e.title, query):
		score += weightTitlePrefix
	case strings.Contains(e.title, query):
		score += weightTitleContains
	}

	multiTerm := len(terms) > 1
	for _, term := range terms {
		termScore := e.keywordScore(term)
		if multiTerm && strings.Contains(e.title, term) {
			termScore += weightTermInTitle
		}
		if strings.Contains(e.description, term) {
			termScore += weightDescription
		}
		if strings.Contains(e.category, term) {
			termScore += weightCategory
		}
		if termScore == 0 && len(term) >= minFuzzyTermLength && isSubsequence(term, e.title) {
			termScore = weightFuzzyTitle
		}
		score += termScore
	}
	return score
}

func (e entry) keywordScore(term string) int {
	best := 0
	for _, keyword := range e.keywords {
		if keyword == term {
			return weightKeywordEqual
		}
		if best == 0 && strings.Contains(keyword, term) {
			best = weightKeywordContains
		}
	}
	return best
}

// isSubsequence reports whether every rune of needle appears in haystack in
// order, not necessarily adjacent.
func isSubsequence(needle, haystack string) bool {
	rest := []rune(needle)
	if len(rest) == 0 {
		return true
	}
	for _, r := range haystack {
		if r == rest[0] {
			rest = rest[1:]
			if len(rest) == 0 {
				return true
			}
		}
	}
	return false
}
