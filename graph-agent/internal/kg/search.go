package kg

import "strings"

// DefaultSearchHops is how far Search expands from each matched entity.
const DefaultSearchHops = 2

// Searcher answers free-text queries from a Store by exact token matching.
type Searcher struct {
	store *Store
	hops  int
}

// NewSearcher builds a Searcher. hops <= 0 selects DefaultSearchHops.
func NewSearcher(store *Store, hops int) *Searcher {
	if hops <= 0 {
		hops = DefaultSearchHops
	}
	return &Searcher{store: store, hops: hops}
}

// Search returns the union of neighbours of every whitespace-delimited token
// of query, deduplicated, in first-seen order.
func (s *Searcher) Search(query string) []string {
	return s.SearchHops(query, s.hops)
}

// SearchHops is Search with an explicit radius.
func (s *Searcher) SearchHops(query string, hops int) []string {
	seen := make(map[string]struct{})
	results := []string{}
	for _, token := range strings.Fields(query) {
		for _, e := range s.store.Neighbors(token, hops) {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			results = append(results, e)
		}
	}
	return results
}

// MatchedEntities lists the query tokens that name an entity in the graph.
func (s *Searcher) MatchedEntities(query string) []string {
	var matched []string
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(query) {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if s.store.HasEntity(token) {
			matched = append(matched, token)
		}
	}
	return matched
}
