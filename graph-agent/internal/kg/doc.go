// Package kg holds the knowledge graph that stands in for a vector store.
//
// # Model
//
// Entities are plain strings. A relation edge joins an unordered pair of
// entities and carries one label; adding a second triplet for the same pair
// overwrites the label instead of adding a parallel edge. Entities come into
// existence the first time they appear as a triplet endpoint and are never
// removed.
//
// # Traversal
//
// Store.Neighbors expands breadth-first from an entity for a bounded number
// of hops and returns everything discovered, excluding the start. Unknown
// entities and a hop count of zero both yield an empty result.
//
// Searcher splits a query on whitespace and treats every token as an exact
// entity name. There is no case folding and no multi-word matching, so a
// query mentioning "Steve Jobs" matches neither "Steve" nor "Jobs" unless
// those are entities in their own right.
//
// # Persistence
//
// A Store persists through a Backend as a node-link Snapshot:
//
//	{"directed": false, "multigraph": false, "graph": {},
//	 "nodes": [{"id": "Apple"}, ...],
//	 "links": [{"source": "Apple", "target": "iPhone", "relation": "released"}, ...]}
//
// Decoding also accepts "edges" in place of "links". A backend that holds no
// snapshot reports ErrNoSnapshot, which Load treats as "no graph yet".
//
// # Concurrency
//
// Store methods are safe to call from multiple goroutines, but mutation is
// not transactional: callers ingesting documents in parallel must serialise
// their writes themselves.
package kg
