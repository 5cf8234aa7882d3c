package model

import "sort"

// EdgeKind classifies a relationship by the pair of categories involved.
type EdgeKind string

const (
	KindServiceToService    EdgeKind = "service-to-service"
	KindControllerToService EdgeKind = "controller-to-service"
	KindResolverToService   EdgeKind = "resolver-to-service"
	KindJobToService        EdgeKind = "job-to-service"
	KindServiceToDatabase   EdgeKind = "service-to-database"
	KindServiceToCloud      EdgeKind = "service-to-cloud"
	KindServiceToQueue      EdgeKind = "service-to-queue"
	KindServiceToCache      EdgeKind = "service-to-cache"
)

// ComponentRef identifies a component by category and canonical name.
type ComponentRef struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
}

// String renders the ref as "category/name" for keys and log output.
func (r ComponentRef) String() string {
	return string(r.Category) + "/" + r.Name
}

// Edge is a directed, confidence-ranked relationship between two components.
// Immutable once emitted by the inference engine.
type Edge struct {
	From     ComponentRef `json:"from"`
	To       ComponentRef `json:"to"`
	Kind     EdgeKind     `json:"kind"`
	Priority Priority     `json:"priority"`
}

// Key returns the deduplication key: edges with equal (from, to, kind) are
// the same edge regardless of priority.
func (e Edge) Key() string {
	return e.From.String() + "|" + e.To.String() + "|" + string(e.Kind)
}

// Suggestion is a candidate relationship that was not confidently inferred.
// It is carried separately from confirmed edges and never merged into them
// automatically; the rationale explains why it was surfaced.
type Suggestion struct {
	From      ComponentRef `json:"from"`
	To        ComponentRef `json:"to"`
	Kind      EdgeKind     `json:"kind"`
	Priority  Priority     `json:"priority"`
	Rationale string       `json:"rationale"`
}

// EdgeSet accumulates edges, rejecting self-loops and merging duplicates by
// keeping the highest priority observed.
type EdgeSet struct {
	edges map[string]Edge
}

// NewEdgeSet creates an empty EdgeSet.
func NewEdgeSet() *EdgeSet {
	return &EdgeSet{edges: map[string]Edge{}}
}

// Add inserts an edge into the set. Self-loops are dropped. If an edge with
// the same (from, to, kind) already exists the higher priority wins.
// Returns false when the edge was rejected as a self-loop.
func (s *EdgeSet) Add(e Edge) bool {
	if e.From == e.To {
		return false
	}
	key := e.Key()
	if existing, ok := s.edges[key]; ok {
		existing.Priority = MaxPriority(existing.Priority, e.Priority)
		s.edges[key] = existing
		return true
	}
	s.edges[key] = e
	return true
}

// Contains reports whether the set holds an edge with this exact
// (from, to, kind), at any priority.
func (s *EdgeSet) Contains(from, to ComponentRef, kind EdgeKind) bool {
	_, ok := s.edges[Edge{From: from, To: to, Kind: kind}.Key()]
	return ok
}

// Merge adds every edge from other into s.
func (s *EdgeSet) Merge(other *EdgeSet) {
	for _, e := range other.edges {
		s.Add(e)
	}
}

// Len returns the number of distinct edges in the set.
func (s *EdgeSet) Len() int {
	return len(s.edges)
}

// Edges returns the accumulated edges sorted by (from, to, kind) so output
// is diffable across runs.
func (s *EdgeSet) Edges() []Edge {
	out := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}

// SortSuggestions orders suggestions by (from, to, kind) in place, matching
// the edge ordering guarantee.
func SortSuggestions(suggestions []Suggestion) {
	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ka := a.From.String() + "|" + a.To.String() + "|" + string(a.Kind)
		kb := b.From.String() + "|" + b.To.String() + "|" + string(b.Kind)
		return ka < kb
	})
}
