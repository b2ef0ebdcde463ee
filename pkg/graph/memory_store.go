package graph

import (
	"sync"

	"github.com/DrSkyle/proofscope/pkg/sys/intern"
)

// MemoryStore is an in-memory graph storage.
type MemoryStore struct {
	mu        sync.RWMutex
	nodes     map[string]*Node
	edges     map[EdgeKey]Edge
	edgeOrder []EdgeKey
	index     *Index
	strs      *intern.Pool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]*Node),
		edges: make(map[EdgeKey]Edge),
		index: emptyIndex(),
		strs:  intern.New(),
	}
}

// UpsertNode inserts or overwrites a node by id. Nodes without an id are ignored.
func (s *MemoryStore) UpsertNode(raw RawNode) bool {
	if raw.ID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := newNode(raw)
	n.ID = s.strs.Intern(n.ID)
	n.Type = s.strs.Intern(n.Type)
	s.nodes[n.ID] = n
	return true
}

// AddEdge normalizes and stores an edge unless its key is already present.
func (s *MemoryStore) AddEdge(raw RawEdge) AddResult {
	e, ok := Normalize(raw)
	if !ok {
		return AddResult{Key: MakeEdgeKey(raw.Source, raw.Target), Dropped: true}
	}

	key := e.Key()
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check duplicates.
	if _, exists := s.edges[key]; exists {
		return AddResult{Key: key}
	}
	e.Source = s.strs.Intern(e.Source)
	e.Target = s.strs.Intern(e.Target)
	e.DependencyType = s.strs.Intern(e.DependencyType)
	s.edges[key] = e
	s.edgeOrder = append(s.edgeOrder, key)
	return AddResult{Key: key, Added: true}
}

// ApplyMutations is the single recomputation entry point.
func (s *MemoryStore) ApplyMutations() *Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges := make([]Edge, 0, len(s.edgeOrder))
	for _, k := range s.edgeOrder {
		edges = append(edges, s.edges[k])
	}
	s.index = buildIndex(s.nodes, edges)
	return s.index
}

// Reset clears nodes and edges and publishes an empty index.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]*Node)
	s.edges = make(map[EdgeKey]Edge)
	s.edgeOrder = nil
	s.strs.Reset()
	s.index = emptyIndex()
}

// Index returns the last published index.
func (s *MemoryStore) Index() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Nodes: len(s.nodes), Edges: len(s.edges)}
	for _, e := range s.edges {
		_, okS := s.nodes[e.Source]
		_, okT := s.nodes[e.Target]
		if !okS || !okT {
			st.Dangling++
		}
	}
	return st
}

// Edges returns a copy of the stored edges in insertion order.
func (s *MemoryStore) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Edge, 0, len(s.edgeOrder))
	for _, k := range s.edgeOrder {
		res = append(res, s.edges[k])
	}
	return res
}
