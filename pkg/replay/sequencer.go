package replay

import (
	"github.com/DrSkyle/proofscope/pkg/graph"
)

// Sequencer reveals nodes one at a time in reading order, together with
// every edge whose endpoints are both revealed.
// It is not safe for concurrent use; Player serializes access.
type Sequencer struct {
	ordered []string
	edges   []graph.Edge

	visibleNodes map[string]struct{}
	visibleEdges map[graph.EdgeKey]struct{}
	revealed     []string
}

// New snapshots the ordered node ids and edges of ix.
func New(ix *graph.Index) *Sequencer {
	ordered := make([]string, len(ix.Nodes))
	for i, n := range ix.Nodes {
		ordered[i] = n.ID
	}
	return NewSequencer(ordered, ix.Edges)
}

// NewSequencer builds a sequencer over ids already in reading order.
func NewSequencer(ordered []string, edges []graph.Edge) *Sequencer {
	s := &Sequencer{
		ordered: append([]string(nil), ordered...),
		edges:   append([]graph.Edge(nil), edges...),
	}
	s.Reset()
	return s
}

// Tick reveals the next node. It returns the id and true, or false once
// every node is visible; further calls change nothing.
func (s *Sequencer) Tick() (string, bool) {
	if s.Done() {
		return "", false
	}
	next := s.ordered[len(s.revealed)]
	s.visibleNodes[next] = struct{}{}
	s.revealed = append(s.revealed, next)

	// Full rescan: an edge may become revealable on an endpoint added ticks ago.
	for _, e := range s.edges {
		if _, ok := s.visibleNodes[e.Source]; !ok {
			continue
		}
		if _, ok := s.visibleNodes[e.Target]; !ok {
			continue
		}
		s.visibleEdges[e.Key()] = struct{}{}
	}
	return next, true
}

// Reset empties both visible sets.
func (s *Sequencer) Reset() {
	s.visibleNodes = make(map[string]struct{}, len(s.ordered))
	s.visibleEdges = make(map[graph.EdgeKey]struct{})
	s.revealed = nil
}

// Done reports whether every node has been revealed.
func (s *Sequencer) Done() bool {
	return len(s.revealed) >= len(s.ordered)
}

// Len returns the total number of nodes in the sequence.
func (s *Sequencer) Len() int {
	return len(s.ordered)
}

// Cursor returns how many nodes have been revealed.
func (s *Sequencer) Cursor() int {
	return len(s.revealed)
}

func (s *Sequencer) NodeVisible(id string) bool {
	_, ok := s.visibleNodes[id]
	return ok
}

func (s *Sequencer) EdgeVisible(k graph.EdgeKey) bool {
	_, ok := s.visibleEdges[k]
	return ok
}

// VisibleEdgeCount returns the number of revealed edges.
func (s *Sequencer) VisibleEdgeCount() int {
	return len(s.visibleEdges)
}
