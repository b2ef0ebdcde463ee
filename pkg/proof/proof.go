package proof

import (
	"errors"
	"fmt"
	"slices"

	"github.com/DrSkyle/proofscope/pkg/graph"
)

// ErrUnknownNode is returned when proof mode is entered on an id the index does not hold.
var ErrUnknownNode = errors.New("unknown node")

// State is the proof-mode state of one session.
// The zero value is inactive and ready to use.
type State struct {
	Active   bool
	TargetID string
	Depth    int

	VisibleNodes map[string]struct{}
	VisibleEdges map[graph.EdgeKey]struct{}

	// Hops is the prerequisite hop distance of every visible node from the target.
	Hops map[string]int
}

// New returns an inactive state.
func New() *State {
	return &State{}
}

// Enter activates proof mode on target at depth 1.
func (s *State) Enter(ix *graph.Index, target string) error {
	if _, ok := ix.Node(target); !ok {
		return fmt.Errorf("enter proof mode on %q: %w", target, ErrUnknownNode)
	}
	s.Active = true
	s.TargetID = target
	s.Depth = 1
	s.Recompute(ix)
	return nil
}

// Recompute rebuilds the visible sets from the current target and depth.
// It is a no-op while inactive.
func (s *State) Recompute(ix *graph.Index) {
	if !s.Active {
		return
	}
	s.Hops = closure(ix, s.TargetID, s.Depth)
	s.VisibleNodes = make(map[string]struct{}, len(s.Hops))
	for id := range s.Hops {
		s.VisibleNodes[id] = struct{}{}
	}

	s.VisibleEdges = make(map[graph.EdgeKey]struct{})
	for id := range s.VisibleNodes {
		for _, a := range ix.Incoming[id] {
			if _, ok := s.VisibleNodes[a.S]; ok {
				s.VisibleEdges[a.Key()] = struct{}{}
			}
		}
	}
}

// UnfoldMore reveals one more prerequisite layer. It never lowers the
// depth and reports whether anything changed.
func (s *State) UnfoldMore(ix *graph.Index) bool {
	if !s.Active {
		return false
	}
	limit := MaxPrereqDepth(ix, s.TargetID)
	if limit <= s.Depth {
		return false
	}
	s.Depth = min(limit, s.Depth+1)
	s.Recompute(ix)
	return true
}

// UnfoldLess hides the outermost prerequisite layer, keeping depth >= 1.
func (s *State) UnfoldLess(ix *graph.Index) bool {
	if !s.Active {
		return false
	}
	prev := s.Depth
	s.Depth = max(1, s.Depth-1)
	s.Recompute(ix)
	return s.Depth != prev
}

// SetDepth jumps to depth n, clamped to [1, max(1, MaxPrereqDepth)].
func (s *State) SetDepth(ix *graph.Index, n int) {
	if !s.Active {
		return
	}
	upper := max(1, MaxPrereqDepth(ix, s.TargetID))
	s.Depth = min(max(1, n), upper)
	s.Recompute(ix)
}

// Exit clears the target and visible sets.
func (s *State) Exit() {
	*s = State{}
}

// NodeVisible reports whether id is part of the proof subgraph.
func (s *State) NodeVisible(id string) bool {
	_, ok := s.VisibleNodes[id]
	return ok
}

// EdgeVisible reports whether the edge with key k is part of the proof subgraph.
func (s *State) EdgeVisible(k graph.EdgeKey) bool {
	_, ok := s.VisibleEdges[k]
	return ok
}

// Nodes returns the visible nodes in reading order.
func (s *State) Nodes(ix *graph.Index) []*graph.Node {
	out := make([]*graph.Node, 0, len(s.VisibleNodes))
	for _, n := range ix.Nodes {
		if s.NodeVisible(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns the visible edges, ordered by the reading order of their
// dependent and then their prerequisite.
func (s *State) Edges(ix *graph.Index) []graph.Adjacent {
	var out []graph.Adjacent
	for _, n := range s.Nodes(ix) {
		for _, a := range ix.Incoming[n.ID] {
			if s.EdgeVisible(a.Key()) {
				out = append(out, a)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b graph.Adjacent) int {
		if c := ix.OrderIndex(a.T) - ix.OrderIndex(b.T); c != 0 {
			return c
		}
		return ix.OrderIndex(a.S) - ix.OrderIndex(b.S)
	})
	return out
}

// HopsOf returns the hop distance of a visible node from the target.
func (s *State) HopsOf(id string) (int, bool) {
	h, ok := s.Hops[id]
	return h, ok
}
