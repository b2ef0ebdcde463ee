package proof

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds n0 <- n1 <- ... <- n(k-1): n(i+1) is a prerequisite of n(i).
func chain(k int) *graph.Index {
	s := graph.NewMemoryStore()
	for i := 0; i < k; i++ {
		s.UpsertNode(graph.RawNode{ID: fmt.Sprintf("n%d", i), Position: &graph.Position{LineStart: k - i}})
		if i > 0 {
			s.AddEdge(graph.RawEdge{Source: fmt.Sprintf("n%d", i-1), Target: fmt.Sprintf("n%d", i), DependencyType: graph.DepUsesResult})
		}
	}
	return s.ApplyMutations()
}

func TestEnter_UsesResultScenario(t *testing.T) {
	s := graph.NewMemoryStore()
	s.UpsertNode(graph.RawNode{ID: "A", Position: &graph.Position{LineStart: 1}})
	s.UpsertNode(graph.RawNode{ID: "B", Position: &graph.Position{LineStart: 2}})
	s.AddEdge(graph.RawEdge{Source: "A", Target: "B", DependencyType: graph.DepUsesResult})
	ix := s.ApplyMutations()

	st := New()
	require.NoError(t, st.Enter(ix, "A"))

	assert.True(t, st.Active)
	assert.Equal(t, 1, st.Depth)
	assert.Equal(t, map[string]struct{}{"A": {}, "B": {}}, st.VisibleNodes)
	assert.True(t, st.EdgeVisible("B=>A"))
	assert.Equal(t, map[string]int{"A": 0, "B": 1}, st.Hops)
}

func TestEnter_UnknownNode(t *testing.T) {
	st := New()
	err := st.Enter(chain(2), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	assert.False(t, st.Active)
}

func TestDependentsAreNotIncluded(t *testing.T) {
	ix := chain(3)
	st := New()
	require.NoError(t, st.Enter(ix, "n1"))

	// n2 is a prerequisite of n1; n0 depends on n1 and must stay hidden.
	assert.True(t, st.NodeVisible("n2"))
	assert.False(t, st.NodeVisible("n0"))
	assert.Len(t, st.VisibleEdges, 1)
}

func TestSingletonTarget(t *testing.T) {
	ix := chain(3)
	st := New()
	require.NoError(t, st.Enter(ix, "n2"))

	assert.Equal(t, map[string]struct{}{"n2": {}}, st.VisibleNodes)
	assert.Empty(t, st.VisibleEdges)
	assert.Equal(t, 0, MaxPrereqDepth(ix, "n2"))

	for i := 0; i < 3; i++ {
		assert.False(t, st.UnfoldMore(ix))
		assert.Equal(t, 1, st.Depth)
	}
}

func TestDepthMonotonicity(t *testing.T) {
	ix := chain(6)
	st := New()
	require.NoError(t, st.Enter(ix, "n0"))
	maxDepth := MaxPrereqDepth(ix, "n0")
	require.Equal(t, 5, maxDepth)

	prev := st.VisibleNodes
	for d := 2; d <= maxDepth+2; d++ {
		changed := st.UnfoldMore(ix)
		assert.Equal(t, d <= maxDepth, changed, "depth %d", d)
		for id := range prev {
			assert.True(t, st.NodeVisible(id), "node %s vanished at depth %d", id, st.Depth)
		}
		assert.LessOrEqual(t, st.Depth, maxDepth)
		prev = st.VisibleNodes
	}
	assert.Len(t, st.VisibleNodes, 6)
}

func TestUnfoldMoreNeverShrinks(t *testing.T) {
	ix := chain(4)
	st := New()
	require.NoError(t, st.Enter(ix, "n0"))

	// Push the depth past the prerequisite bound directly.
	st.Depth = 10
	st.Recompute(ix)

	st.UnfoldMore(ix)
	assert.Equal(t, 10, st.Depth)
}

func TestUnfoldLess(t *testing.T) {
	ix := chain(4)
	st := New()
	require.NoError(t, st.Enter(ix, "n0"))
	st.UnfoldMore(ix)
	st.UnfoldMore(ix)
	require.Equal(t, 3, st.Depth)

	assert.True(t, st.UnfoldLess(ix))
	assert.Equal(t, 2, st.Depth)
	assert.False(t, st.NodeVisible("n3"))

	st.UnfoldLess(ix)
	assert.False(t, st.UnfoldLess(ix))
	assert.Equal(t, 1, st.Depth)
}

func TestSetDepthClamps(t *testing.T) {
	ix := chain(4)
	st := New()
	require.NoError(t, st.Enter(ix, "n0"))

	st.SetDepth(ix, 99)
	assert.Equal(t, 3, st.Depth)
	st.SetDepth(ix, -4)
	assert.Equal(t, 1, st.Depth)

	require.NoError(t, st.Enter(ix, "n3"))
	st.SetDepth(ix, 5)
	assert.Equal(t, 1, st.Depth)
}

func TestCyclesTerminate(t *testing.T) {
	s := graph.NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		s.UpsertNode(graph.RawNode{ID: id})
	}
	s.AddEdge(graph.RawEdge{Source: "a", Target: "b", DependencyType: graph.DepUsedIn})
	s.AddEdge(graph.RawEdge{Source: "b", Target: "c", DependencyType: graph.DepUsedIn})
	s.AddEdge(graph.RawEdge{Source: "c", Target: "a", DependencyType: graph.DepUsedIn})
	ix := s.ApplyMutations()

	assert.Equal(t, 2, MaxPrereqDepth(ix, "a"))

	st := New()
	require.NoError(t, st.Enter(ix, "a"))
	st.SetDepth(ix, 2)
	assert.Len(t, st.VisibleNodes, 3)
	assert.Len(t, st.VisibleEdges, 3)
	assert.Equal(t, map[string]int{"a": 0, "c": 1, "b": 2}, st.Hops)
}

func TestEdgesVisibleOnlyBetweenVisibleNodes(t *testing.T) {
	// d -> t, p -> d, p -> t: at depth 1 both d and p are visible, so all three edges are.
	s := graph.NewMemoryStore()
	for i, id := range []string{"p", "d", "t", "x"} {
		s.UpsertNode(graph.RawNode{ID: id, Position: &graph.Position{LineStart: i}})
	}
	s.AddEdge(graph.RawEdge{Source: "d", Target: "t", DependencyType: graph.DepUsedIn})
	s.AddEdge(graph.RawEdge{Source: "p", Target: "d", DependencyType: graph.DepUsedIn})
	s.AddEdge(graph.RawEdge{Source: "p", Target: "t", DependencyType: graph.DepUsedIn})
	s.AddEdge(graph.RawEdge{Source: "t", Target: "x", DependencyType: graph.DepUsedIn})
	ix := s.ApplyMutations()

	st := New()
	require.NoError(t, st.Enter(ix, "t"))

	assert.Len(t, st.VisibleEdges, 3)
	assert.False(t, st.EdgeVisible("t=>x"))

	edges := st.Edges(ix)
	require.Len(t, edges, 3)
	assert.Equal(t, graph.Adjacent{S: "p", T: "d", Dep: graph.DepUsedIn}, edges[0])

	var ids []string
	for _, n := range st.Nodes(ix) {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"p", "d", "t"}, ids)
}

func TestExit(t *testing.T) {
	ix := chain(3)
	st := New()
	require.NoError(t, st.Enter(ix, "n0"))
	st.Exit()

	assert.False(t, st.Active)
	assert.Empty(t, st.TargetID)
	assert.Empty(t, st.VisibleNodes)
	assert.False(t, st.UnfoldMore(ix))

	st.Recompute(ix)
	assert.Empty(t, st.VisibleNodes)
}
