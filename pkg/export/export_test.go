package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/proofscope/pkg/distill"
	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/DrSkyle/proofscope/pkg/ingest"
	"github.com/DrSkyle/proofscope/pkg/proof"
)

func TestMarkdown_Golden(t *testing.T) {
	used := func(s, t string) graph.Adjacent { return graph.Adjacent{S: s, T: t, Dep: graph.DepUsedIn} }
	doc := &distill.Document{
		TargetID: "thm",
		Depth:    1,
		Entries: []distill.Entry{
			{
				Node:     &graph.Node{ID: "thm", Type: "theorem", Label: "I:2", Content: "Every subgroup order divides the group order.\n  "},
				Requires: []graph.Adjacent{used("lem", "thm"), used("def1", "thm")},
			},
			{
				Node:     &graph.Node{ID: "def1", Type: "definition", Label: "Group", Content: "A set with\nan operation."},
				Hops:     1,
				Supports: []graph.Adjacent{used("def1", "thm")},
			},
			{
				Node:     &graph.Node{ID: "lem"},
				Hops:     1,
				Supports: []graph.Adjacent{used("lem", "thm")},
			},
		},
		References: []distill.Reference{
			{Term: "Lagrange", Kind: distill.KindUndefined, ReferencedBy: []string{"thm"}},
			{
				Term:         "coset",
				Kind:         distill.KindDefinition,
				Definition:   &distill.Definition{Term: "coset", Text: "A translate of a subgroup", Source: "D&F"},
				ReferencedBy: []string{"thm", "lem"},
			},
		},
	}

	g := goldie.New(t)
	g.Assert(t, "lagrange", Markdown(doc))
}

func TestMarkdown_Empty(t *testing.T) {
	out := string(Markdown(&distill.Document{Depth: 1}))
	assert.True(t, strings.HasPrefix(out, "# Proof of (empty)\n"))
	assert.NotContains(t, out, "References")
}

func sampleIndex() *graph.Index {
	s := graph.NewMemoryStore()
	s.UpsertNode(graph.RawNode{ID: "d", Type: "definition", Label: "Group", Position: &graph.Position{LineStart: 1, ColStart: 4}})
	s.UpsertNode(graph.RawNode{ID: "t", Type: "theorem", Content: "Statement", Position: &graph.Position{LineStart: 5}})
	s.UpsertNode(graph.RawNode{ID: "c", Type: "corollary", Position: &graph.Position{LineStart: 9}})
	s.AddEdge(graph.RawEdge{Source: "t", Target: "d", DependencyType: graph.DepUsesDefinition, Context: "by definition"})
	s.AddEdge(graph.RawEdge{Source: "c", Target: "t", DependencyType: graph.DepIsCorollaryOf})
	s.AddEdge(graph.RawEdge{Source: "t", Target: "ghost", DependencyType: graph.DepUsedIn})
	return s.ApplyMutations()
}

func TestBuildGraph_All(t *testing.T) {
	ix := sampleIndex()
	data := BuildGraph(ix, nil)

	require.Len(t, data.Nodes, 3)
	assert.Equal(t, "d", data.Nodes[0].ID)
	assert.Equal(t, "Group", data.Nodes[0].Label)
	assert.Equal(t, "t", data.Nodes[1].Label, "nodes without a label fall back to the id")
	assert.Equal(t, ix.TypeColors["definition"], data.Nodes[0].Color)
	assert.Nil(t, data.Nodes[0].Hops)

	require.Len(t, data.Links, 2, "dangling edges are not exported")
	assert.Equal(t, GraphLink{Source: "d", Target: "t", DependencyType: "used_in", Color: ix.EdgeColors["used_in"], Context: "by definition"}, data.Links[0])

	assert.Equal(t, []LegendItem{
		{Type: "theorem", Color: ix.TypeColors["theorem"]},
		{Type: "corollary", Color: ix.TypeColors["corollary"]},
		{Type: "definition", Color: ix.TypeColors["definition"]},
	}, data.NodeLegend)

	raw, err := GraphJSON(ix, nil)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "links")
}

func TestBuildGraph_ProofSelection(t *testing.T) {
	ix := sampleIndex()
	st := proof.New()
	require.NoError(t, st.Enter(ix, "t"))

	data := BuildGraph(ix, st)
	require.Len(t, data.Nodes, 2)
	assert.Equal(t, []string{"d", "t"}, []string{data.Nodes[0].ID, data.Nodes[1].ID})
	require.NotNil(t, data.Nodes[0].Hops)
	assert.Equal(t, 1, *data.Nodes[0].Hops)
	assert.Len(t, data.Links, 1)
}

func TestNodesCSV(t *testing.T) {
	out, err := NodesCSV(sampleIndex(), nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "OrderIndex,ID,Type,Label,Line,Column,Prerequisites,Dependents", lines[0])
	assert.Equal(t, "1,d,definition,Group,1,4,0,1", lines[1])
	assert.Equal(t, "2,t,theorem,,5,0,1,1", lines[2])
}

func TestEventStream_RoundTrip(t *testing.T) {
	ix := sampleIndex()
	s := graph.NewMemoryStore()
	s.UpsertNode(graph.RawNode{ID: "g", Type: "theorem", Position: &graph.Position{LineStart: 12}})
	s.UpsertNode(graph.RawNode{ID: "s", Type: "theorem", Position: &graph.Position{LineStart: 14}})
	s.AddEdge(graph.RawEdge{Source: "g", Target: "s", DependencyType: graph.DepIsGeneralizationOf})
	gen := s.ApplyMutations()

	for name, src := range map[string]*graph.Index{"used_in": ix, "generalized_by": gen} {
		t.Run(name, func(t *testing.T) {
			out, err := EventStream(src, nil)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(out), `{"type":"reset"}`+"\n"))

			back := graph.NewMemoryStore()
			err = ingest.ReadStream(context.Background(), bytes.NewReader(out), func(ev ingest.Event) error {
				switch e := ev.(type) {
				case ingest.NodeEvent:
					back.UpsertNode(e.Node)
				case ingest.LinkEvent:
					back.AddEdge(e.Edge)
				case ingest.ResetEvent:
					back.Reset()
				}
				return nil
			})
			require.NoError(t, err)
			got := back.ApplyMutations()

			assert.Equal(t, src.Incoming, got.Incoming)
			assert.Equal(t, src.Outgoing, got.Outgoing)
			require.Len(t, got.Nodes, len(src.Nodes))
			for i, n := range src.Nodes {
				assert.Equal(t, *n, *got.Nodes[i])
			}
			assert.Zero(t, got.Dangling, "dangling edges are not exported")
		})
	}
}

func TestEventStream_ProofSelection(t *testing.T) {
	ix := sampleIndex()
	st := proof.New()
	require.NoError(t, st.Enter(ix, "t"))

	out, err := EventStream(ix, st)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], `"source":"d","target":"t","dependency_type":"used_in"`)
}
