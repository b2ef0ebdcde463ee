package graph

import (
	"reflect"
	"testing"
)

func TestMemoryStore_UsesResultScenario(t *testing.T) {
	s := NewMemoryStore()
	s.UpsertNode(RawNode{ID: "A", Type: "theorem", Position: &Position{LineStart: 1}})
	s.UpsertNode(RawNode{ID: "B", Type: "lemma", Position: &Position{LineStart: 2}})
	res := s.AddEdge(RawEdge{Source: "A", Target: "B", DependencyType: "uses_result"})
	if !res.Added || res.Key != "B=>A" {
		t.Fatalf("unexpected add result %+v", res)
	}

	ix := s.ApplyMutations()

	if ix.OrderIndex("A") != 1 || ix.OrderIndex("B") != 2 {
		t.Errorf("order indices A=%d B=%d", ix.OrderIndex("A"), ix.OrderIndex("B"))
	}
	want := []Adjacent{{S: "B", T: "A", Dep: "used_in"}}
	if got := ix.Incoming["A"]; !reflect.DeepEqual(got, want) {
		t.Errorf("Incoming[A] = %v, want %v", got, want)
	}
	if got := ix.Outgoing["B"]; !reflect.DeepEqual(got, want) {
		t.Errorf("Outgoing[B] = %v, want %v", got, want)
	}
}

func TestMemoryStore_EdgeDeduplication(t *testing.T) {
	s := NewMemoryStore()
	first := s.AddEdge(RawEdge{Source: "x", Target: "y", DependencyType: "used_in"})
	second := s.AddEdge(RawEdge{Source: "x", Target: "y", DependencyType: "cites"})
	// uses_result y->x normalizes to x->y as well.
	third := s.AddEdge(RawEdge{Source: "y", Target: "x", DependencyType: "uses_result"})

	if !first.Added {
		t.Fatal("first add should succeed")
	}
	if second.Added || third.Added {
		t.Errorf("duplicate pair should not be added: %+v %+v", second, third)
	}
	if got := s.Stats().Edges; got != 1 {
		t.Errorf("edge count = %d, want 1", got)
	}
	if e := s.Edges()[0]; e.DependencyType != "used_in" {
		t.Errorf("first edge should win, got %+v", e)
	}
}

func TestMemoryStore_DroppedEdge(t *testing.T) {
	s := NewMemoryStore()
	res := s.AddEdge(RawEdge{Source: "a", Target: "b", DependencyType: "provides_remark"})
	if res.Added || !res.Dropped {
		t.Errorf("provides_remark should be dropped, got %+v", res)
	}
	if len(s.Edges()) != 0 {
		t.Errorf("dropped edge must not be stored")
	}
}

func TestMemoryStore_DanglingEdgesResolveLater(t *testing.T) {
	s := NewMemoryStore()
	s.UpsertNode(RawNode{ID: "a"})
	s.AddEdge(RawEdge{Source: "a", Target: "b", DependencyType: "used_in"})
	s.AddEdge(RawEdge{Source: "", Target: "a", DependencyType: "used_in"})

	ix := s.ApplyMutations()
	if len(ix.Outgoing["a"]) != 0 {
		t.Errorf("edge to missing node must not appear in adjacency")
	}
	if ix.Dangling != 2 || s.Stats().Dangling != 2 {
		t.Errorf("dangling = %d/%d, want 2", ix.Dangling, s.Stats().Dangling)
	}

	s.UpsertNode(RawNode{ID: "b"})
	ix = s.ApplyMutations()
	if len(ix.Outgoing["a"]) != 1 || len(ix.Incoming["b"]) != 1 {
		t.Errorf("edge should be indexed once its endpoint arrives")
	}
}

func TestMemoryStore_UpsertOverwritesAndReordersAll(t *testing.T) {
	s := NewMemoryStore()
	s.UpsertNode(RawNode{ID: "a", Label: "I:2"})
	s.UpsertNode(RawNode{ID: "b", Label: "I:3"})
	ix := s.ApplyMutations()
	if ix.OrderIndex("a") != 1 || ix.OrderIndex("b") != 2 {
		t.Fatalf("unexpected initial order")
	}

	// A new earlier node shifts everyone.
	s.UpsertNode(RawNode{ID: "c", Label: "I:1"})
	s.UpsertNode(RawNode{ID: "b", Label: "I:0", Content: "rewritten"})
	next := s.ApplyMutations()

	got := []string{next.Nodes[0].ID, next.Nodes[1].ID, next.Nodes[2].ID}
	if !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Errorf("reading order = %v", got)
	}
	if n, _ := next.Node("b"); n.Content != "rewritten" {
		t.Errorf("upsert should overwrite payload")
	}
	// The previously published index is untouched.
	if ix.OrderIndex("a") != 1 || ix.Len() != 2 {
		t.Errorf("published index was mutated")
	}
	if s.UpsertNode(RawNode{Label: "no id"}) {
		t.Errorf("node without id must be ignored")
	}
}

func TestMemoryStore_TypeColorsDeterministic(t *testing.T) {
	build := func(order []RawNode) *Index {
		s := NewMemoryStore()
		for _, n := range order {
			s.UpsertNode(n)
		}
		s.AddEdge(RawEdge{Source: "1", Target: "2", DependencyType: "zeta"})
		s.AddEdge(RawEdge{Source: "2", Target: "3", DependencyType: "used_in"})
		return s.ApplyMutations()
	}
	nodes := []RawNode{
		{ID: "1", Type: "widget"},
		{ID: "2", Type: "lemma"},
		{ID: "3", Type: "theorem"},
		{ID: "4", Type: "axiom"},
		{ID: "5"},
	}
	reversed := []RawNode{nodes[4], nodes[3], nodes[2], nodes[1], nodes[0]}

	a, b := build(nodes), build(reversed)

	wantOrder := []string{"theorem", "lemma", "axiom", "unknown", "widget"}
	if !reflect.DeepEqual(a.TypeOrder, wantOrder) {
		t.Errorf("TypeOrder = %v, want %v", a.TypeOrder, wantOrder)
	}
	if !reflect.DeepEqual(a.TypeColors, b.TypeColors) {
		t.Errorf("colors depend on input order: %v vs %v", a.TypeColors, b.TypeColors)
	}
	if a.TypeColors["theorem"] != NodePalette[0] {
		t.Errorf("theorem should take the first palette color")
	}
	if !reflect.DeepEqual(a.EdgeTypeOrder, []string{"used_in", "zeta"}) {
		t.Errorf("EdgeTypeOrder = %v", a.EdgeTypeOrder)
	}
	if !reflect.DeepEqual(a.Types["unknown"], []string{"5"}) {
		t.Errorf("untyped nodes should be partitioned as unknown")
	}
}

func TestMemoryStore_Reset(t *testing.T) {
	s := NewMemoryStore()
	s.UpsertNode(RawNode{ID: "a"})
	s.AddEdge(RawEdge{Source: "a", Target: "a", DependencyType: "used_in"})
	s.ApplyMutations()

	s.Reset()

	if st := s.Stats(); st.Nodes != 0 || st.Edges != 0 {
		t.Errorf("reset left %+v", st)
	}
	if s.Index().Len() != 0 {
		t.Errorf("reset should publish an empty index")
	}
	if res := s.AddEdge(RawEdge{Source: "a", Target: "a", DependencyType: "used_in"}); !res.Added {
		t.Errorf("edge should be addable again after reset")
	}
}
