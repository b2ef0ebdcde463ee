package graph

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// TestStoreChaos builds a large cyclic, partly dangling graph and checks
// that a mutation pass finishes and keeps its invariants.
func TestStoreChaos(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chaos test in short mode")
	}
	s := NewMemoryStore()
	nodeCount := 50000
	rng := rand.New(rand.NewSource(1))
	deps := []string{DepUsedIn, DepUsesResult, DepUsesDefinition, DepIsCorollaryOf, DepGeneralizedBy, DepProvidesRemark, ""}

	t.Logf("Generating chaos graph with %d nodes...", nodeCount)

	for i := 0; i < nodeCount; i++ {
		id := fmt.Sprintf("node-%d", i)
		raw := RawNode{ID: id, Type: CanonicalNodeTypes[i%len(CanonicalNodeTypes)]}
		if i%3 == 0 {
			raw.Position = &Position{LineStart: rng.Intn(1000), ColStart: rng.Intn(80)}
		}
		if i%5 == 0 {
			raw.Label = fmt.Sprintf("%s:%d-%d", []string{"I", "IV", "IX", "XII"}[i%4], rng.Intn(20), rng.Intn(20))
		}
		s.UpsertNode(raw)

		if i > 0 {
			target := fmt.Sprintf("node-%d", rng.Intn(i))
			s.AddEdge(RawEdge{Source: id, Target: target, DependencyType: deps[rng.Intn(len(deps))]})
		}
		// Cycles in both directions.
		if i > 100 && i%100 == 0 {
			old := fmt.Sprintf("node-%d", i-100)
			s.AddEdge(RawEdge{Source: old, Target: id, DependencyType: DepUsedIn})
			s.AddEdge(RawEdge{Source: id, Target: old, DependencyType: DepUsedIn})
		}
		// Edges towards nodes that never arrive.
		if i%1000 == 0 {
			s.AddEdge(RawEdge{Source: id, Target: fmt.Sprintf("ghost-%d", i), DependencyType: DepUsedIn})
		}
	}

	done := make(chan *Index)
	go func() {
		done <- s.ApplyMutations()
	}()

	var ix *Index
	select {
	case ix = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("mutation pass did not finish in time")
	}

	if ix.Len() != nodeCount {
		t.Fatalf("expected %d nodes, got %d", nodeCount, ix.Len())
	}
	for i, n := range ix.Nodes {
		if n.OrderIndex != i+1 {
			t.Fatalf("OrderIndex of %s = %d, want %d", n.ID, n.OrderIndex, i+1)
		}
		if i > 0 && CompareFirstOccurrence(ix.Nodes[i-1], n) >= 0 {
			t.Fatalf("reading order violated at %d", i)
		}
	}
	if ix.Dangling < nodeCount/1000 {
		t.Errorf("expected ghost edges to be counted as dangling, got %d", ix.Dangling)
	}
	for target, in := range ix.Incoming {
		for _, a := range in {
			if a.T != target {
				t.Fatalf("incoming entry %v filed under %s", a, target)
			}
		}
	}
}

// TestStoreConcurrentReaders checks that readers of a published index
// never observe a partially built one.
func TestStoreConcurrentReaders(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ix := s.Index()
				for i, n := range ix.Nodes {
					if n.OrderIndex != i+1 {
						t.Errorf("inconsistent index observed")
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		s.UpsertNode(RawNode{ID: fmt.Sprintf("n%d", i), Label: fmt.Sprintf("I:%d", 200-i)})
		if i > 0 {
			s.AddEdge(RawEdge{Source: fmt.Sprintf("n%d", i-1), Target: fmt.Sprintf("n%d", i), DependencyType: DepUsedIn})
		}
		s.ApplyMutations()
	}
	close(stop)
	wg.Wait()
}
