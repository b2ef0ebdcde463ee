package graph

// Index is the derived, read-only view published by ApplyMutations.
// It is never modified after publication; a new mutation pass builds a new one.
type Index struct {
	// Nodes in reading order; Nodes[i].OrderIndex == i+1.
	Nodes []*Node
	ByID  map[string]*Node

	// Edges holds every stored edge in insertion order, dangling ones included.
	Edges []Edge

	Outgoing map[string][]Adjacent // by source
	Incoming map[string][]Adjacent // by target

	Types      map[string][]string // type -> node ids in reading order
	TypeOrder  []string
	TypeColors map[string]string

	EdgeTypeOrder []string
	EdgeColors    map[string]string

	Dangling int
}

func emptyIndex() *Index {
	return &Index{
		ByID:       map[string]*Node{},
		Outgoing:   map[string][]Adjacent{},
		Incoming:   map[string][]Adjacent{},
		Types:      map[string][]string{},
		TypeColors: map[string]string{},
		EdgeColors: map[string]string{},
	}
}

// buildIndex recomputes every derived structure from the full node and edge sets.
func buildIndex(nodes map[string]*Node, edges []Edge) *Index {
	ix := emptyIndex()

	// 1. Reading order over private copies so published nodes stay immutable.
	ix.Nodes = make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		cp := *n
		ix.Nodes = append(ix.Nodes, &cp)
	}
	SortReadingOrder(ix.Nodes)

	presentTypes := make(map[string]struct{})
	for _, n := range ix.Nodes {
		ix.ByID[n.ID] = n
		t := n.TypeKey()
		presentTypes[t] = struct{}{}
		ix.Types[t] = append(ix.Types[t], n.ID)
	}

	// 2. Adjacency from the full edge set. Edges whose endpoints are not
	// both present stay stored but contribute nothing until they arrive.
	ix.Edges = append([]Edge(nil), edges...)
	presentEdgeTypes := make(map[string]struct{})
	for _, e := range edges {
		presentEdgeTypes[e.DependencyType] = struct{}{}
		_, okS := ix.ByID[e.Source]
		_, okT := ix.ByID[e.Target]
		if !okS || !okT {
			ix.Dangling++
			continue
		}
		a := Adjacent{S: e.Source, T: e.Target, Dep: e.DependencyType}
		ix.Outgoing[e.Source] = append(ix.Outgoing[e.Source], a)
		ix.Incoming[e.Target] = append(ix.Incoming[e.Target], a)
	}

	// 3. Partitions and colors.
	ix.TypeOrder = stableTypeOrder(presentTypes, CanonicalNodeTypes)
	ix.TypeColors = assignColors(ix.TypeOrder, NodePalette)
	ix.EdgeTypeOrder = stableTypeOrder(presentEdgeTypes, CanonicalEdgeTypes)
	ix.EdgeColors = assignColors(ix.EdgeTypeOrder, EdgePalette)

	return ix
}

// Node returns the node with the given id.
func (ix *Index) Node(id string) (*Node, bool) {
	n, ok := ix.ByID[id]
	return n, ok
}

// OrderIndex returns the reading-order position of id, or 0 when absent.
func (ix *Index) OrderIndex(id string) int {
	if n, ok := ix.ByID[id]; ok {
		return n.OrderIndex
	}
	return 0
}

// Len returns the number of nodes.
func (ix *Index) Len() int {
	return len(ix.Nodes)
}

// ColorOf returns the legend color of a node.
func (ix *Index) ColorOf(n *Node) string {
	return ix.TypeColors[n.TypeKey()]
}
