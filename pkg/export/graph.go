package export

import (
	"encoding/json"

	"github.com/DrSkyle/proofscope/pkg/graph"
)

// GraphNode is a node in the force-graph JSON format.
type GraphNode struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Color      string `json:"color"`
	OrderIndex int    `json:"orderIndex"`
	Preview    string `json:"preview,omitempty"`
	Hops       *int   `json:"hops,omitempty"`
}

// GraphLink is an edge in the force-graph JSON format.
type GraphLink struct {
	Source         string `json:"source"`
	Target         string `json:"target"`
	DependencyType string `json:"dependency_type"`
	Color          string `json:"color"`
	Context        string `json:"context,omitempty"`
}

// LegendItem maps a node or edge type to its color.
type LegendItem struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// GraphData is the {nodes, links} document consumed by d3-force based viewers.
type GraphData struct {
	Nodes      []GraphNode  `json:"nodes"`
	Links      []GraphLink  `json:"links"`
	NodeLegend []LegendItem `json:"nodeLegend"`
	EdgeLegend []LegendItem `json:"edgeLegend"`
}

// Selection restricts an export to a subgraph. A nil Selection exports everything.
type Selection interface {
	NodeVisible(id string) bool
	EdgeVisible(k graph.EdgeKey) bool
}

// HopSource optionally annotates nodes with their proof hop distance.
type HopSource interface {
	HopsOf(id string) (int, bool)
}

// BuildGraph collects the nodes in reading order and the edges between
// them in insertion order. Dangling edges are never exported.
func BuildGraph(ix *graph.Index, sel Selection) GraphData {
	data := GraphData{
		Nodes: make([]GraphNode, 0, ix.Len()),
		Links: make([]GraphLink, 0, len(ix.Edges)),
	}
	hops, _ := sel.(HopSource)

	present := make(map[string]struct{})
	for _, n := range ix.Nodes {
		if sel != nil && !sel.NodeVisible(n.ID) {
			continue
		}
		present[n.ID] = struct{}{}
		gn := GraphNode{
			ID:         n.ID,
			Label:      n.DisplayName(),
			Type:       n.TypeKey(),
			Color:      ix.ColorOf(n),
			OrderIndex: n.OrderIndex,
			Preview:    n.Preview(),
		}
		if hops != nil {
			if h, ok := hops.HopsOf(n.ID); ok {
				gn.Hops = &h
			}
		}
		data.Nodes = append(data.Nodes, gn)
	}

	for _, e := range ix.Edges {
		_, okS := present[e.Source]
		_, okT := present[e.Target]
		if !okS || !okT {
			continue
		}
		if sel != nil && !sel.EdgeVisible(e.Key()) {
			continue
		}
		data.Links = append(data.Links, GraphLink{
			Source:         e.Source,
			Target:         e.Target,
			DependencyType: e.DependencyType,
			Color:          ix.EdgeColors[e.DependencyType],
			Context:        e.Context,
		})
	}

	for _, t := range ix.TypeOrder {
		data.NodeLegend = append(data.NodeLegend, LegendItem{Type: t, Color: ix.TypeColors[t]})
	}
	for _, t := range ix.EdgeTypeOrder {
		data.EdgeLegend = append(data.EdgeLegend, LegendItem{Type: t, Color: ix.EdgeColors[t]})
	}
	return data
}

// GraphJSON renders BuildGraph as indented JSON.
func GraphJSON(ix *graph.Index, sel Selection) ([]byte, error) {
	return json.MarshalIndent(BuildGraph(ix, sel), "", "  ")
}
