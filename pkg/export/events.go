package export

import (
	"bytes"
	"fmt"

	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/DrSkyle/proofscope/pkg/ingest"
)

// EventStream renders the graph as NDJSON ingestion events: a reset, every
// node in reading order, then every non-dangling edge in insertion order.
// Loading the stream again rebuilds the same graph.
func EventStream(ix *graph.Index, sel Selection) ([]byte, error) {
	var buf bytes.Buffer
	emit := func(ev ingest.Event) error {
		b, err := ingest.EncodeEvent(ev)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", ev.Type(), err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
		return nil
	}

	if err := emit(ingest.ResetEvent{}); err != nil {
		return nil, err
	}
	for _, n := range ix.Nodes {
		if sel != nil && !sel.NodeVisible(n.ID) {
			continue
		}
		if err := emit(ingest.NodeEvent{Node: rawNode(n)}); err != nil {
			return nil, err
		}
	}
	for _, e := range ix.Edges {
		if _, ok := ix.ByID[e.Source]; !ok {
			continue
		}
		if _, ok := ix.ByID[e.Target]; !ok {
			continue
		}
		if sel != nil && !sel.EdgeVisible(e.Key()) {
			continue
		}
		if err := emit(ingest.LinkEvent{Edge: rawEdge(e)}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func rawNode(n *graph.Node) graph.RawNode {
	return graph.RawNode{
		ID:             n.ID,
		Type:           n.Type,
		Label:          n.Label,
		Content:        n.Content,
		ContentPreview: n.ContentPreview,
		Position:       n.Position,
		Terms:          n.Terms,
	}
}

// rawEdge inverts normalization so that the edge normalizes back to e.
// generalized_by is always swapped on ingestion; every other canonical
// type passes through unchanged.
func rawEdge(e graph.Edge) graph.RawEdge {
	raw := graph.RawEdge{
		Source:         e.Source,
		Target:         e.Target,
		DependencyType: e.DependencyType,
		Context:        e.Context,
	}
	if e.DependencyType == graph.DepGeneralizedBy {
		raw.Source, raw.Target = e.Target, e.Source
	}
	return raw
}
