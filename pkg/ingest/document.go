package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/DrSkyle/proofscope/pkg/storage"
)

// Document is a whole extracted graph.
type Document struct {
	Nodes       []graph.RawNode   `json:"nodes"`
	Edges       []graph.RawEdge   `json:"edges"`
	Definitions map[string]string `json:"definitions,omitempty"`
}

// ParseDocument decodes a {"nodes": [...], "edges": [...]} document.
func ParseDocument(b []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads and parses the document stored under key.
func LoadDocument(ctx context.Context, store storage.BlobStore, key string) (*Document, error) {
	b, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return ParseDocument(b)
}

// Events returns a reset followed by every node and then every edge.
func (d *Document) Events() []Event {
	events := make([]Event, 0, 1+len(d.Nodes)+len(d.Edges))
	events = append(events, ResetEvent{})
	for _, n := range d.Nodes {
		events = append(events, NodeEvent{Node: n})
	}
	for _, e := range d.Edges {
		events = append(events, LinkEvent{Edge: e})
	}
	return events
}
