package ingest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DrSkyle/proofscope/pkg/graph"
)

// ErrUnknownEventType is returned for envelopes whose type is not node, link or reset.
var ErrUnknownEventType = errors.New("unknown event type")

// Event type tags.
const (
	TypeNode  = "node"
	TypeLink  = "link"
	TypeReset = "reset"
)

// Event is one ingestion step. The set of implementations is closed:
// NodeEvent, LinkEvent and ResetEvent.
type Event interface {
	Type() string
	isEvent()
}

// NodeEvent upserts a node.
type NodeEvent struct {
	Node graph.RawNode
}

// LinkEvent adds an edge.
type LinkEvent struct {
	Edge graph.RawEdge
}

// ResetEvent clears the graph.
type ResetEvent struct{}

func (NodeEvent) Type() string  { return TypeNode }
func (LinkEvent) Type() string  { return TypeLink }
func (ResetEvent) Type() string { return TypeReset }

func (NodeEvent) isEvent()  {}
func (LinkEvent) isEvent()  {}
func (ResetEvent) isEvent() {}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeEvent parses a {"type": ..., "data": ...} envelope.
func DecodeEvent(b []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case TypeNode:
		var n graph.RawNode
		if err := unmarshalData(env.Data, &n); err != nil {
			return nil, fmt.Errorf("decode node event: %w", err)
		}
		return NodeEvent{Node: n}, nil
	case TypeLink:
		var e graph.RawEdge
		if err := unmarshalData(env.Data, &e); err != nil {
			return nil, fmt.Errorf("decode link event: %w", err)
		}
		return LinkEvent{Edge: e}, nil
	case TypeReset:
		return ResetEvent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, env.Type)
	}
}

// EncodeEvent renders ev as an envelope.
func EncodeEvent(ev Event) ([]byte, error) {
	env := envelope{Type: ev.Type()}
	var data any
	switch e := ev.(type) {
	case NodeEvent:
		data = e.Node
	case LinkEvent:
		data = e.Edge
	case ResetEvent:
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(data, v)
}
