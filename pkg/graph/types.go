package graph

// Canonical and raw dependency types.
const (
	DepUsedIn        = "used_in"
	DepGeneralizedBy = "generalized_by"
	DepInternal      = "internal"

	DepUsesResult         = "uses_result"
	DepUsesDefinition     = "uses_definition"
	DepIsCorollaryOf      = "is_corollary_of"
	DepIsGeneralizationOf = "is_generalization_of"
	DepProvidesRemark     = "provides_remark"
)

// UnknownType is the partition key for nodes without a type.
const UnknownType = "unknown"

// Position locates an artifact in the source document.
type Position struct {
	LineStart int `json:"line_start"`
	ColStart  int `json:"col_start"`
	LineEnd   int `json:"line_end,omitempty"`
	ColEnd    int `json:"col_end,omitempty"`
}

// RawNode is an artifact as produced by the extractor.
type RawNode struct {
	ID             string    `json:"id"`
	Type           string    `json:"type,omitempty"`
	Label          string    `json:"label,omitempty"`
	Content        string    `json:"content,omitempty"`
	ContentPreview string    `json:"content_preview,omitempty"`
	Position       *Position `json:"position,omitempty"`
	Terms          []string  `json:"terms,omitempty"`
}

// RawEdge is a dependency as produced by the extractor, before normalization.
type RawEdge struct {
	Source         string `json:"source"`
	Target         string `json:"target"`
	DependencyType string `json:"dependency_type,omitempty"`
	ReferenceType  string `json:"reference_type,omitempty"`
	Type           string `json:"type,omitempty"`
	Context        string `json:"context,omitempty"`
}

// Node is a stored artifact. OrderIndex is assigned by ApplyMutations.
type Node struct {
	ID             string    `json:"id"`
	Type           string    `json:"type,omitempty"`
	Label          string    `json:"label,omitempty"`
	Content        string    `json:"content,omitempty"`
	ContentPreview string    `json:"content_preview,omitempty"`
	Position       *Position `json:"position,omitempty"`
	Terms          []string  `json:"terms,omitempty"`
	OrderIndex     int       `json:"order_index"`
}

func newNode(raw RawNode) *Node {
	n := &Node{
		ID:             raw.ID,
		Type:           raw.Type,
		Label:          raw.Label,
		Content:        raw.Content,
		ContentPreview: raw.ContentPreview,
		Terms:          append([]string(nil), raw.Terms...),
	}
	if raw.Position != nil {
		p := *raw.Position
		n.Position = &p
	}
	return n
}

// Preview returns the short content, falling back to the full content.
func (n *Node) Preview() string {
	if n.ContentPreview != "" {
		return n.ContentPreview
	}
	return n.Content
}

// TypeKey returns the node type used for partitioning.
func (n *Node) TypeKey() string {
	if n.Type == "" {
		return UnknownType
	}
	return n.Type
}

// DisplayName returns the label when present, otherwise the id.
func (n *Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a normalized dependency: Source is the prerequisite, Target the dependent.
type Edge struct {
	Source         string `json:"source"`
	Target         string `json:"target"`
	DependencyType string `json:"dependency_type"`
	Context        string `json:"context,omitempty"`
}

// EdgeKey identifies an edge by its endpoints only.
type EdgeKey string

// MakeEdgeKey builds the "source=>target" identity.
func MakeEdgeKey(source, target string) EdgeKey {
	return EdgeKey(source + "=>" + target)
}

// Key returns the edge identity.
func (e Edge) Key() EdgeKey {
	return MakeEdgeKey(e.Source, e.Target)
}

// Adjacent is the compact adjacency entry published in the index.
type Adjacent struct {
	S   string `json:"s"`
	T   string `json:"t"`
	Dep string `json:"dep"`
}

// Key returns the identity of the underlying edge.
func (a Adjacent) Key() EdgeKey {
	return MakeEdgeKey(a.S, a.T)
}

// AddResult reports the outcome of AddEdge.
type AddResult struct {
	Key     EdgeKey
	Added   bool
	Dropped bool // removed by normalization
}

// Stats summarizes the store contents.
type Stats struct {
	Nodes    int
	Edges    int
	Dangling int // edges with at least one endpoint not present as a node
}
