package distill

import (
	"errors"
	"slices"
	"strings"

	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/DrSkyle/proofscope/pkg/proof"
)

// ErrProofInactive is returned when building from a state that is not in proof mode.
var ErrProofInactive = errors.New("proof mode is not active")

// Reference kinds.
const (
	KindDefinition = "definition"
	KindUndefined  = "undefined"
)

// Entry is one artifact of the linearized proof.
type Entry struct {
	Node *graph.Node
	Hops int

	// Supports lists the visible edges from this node to the dependents
	// that pulled it in. Requires lists the visible edges into it.
	Supports []graph.Adjacent
	Requires []graph.Adjacent
}

// Reference is a term used by an entry that is not itself a graph node.
type Reference struct {
	Term         string
	Kind         string
	Definition   *Definition
	ReferencedBy []string
}

// Document is a distilled proof ready for rendering.
type Document struct {
	TargetID   string
	Depth      int
	Entries    []Entry
	References []Reference
}

// Build linearizes the current proof subgraph: the target first, then the
// remaining visible nodes in reading order. It recomputes st first so the
// output always matches the live depth.
func Build(st *proof.State, ix *graph.Index, bank *Bank) (*Document, error) {
	if st == nil || !st.Active {
		return nil, ErrProofInactive
	}
	st.Recompute(ix)

	doc := &Document{TargetID: st.TargetID, Depth: st.Depth}

	order := st.Nodes(ix)
	if i := slices.IndexFunc(order, func(n *graph.Node) bool { return n.ID == st.TargetID }); i > 0 {
		target := order[i]
		order = append([]*graph.Node{target}, slices.Delete(order, i, i+1)...)
	}

	for _, n := range order {
		e := Entry{Node: n, Hops: st.Hops[n.ID]}
		for _, a := range ix.Outgoing[n.ID] {
			if st.EdgeVisible(a.Key()) {
				e.Supports = append(e.Supports, a)
			}
		}
		for _, a := range ix.Incoming[n.ID] {
			if st.EdgeVisible(a.Key()) {
				e.Requires = append(e.Requires, a)
			}
		}
		doc.Entries = append(doc.Entries, e)
	}

	doc.References = references(doc.Entries, ix, bank)
	return doc, nil
}

// references collects entry terms that do not resolve to a graph node by id
// or label, once each in first-reference order.
func references(entries []Entry, ix *graph.Index, bank *Bank) []Reference {
	labels := make(map[string]struct{}, ix.Len())
	for _, n := range ix.Nodes {
		if n.Label != "" {
			labels[strings.ToLower(n.Label)] = struct{}{}
		}
	}

	var refs []Reference
	seen := make(map[string]int)
	for _, e := range entries {
		for _, term := range e.Node.Terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			if _, ok := ix.Node(term); ok {
				continue
			}
			if _, ok := labels[strings.ToLower(term)]; ok {
				continue
			}

			key := strings.ToLower(term)
			if i, ok := seen[key]; ok {
				if !slices.Contains(refs[i].ReferencedBy, e.Node.ID) {
					refs[i].ReferencedBy = append(refs[i].ReferencedBy, e.Node.ID)
				}
				continue
			}

			ref := Reference{Term: term, Kind: KindUndefined, ReferencedBy: []string{e.Node.ID}}
			if d, ok := bank.Lookup(term); ok {
				ref.Kind = KindDefinition
				ref.Definition = &d
			}
			seen[key] = len(refs)
			refs = append(refs, ref)
		}
	}
	return refs
}
