package graph

import (
	"slices"
)

// CanonicalNodeTypes fixes the legend and color order for known artifact types.
var CanonicalNodeTypes = []string{
	"theorem",
	"lemma",
	"proposition",
	"corollary",
	"definition",
	"conjecture",
	"claim",
	"proof",
	"example",
	"remark",
	"notation",
	"assumption",
}

// CanonicalEdgeTypes fixes the color order for normalized dependency types.
var CanonicalEdgeTypes = []string{
	DepUsedIn,
	DepGeneralizedBy,
	DepInternal,
}

// NodePalette and EdgePalette are cycled when there are more types than colors.
var (
	NodePalette = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}
	EdgePalette = []string{
		"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
		"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
	}
)

// stableTypeOrder lists the present types: canonical ones first in canonical
// order, then unrecognized ones alphabetically.
func stableTypeOrder(present map[string]struct{}, canonical []string) []string {
	order := make([]string, 0, len(present))
	known := make(map[string]struct{}, len(canonical))
	for _, t := range canonical {
		known[t] = struct{}{}
		if _, ok := present[t]; ok {
			order = append(order, t)
		}
	}

	var extra []string
	for t := range present {
		if _, ok := known[t]; !ok {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	return append(order, extra...)
}

func assignColors(order []string, palette []string) map[string]string {
	colors := make(map[string]string, len(order))
	for i, t := range order {
		colors[t] = palette[i%len(palette)]
	}
	return colors
}
