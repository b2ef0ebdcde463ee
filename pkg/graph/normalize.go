package graph

// Normalize rewrites a raw extracted edge into the prerequisite -> dependent
// convention. The second return value is false when the edge must be dropped.
func Normalize(raw RawEdge) (Edge, bool) {
	dep := raw.DependencyType
	if dep == "" {
		dep = DepInternal
	}

	e := Edge{
		Source:         raw.Source,
		Target:         raw.Target,
		DependencyType: dep,
		Context:        raw.Context,
	}

	switch dep {
	case DepUsedIn:
		return e, true
	case DepUsesResult, DepUsesDefinition, DepIsCorollaryOf:
		return e.swapped(DepUsedIn), true
	case DepIsGeneralizationOf, DepGeneralizedBy:
		return e.swapped(DepGeneralizedBy), true
	case DepInternal:
		// Only edges explicitly classified as internal references flip.
		if referenceClass(raw) == DepInternal {
			return e.swapped(DepInternal), true
		}
		return e, true
	case DepProvidesRemark:
		return Edge{}, false
	default:
		return e, true
	}
}

// referenceClass prefers reference_type and falls back to type.
func referenceClass(raw RawEdge) string {
	if raw.ReferenceType != "" {
		return raw.ReferenceType
	}
	return raw.Type
}

func (e Edge) swapped(dep string) Edge {
	return Edge{
		Source:         e.Target,
		Target:         e.Source,
		DependencyType: dep,
		Context:        e.Context,
	}
}
