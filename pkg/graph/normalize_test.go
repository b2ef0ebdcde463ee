package graph

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawEdge
		want    Edge
		dropped bool
	}{
		{
			name: "used_in is kept",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "used_in"},
			want: Edge{Source: "A", Target: "B", DependencyType: "used_in"},
		},
		{
			name: "uses_result swaps",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "uses_result"},
			want: Edge{Source: "B", Target: "A", DependencyType: "used_in"},
		},
		{
			name: "uses_definition swaps",
			raw:  RawEdge{Source: "thm", Target: "def", DependencyType: "uses_definition", Context: "by Def. 2"},
			want: Edge{Source: "def", Target: "thm", DependencyType: "used_in", Context: "by Def. 2"},
		},
		{
			name: "is_corollary_of swaps",
			raw:  RawEdge{Source: "cor", Target: "thm", DependencyType: "is_corollary_of"},
			want: Edge{Source: "thm", Target: "cor", DependencyType: "used_in"},
		},
		{
			name: "is_generalization_of swaps and relabels",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "is_generalization_of"},
			want: Edge{Source: "B", Target: "A", DependencyType: "generalized_by"},
		},
		{
			name: "generalized_by swaps",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "generalized_by"},
			want: Edge{Source: "B", Target: "A", DependencyType: "generalized_by"},
		},
		{
			name: "internal with internal reference_type swaps",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "internal", ReferenceType: "internal"},
			want: Edge{Source: "B", Target: "A", DependencyType: "internal"},
		},
		{
			name: "internal with internal type swaps",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "internal", Type: "internal"},
			want: Edge{Source: "B", Target: "A", DependencyType: "internal"},
		},
		{
			name: "missing dependency_type defaults to internal and swaps on internal type",
			raw:  RawEdge{Source: "A", Target: "B", Type: "internal"},
			want: Edge{Source: "B", Target: "A", DependencyType: "internal"},
		},
		{
			name: "unclassified internal passes through",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "internal"},
			want: Edge{Source: "A", Target: "B", DependencyType: "internal"},
		},
		{
			name: "internal with external reference_type passes through",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "internal", ReferenceType: "external", Type: "internal"},
			want: Edge{Source: "A", Target: "B", DependencyType: "internal"},
		},
		{
			name:    "provides_remark is dropped",
			raw:     RawEdge{Source: "A", Target: "B", DependencyType: "provides_remark"},
			dropped: true,
		},
		{
			name: "unknown type passes through",
			raw:  RawEdge{Source: "A", Target: "B", DependencyType: "cites"},
			want: Edge{Source: "A", Target: "B", DependencyType: "cites"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Normalize(tc.raw)
			if tc.dropped {
				if ok {
					t.Fatalf("expected edge to be dropped, got %+v", got)
				}
				return
			}
			if !ok {
				t.Fatalf("edge unexpectedly dropped")
			}
			if got != tc.want {
				t.Errorf("Normalize(%+v) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalize_PrerequisiteDirection(t *testing.T) {
	for _, dep := range []string{DepUsesResult, DepUsesDefinition, DepIsCorollaryOf} {
		raw := RawEdge{Source: "src", Target: "dst", DependencyType: dep}
		e, ok := Normalize(raw)
		if !ok || e.Source != raw.Target || e.Target != raw.Source || e.DependencyType != DepUsedIn {
			t.Errorf("%s: got %+v", dep, e)
		}
	}
	for _, dep := range []string{DepIsGeneralizationOf, DepGeneralizedBy} {
		raw := RawEdge{Source: "src", Target: "dst", DependencyType: dep}
		e, ok := Normalize(raw)
		if !ok || e.Source != raw.Target || e.Target != raw.Source || e.DependencyType != DepGeneralizedBy {
			t.Errorf("%s: got %+v", dep, e)
		}
	}
}
