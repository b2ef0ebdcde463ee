package export

import (
	"fmt"
	"strings"

	"github.com/DrSkyle/proofscope/pkg/distill"
	"github.com/DrSkyle/proofscope/pkg/graph"
)

// Markdown renders a distilled proof document: the target first, then each
// prerequisite with its content quoted, then the term references.
func Markdown(doc *distill.Document) []byte {
	var b strings.Builder

	title := "(empty)"
	if len(doc.Entries) > 0 {
		title = doc.Entries[0].Node.DisplayName()
	}
	fmt.Fprintf(&b, "# Proof of %s\n\n", title)
	fmt.Fprintf(&b, "Depth %d, %d artifact(s).\n", doc.Depth, len(doc.Entries))

	for i, e := range doc.Entries {
		fmt.Fprintf(&b, "\n## %s\n", heading(i, e))
		if content := strings.TrimSpace(e.Node.Content); content != "" {
			fmt.Fprintf(&b, "\n%s\n", quote(content))
		}
		if len(e.Requires) > 0 {
			fmt.Fprintf(&b, "\nRequires: %s\n", idList(e.Requires, func(a graph.Adjacent) string { return a.S }))
		}
		if len(e.Supports) > 0 {
			fmt.Fprintf(&b, "\nUsed in: %s\n", idList(e.Supports, func(a graph.Adjacent) string { return a.T }))
		}
	}

	if len(doc.References) > 0 {
		b.WriteString("\n## References\n\n")
		for _, r := range doc.References {
			fmt.Fprintf(&b, "- **%s**", r.Term)
			if r.Definition != nil {
				fmt.Fprintf(&b, ": %s", r.Definition.Text)
				if r.Definition.Source != "" {
					fmt.Fprintf(&b, " (%s)", r.Definition.Source)
				}
			} else {
				b.WriteString(" (undefined)")
			}
			fmt.Fprintf(&b, ". Referenced by %s.\n", strings.Join(r.ReferencedBy, ", "))
		}
	}
	return []byte(b.String())
}

func heading(i int, e distill.Entry) string {
	name := e.Node.DisplayName()
	if e.Node.Type != "" {
		name = capitalize(e.Node.Type) + " " + name
	}
	if i == 0 {
		return name + " (target)"
	}
	return fmt.Sprintf("%s (depth %d)", name, e.Hops)
}

func idList(adj []graph.Adjacent, end func(graph.Adjacent) string) string {
	ids := make([]string, len(adj))
	for i, a := range adj {
		ids[i] = "`" + end(a) + "`"
	}
	return strings.Join(ids, ", ")
}

func quote(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
