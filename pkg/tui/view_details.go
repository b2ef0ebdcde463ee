package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DrSkyle/proofscope/pkg/export"
	"github.com/DrSkyle/proofscope/pkg/graph"
)

func (m Model) viewDetails() string {
	node, ok := m.selected()
	if !ok {
		return "No Node Selected"
	}

	header := detailsHeaderStyle.Render(fmt.Sprintf("%s : %s", node.TypeKey(), node.DisplayName()))

	pos := "POSITION:  unknown"
	if p := node.Position; p != nil {
		pos = fmt.Sprintf("POSITION:  line %d col %d", p.LineStart, p.ColStart)
	}
	info := lipgloss.JoinVertical(lipgloss.Left,
		special.Render(fmt.Sprintf("ORDER:     #%d", node.OrderIndex)),
		typeBadge("TYPE:      "+node.TypeKey(), m.index.ColorOf(node)),
		dimStyle.Render("ID:        "+node.ID),
		dimStyle.Render(pos),
	)

	pf := m.Session.Proof()
	if pf.Active {
		if h, ok := pf.HopsOf(node.ID); ok {
			info = lipgloss.JoinVertical(lipgloss.Left, info, highlight.Render(fmt.Sprintf("HOPS:      %d from %s", h, pf.TargetID)))
		}
	}

	requires := adjacencyBlock("REQUIRES", m.index.Incoming[node.ID], func(a graph.Adjacent) string { return a.S })
	usedIn := adjacencyBlock("USED IN", m.index.Outgoing[node.ID], func(a graph.Adjacent) string { return a.T })

	var terms string
	if len(node.Terms) > 0 {
		terms = warning.Render("TERMS: " + strings.Join(node.Terms, ", "))
	}

	content := strings.TrimSpace(node.Content)
	if content == "" {
		content = subtle.Render("(no content)")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		info,
		"",
		content,
		"",
		requires,
		usedIn,
		terms,
		"",
		strings.Repeat("─", 50),
		highlight.Render("ACTIONS:"),
		"[Enter] Proof of this node  [I] Back to List",
	)
	return detailsBoxStyle.Render(body)
}

func adjacencyBlock(title string, adj []graph.Adjacent, end func(graph.Adjacent) string) string {
	if len(adj) == 0 {
		return dimStyle.Render(title + ": none")
	}
	parts := make([]string, len(adj))
	for i, a := range adj {
		parts[i] = fmt.Sprintf("%s (%s)", end(a), a.Dep)
	}
	return title + ": " + strings.Join(parts, ", ")
}

// viewDistill shows the rendered Markdown of the distilled proof, scrolled
// by detailsScroll.
func (m Model) viewDistill() string {
	if m.doc == nil {
		return subtle.Render("Nothing distilled.")
	}
	lines := strings.Split(strings.TrimRight(string(export.Markdown(m.doc)), "\n"), "\n")

	window := max(5, m.height-10)
	start := min(m.detailsScroll, max(0, len(lines)-window))
	end := min(len(lines), start+window)

	out := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		if strings.HasPrefix(l, "#") {
			l = detailsHeaderStyle.UnsetMarginBottom().Render(l)
		}
		out = append(out, l)
	}
	if end < len(lines) {
		out = append(out, dimStyle.Render(fmt.Sprintf("... %d more lines", len(lines)-end)))
	}
	return detailsBoxStyle.Render(strings.Join(out, "\n"))
}
