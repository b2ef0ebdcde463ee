package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case ViewStateDetail:
		body = m.viewDetails()
	case ViewStateDistill:
		body = m.viewDistill()
	case ViewStateHelp:
		body = m.viewHelp()
	default:
		body = m.viewList()
	}

	parts := []string{m.viewHUD(), body}
	if m.filtering {
		parts = append(parts, m.input.View())
	}
	parts = append(parts, m.viewFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHUD() string {
	st := m.Session.Stats()
	pf := m.Session.Proof()

	mode := "BROWSE"
	modeStyle := subtle
	if pf.Active {
		mode = fmt.Sprintf("PROOF %s d=%d", pf.TargetID, pf.Depth)
		modeStyle = special
	}

	segTitle := titleStyle.Render("PROOFSCOPE")
	segMode := modeStyle.Render(fmt.Sprintf("[ %s ]", mode))
	segNodes := hudLabelStyle.Render("NODES:") + hudValueStyle.Render(fmt.Sprintf("%d/%d", len(m.nodes), st.Nodes))
	segEdges := hudLabelStyle.Render("EDGES:") + hudValueStyle.Render(fmt.Sprintf("%d", st.Edges))
	if st.Dangling > 0 {
		segEdges += warning.Render(fmt.Sprintf(" (%d dangling)", st.Dangling))
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center, segTitle, "  ", segMode)
	right := lipgloss.JoinHorizontal(lipgloss.Center, segNodes, "  |  ", segEdges)

	width := m.width - 4
	spacer := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	content := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", spacer), right)

	var lines []string
	lines = append(lines, content)
	if m.source != "" {
		lines = append(lines, dimStyle.Render(m.source))
	}
	if f := m.Session.Filter().String(); f != "" {
		lines = append(lines, warning.Render("[FILTER: "+f+"]"))
	}
	if m.player != nil {
		cursor, total := m.player.Progress()
		pct := 1.0
		if total > 0 {
			pct = float64(cursor) / float64(total)
		}
		label := "REPLAY"
		if m.replaying {
			label = m.spinner.View() + " REPLAY"
		}
		lines = append(lines, fmt.Sprintf("%s %s %d/%d @ %s", label, m.progress.ViewAs(pct), cursor, total, m.player.Interval()))
	}
	return hudStyle.Width(max(20, m.width-2)).Render(strings.Join(lines, "\n"))
}

func (m Model) viewFooter() string {
	var s strings.Builder
	if m.statusMsg != "" {
		s.WriteString(highlight.Render(m.statusMsg) + "\n")
	}
	switch {
	case m.filtering:
		s.WriteString(helpStyle("enter: apply filter • esc: cancel"))
	case m.state == ViewStateDistill:
		s.WriteString(helpStyle("pgup/pgdn: scroll • d/esc: back • q: quit"))
	case m.Session.Proof().Active:
		s.WriteString(helpStyle("+/-: unfold • d: distill • esc: exit proof • r: replay • /: filter • ?: help • q: quit"))
	default:
		s.WriteString(helpStyle("j/k: move • enter: proof • i: details • r: replay • /: filter • ?: help • q: quit"))
	}
	return s.String()
}

func (m Model) viewHelp() string {
	rows := [][2]string{
		{"j / k", "move the cursor"},
		{"enter", "enter proof mode on the selected node"},
		{"+ / -", "unfold more or fewer prerequisite layers"},
		{"esc", "leave replay, then proof mode"},
		{"i", "node details"},
		{"d", "distilled proof document"},
		{"r", "start or pause replay"},
		{"[ / ]", "replay slower or faster"},
		{"/", "CEL node filter, e.g. kind == \"lemma\" && order < 20"},
		{"q", "quit"},
	}
	var s strings.Builder
	s.WriteString(detailsHeaderStyle.Render("KEYS") + "\n")
	for _, r := range rows {
		s.WriteString(fmt.Sprintf("  %s  %s\n", special.Render(fmt.Sprintf("%-7s", r[0])), r[1]))
	}
	return detailsBoxStyle.Render(strings.TrimRight(s.String(), "\n"))
}
