package tui

import (
	"fmt"
	"strings"
)

func (m Model) viewList() string {
	s := strings.Builder{}
	nodes := m.nodes

	if len(nodes) == 0 {
		switch {
		case m.replaying:
			return fmt.Sprintf("\n   %s Replaying...", m.spinner.View())
		case m.index == nil || m.index.Len() == 0:
			return "\n   " + subtle.Render("No nodes loaded.")
		default:
			return "\n   " + subtle.Render("No nodes match the current view.")
		}
	}

	pf := m.Session.Proof()
	start, end := m.calculateWindow(len(nodes))

	headerTxt := fmt.Sprintf("  %-5s | %-24s | %-12s | %s", "#", "NODE", "TYPE", "PREVIEW")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")
	s.WriteString(dimStyle.Render("  "+strings.Repeat("─", 70)) + "\n")

	for i := start; i < end; i++ {
		node := nodes[i]
		isSelected := i == m.cursor

		cursor := "  "
		if isSelected {
			cursor = "> "
		}

		name := node.DisplayName()
		if pf.Active {
			if h, ok := pf.HopsOf(node.ID); ok {
				name = strings.Repeat("  ", h) + name
			}
		}
		name = truncate(name, 24)

		typ := fmt.Sprintf("%-12s", truncate(node.TypeKey(), 12))
		typ = typeBadge(typ, m.index.ColorOf(node))

		preview := truncate(strings.Join(strings.Fields(node.Preview()), " "), 40)
		line := fmt.Sprintf("%s%-5d | %-24s | %s | %s", cursor, node.OrderIndex, name, typ, preview)

		if pf.Active && node.ID == pf.TargetID {
			line = special.Render(line)
		}
		if isSelected {
			s.WriteString(listSelectedStyle.Render(line) + "\n")
		} else {
			s.WriteString(listNormalStyle.Render(line) + "\n")
		}
	}
	if end < len(nodes) {
		s.WriteString(dimStyle.Render(fmt.Sprintf("   ... %d more", len(nodes)-end)) + "\n")
	}

	return s.String()
}

func (m Model) calculateWindow(total int) (int, int) {
	windowSize := max(5, m.height-10)

	start := max(0, m.cursor-windowSize/2)
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
