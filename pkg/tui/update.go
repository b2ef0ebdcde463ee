package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DrSkyle/proofscope/pkg/distill"
)

const (
	minReplayInterval = 10 * time.Millisecond
	maxReplayInterval = 5 * time.Second
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, msg.Width/3)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.tickCount++
		m.refreshData()
		if m.statusMsg != "" && time.Since(m.statusTime) > 4*time.Second {
			m.statusMsg = ""
		}
		return m, tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case replayTickMsg:
		if !m.replaying || msg.gen != m.replayGen || m.player == nil {
			return m, nil
		}
		m.player.Step()
		m.refreshData()
		if cursor, total := m.player.Progress(); cursor >= total {
			m.replaying = false
			m.setStatus(fmt.Sprintf("Replay finished: %d nodes", total))
			return m, nil
		}
		return m, m.replayTick()
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.replaying = false
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.nodes)-1)

	case "enter":
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.Session.EnterProof(m.ctx, n.ID); err != nil {
			m.setStatus(err.Error())
			return m, nil
		}
		m.state = ViewStateList
		m.cursor = 0
		m.refreshData()
		m.setStatus("Proof of " + n.DisplayName())

	case "+", "=":
		if !m.Session.Proof().Active {
			return m, nil
		}
		if !m.Session.UnfoldMore(m.ctx) {
			m.setStatus("All prerequisites unfolded")
		}
		m.refreshData()
	case "-", "_":
		if !m.Session.Proof().Active {
			return m, nil
		}
		if !m.Session.UnfoldLess(m.ctx) {
			m.setStatus("Already at depth 1")
		}
		m.refreshData()

	case "esc":
		switch {
		case m.state != ViewStateList:
			m.state = ViewStateList
		case m.player != nil:
			m.replaying = false
			m.player = nil
			m.refreshData()
		case m.Session.Proof().Active:
			m.Session.ExitProof()
			m.refreshData()
		}

	case "i", "tab":
		if m.state == ViewStateDetail {
			m.state = ViewStateList
		} else if _, ok := m.selected(); ok {
			m.state = ViewStateDetail
			m.detailsScroll = 0
		}

	case "d":
		if m.state == ViewStateDistill {
			m.state = ViewStateList
			return m, nil
		}
		doc, err := m.Session.Distill(m.ctx)
		if errors.Is(err, distill.ErrProofInactive) {
			m.setStatus("Enter proof mode first (enter)")
			return m, nil
		} else if err != nil {
			m.setStatus(err.Error())
			return m, nil
		}
		m.doc = doc
		m.detailsScroll = 0
		m.state = ViewStateDistill

	case "r":
		if m.replaying {
			m.replaying = false
			m.setStatus("Replay paused")
			return m, nil
		}
		m.player = m.Session.PrepareReplay()
		m.replaying = true
		m.replayGen++
		m.cursor = 0
		m.refreshData()
		return m, m.replayTick()

	case "[":
		return m.scaleReplay(2)
	case "]":
		return m.scaleReplay(0.5)

	case "/":
		m.filtering = true
		m.input.SetValue(m.Session.Filter().String())
		m.input.CursorEnd()
		return m, m.input.Focus()

	case "?":
		if m.state == ViewStateHelp {
			m.state = ViewStateList
		} else {
			m.state = ViewStateHelp
		}

	case "pgdown", "ctrl+d":
		m.detailsScroll++
	case "pgup", "ctrl+u":
		if m.detailsScroll > 0 {
			m.detailsScroll--
		}
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if err := m.Session.SetFilter(m.input.Value()); err != nil {
			m.setStatus("Invalid filter: " + err.Error())
			return m, nil
		}
		m.filtering = false
		m.input.Blur()
		m.cursor = 0
		m.refreshData()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// scaleReplay multiplies the reveal interval by f within fixed bounds.
func (m Model) scaleReplay(f float64) (tea.Model, tea.Cmd) {
	cur := m.Session.Config().Replay.Interval
	if m.player != nil {
		cur = m.player.Interval()
	}
	next := time.Duration(float64(cur) * f)
	next = min(max(next, minReplayInterval), maxReplayInterval)
	m.Session.SetReplayInterval(m.ctx, next)
	m.setStatus("Replay interval " + next.String())
	return m, nil
}
