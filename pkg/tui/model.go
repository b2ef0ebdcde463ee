package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DrSkyle/proofscope/pkg/distill"
	"github.com/DrSkyle/proofscope/pkg/engine"
	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/DrSkyle/proofscope/pkg/replay"
)

type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateDistill
	ViewStateHelp
)

const refreshInterval = 500 * time.Millisecond

type Model struct {
	// core components
	spinner  spinner.Model
	progress progress.Model
	input    textinput.Model
	Session  *engine.Session
	ctx      context.Context

	// state
	state     ViewState
	quitting  bool
	filtering bool
	width     int
	height    int
	source    string

	// data
	index *graph.Index
	nodes []*graph.Node
	doc   *distill.Document

	// replay
	player    *replay.Player
	replaying bool
	replayGen int

	// feedback
	statusMsg  string
	statusTime time.Time

	// navigation
	cursor        int
	detailsScroll int

	// animation
	tickCount int
}

type tickMsg time.Time

// replayTickMsg carries the generation it was scheduled for so ticks from a
// previous run are dropped.
type replayTickMsg struct {
	gen int
}

// NewModel builds the explorer over a session. source names the loaded
// document in the header.
func NewModel(ctx context.Context, s *engine.Session, source string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = special

	in := textinput.New()
	in.Prompt = "filter> "
	in.Placeholder = `kind == "lemma"`
	in.CharLimit = 512

	m := Model{
		spinner:  sp,
		progress: progress.New(progress.WithGradient("#00FF99", "#00CCFF")),
		input:    in,
		Session:  s,
		ctx:      ctx,
		state:    ViewStateList,
		source:   source,
		width:    100,
		height:   30,
	}
	m.refreshData()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		}),
	)
}

// refreshData re-reads the published index and the visible node list.
func (m *Model) refreshData() {
	m.index = m.Session.Index()
	m.nodes = m.Session.VisibleNodes()
	if m.player != nil {
		m.nodes = m.revealedOnly(m.nodes)
	}
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) revealedOnly(nodes []*graph.Node) []*graph.Node {
	out := make([]*graph.Node, 0, len(nodes))
	m.player.View(func(seq *replay.Sequencer) {
		for _, n := range nodes {
			if seq.NodeVisible(n.ID) {
				out = append(out, n)
			}
		}
	})
	return out
}

func (m Model) selected() (*graph.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return nil, false
	}
	return m.nodes[m.cursor], true
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTime = time.Now()
}

func (m Model) replayTick() tea.Cmd {
	gen := m.replayGen
	return tea.Tick(m.player.Interval(), func(time.Time) tea.Msg {
		return replayTickMsg{gen: gen}
	})
}
