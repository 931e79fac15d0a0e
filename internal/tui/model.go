// Package tui renders the integration client in the terminal. All
// session state lives in the state store; the model only keeps cursor
// positions and the last snapshot it rendered.
package tui

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/controller"
	"github.com/sheetbridge/sheetbridge/internal/state"
)

type pane int

const (
	paneSpreadsheets pane = iota
	paneSheets
)

type (
	refreshMsg    struct{}
	authReturnMsg struct{ query url.Values }
	ackMsg        struct{ ack api.ImportAck }
)

// Model is the bubbletea model for the sheetbridge client.
type Model struct {
	ctx   context.Context
	ctrl  *controller.Controller
	store *state.Store
	nav   *LoopbackNavigator

	keys keyMap
	spin spinner.Model

	snap        state.Snapshot
	pane        pane
	sheetCursor int
	listCursor  int
	status      string

	width  int
	height int
}

// NewModel wires the model to its collaborators.
func NewModel(ctx context.Context, ctrl *controller.Controller, store *state.Store, nav *LoopbackNavigator) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:   ctx,
		ctrl:  ctrl,
		store: store,
		nav:   nav,
		keys:  defaultKeyMap(),
		spin:  sp,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, ctrl *controller.Controller, store *state.Store, nav *LoopbackNavigator) error {
	if err := nav.Start(ctx); err != nil {
		return err
	}
	p := tea.NewProgram(NewModel(ctx, ctrl, store, nav), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.bootstrapCmd(),
		m.waitForAuthReturn(),
	)
}

func (m Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Bootstrap(m.ctx)
		return refreshMsg{}
	}
}

func (m Model) waitForAuthReturn() tea.Cmd {
	return func() tea.Msg {
		q, ok := <-m.nav.Outcomes()
		if !ok {
			return nil
		}
		return authReturnMsg{query: q}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshMsg:
		m.snap = m.store.Snapshot()
		m.clampCursors()
		return m, nil

	case authReturnMsg:
		query := msg.query
		return m, tea.Batch(
			func() tea.Msg {
				m.ctrl.ConsumeAuthReturn(m.ctx, query)
				return refreshMsg{}
			},
			m.waitForAuthReturn(),
		)

	case ackMsg:
		m.status = fmt.Sprintf("Backend accepted %d rows.", msg.ack.Rows)
		m.snap = m.store.Snapshot()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// The loading flag gates every user-triggered action: while a
	// request is in flight the keys below are inert.
	if m.snap.Loading {
		return m, nil
	}

	if !m.snap.Authenticated {
		if key.Matches(msg, m.keys.Login) {
			return m, m.actionCmd(func() { m.ctrl.BeginLogin(m.ctx) })
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Logout):
		m.status = ""
		m.pane = paneSpreadsheets
		m.listCursor, m.sheetCursor = 0, 0
		return m, m.actionCmd(func() { m.ctrl.Logout(m.ctx) })

	case key.Matches(msg, m.keys.Refresh):
		return m, m.actionCmd(func() { m.ctrl.RefreshSpreadsheets(m.ctx) })

	case key.Matches(msg, m.keys.Send):
		return m, m.sendCmd()

	case key.Matches(msg, m.keys.Back):
		if m.pane == paneSheets {
			m.pane = paneSpreadsheets
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.selectCurrent()
	}
	return m, nil
}

func (m Model) actionCmd(action func()) tea.Cmd {
	return func() tea.Msg {
		action()
		return refreshMsg{}
	}
}

func (m Model) sendCmd() tea.Cmd {
	if m.snap.Preview == nil {
		return nil
	}
	return func() tea.Msg {
		ack, ok := m.ctrl.SendPreview(m.ctx)
		if !ok {
			return refreshMsg{}
		}
		return ackMsg{ack: ack}
	}
}

func (m *Model) moveCursor(delta int) {
	switch m.pane {
	case paneSpreadsheets:
		m.listCursor = clamp(m.listCursor+delta, 0, len(m.snap.Spreadsheets)-1)
	case paneSheets:
		if sel, ok := m.snap.Selected(); ok {
			m.sheetCursor = clamp(m.sheetCursor+delta, 0, len(sel.Sheets)-1)
		}
	}
}

func (m Model) selectCurrent() (tea.Model, tea.Cmd) {
	switch m.pane {
	case paneSpreadsheets:
		if m.listCursor >= len(m.snap.Spreadsheets) {
			return m, nil
		}
		id := m.snap.Spreadsheets[m.listCursor].SpreadsheetID
		m.pane = paneSheets
		m.sheetCursor = 0
		m.status = ""
		return m, m.actionCmd(func() { m.ctrl.SelectSpreadsheet(id) })

	case paneSheets:
		sel, ok := m.snap.Selected()
		if !ok || m.sheetCursor >= len(sel.Sheets) {
			return m, nil
		}
		name := sel.Sheets[m.sheetCursor].Title
		m.status = ""
		return m, m.actionCmd(func() { m.ctrl.SelectSheet(m.ctx, name) })
	}
	return m, nil
}

func (m *Model) clampCursors() {
	m.listCursor = clamp(m.listCursor, 0, max(0, len(m.snap.Spreadsheets)-1))
	if sel, ok := m.snap.Selected(); ok {
		m.sheetCursor = clamp(m.sheetCursor, 0, max(0, len(sel.Sheets)-1))
	} else {
		m.sheetCursor = 0
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
