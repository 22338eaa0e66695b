package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tetris-web/achievements/internal/tui/client"
	"github.com/tetris-web/achievements/internal/tui/theme"
	"github.com/tetris-web/achievements/internal/tui/views/achievements"
	"github.com/tetris-web/achievements/internal/tui/views/debug"
	"github.com/tetris-web/achievements/internal/tui/views/detail"
	"github.com/tetris-web/achievements/internal/tui/views/status"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayLog
)

// Options configures the root model.
type Options struct {
	Profile string
	// MarkdownStyle is the glamour style of the detail card.
	MarkdownStyle string
}

// Model is the root Bubble Tea model.
type Model struct {
	ws     *client.WSClient
	http   *client.HTTPClient
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	overlay Overlay

	statusBar status.Model
	list      achievements.Model
	detail    detail.Model
	log       debug.Model

	toasts    []toast
	nextToast int

	connected bool
}

// New creates the root model. Either client may be nil.
func New(ws *client.WSClient, http *client.HTTPClient, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	sb := status.New()
	sb.Profile = opts.Profile
	return Model{
		ws:        ws,
		http:      http,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		statusBar: sb,
		list:      achievements.New(),
		detail:    detail.New(opts.MarkdownStyle),
		log:       debug.New(),
	}
}

// Init starts the WebSocket connection and the initial HTTP fetch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.statusBar.Init()}
	if m.ws != nil {
		cmds = append(cmds, m.ws.Listen(m.ctx))
	}
	if m.http != nil {
		cmds = append(cmds, achievements.FetchCmd(m.http))
	}
	return tea.Batch(cmds...)
}

func (m Model) readNext() tea.Cmd {
	if m.ws == nil {
		return nil
	}
	return m.ws.ReadLoop(m.ctx)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case status.FrameMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.statusBar, cmd = m.statusBar.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case achievements.LoadedMsg:
		m.list.ApplyLoaded(msg)
		if msg.Err != nil {
			m.log.Addf(debug.KindError, "fetch achievements: %v", msg.Err)
		}
		anim := m.updateCompletion()
		return m, anim

	case client.WSConnectedMsg:
		m.connected = true
		m.statusBar.Connected = true
		m.log.Add(debug.KindWS, "connected")
		return m, m.readNext()

	case client.WSDisconnectedMsg:
		m.connected = false
		m.statusBar.Connected = false
		if msg.Err != nil {
			m.log.Addf(debug.KindWS, "disconnected: %v", msg.Err)
		}
		cmds := []tea.Cmd{m.statusBar.Init()}
		if m.ws != nil {
			cmds = append(cmds, m.ws.Listen(m.ctx))
		}
		return m, tea.Batch(cmds...)

	case client.WSSnapshotMsg:
		m.list.SetItems(msg.Payload.Achievements)
		m.statusBar.Profile = msg.Payload.Profile
		m.statusBar.Stats = msg.Payload.Stats
		m.log.Addf(debug.KindWS, "snapshot for %s", msg.Payload.Profile)
		anim := m.updateCompletion()
		return m, tea.Batch(m.readNext(), anim)

	case client.WSStatsMsg:
		m.list.ApplyStats(msg.Payload.Stats)
		m.statusBar.Stats = msg.Payload.Stats
		return m, m.readNext()

	case client.WSAchievementMsg:
		m.list.ApplyUnlock(msg.Payload)
		m.log.Addf(debug.KindUnlock, "%s %s (%s)", msg.Payload.Icon, msg.Payload.Name, msg.Payload.Rarity)
		expire := m.pushToast(msg.Payload)
		anim := m.updateCompletion()
		return m, tea.Batch(m.readNext(), expire, anim)

	case client.WSErrorMsg:
		m.log.Add(debug.KindError, msg.Payload.Message)
		return m, m.readNext()
	}

	if m.overlay == OverlayDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateCompletion() tea.Cmd {
	return m.statusBar.SetCompletion(m.list.Counts())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		if m.ws != nil {
			m.ws.Close()
		}
		return m, tea.Quit
	}

	switch m.overlay {
	case OverlayDetail:
		if key.Matches(msg, m.keys.Escape) {
			m.overlay = OverlayNone
			m.detail.Close()
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case OverlayLog:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Log):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.log.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.log.ScrollDown(1)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Enter):
		if a, ok := m.list.Selected(); ok {
			m.detail.Open(a, m.overlayWidth(), m.overlayHeight())
			m.overlay = OverlayDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Log):
		m.overlay = OverlayLog
		return m, nil

	case key.Matches(msg, m.keys.Resync):
		if m.ws != nil {
			if err := m.ws.Resync(); err != nil {
				m.log.Addf(debug.KindError, "resync: %v", err)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.http != nil {
			return m, achievements.FetchCmd(m.http)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right),
		key.Matches(msg, m.keys.Tab):
		m.list = m.list.Update(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) overlayWidth() int  { return min(max(m.width-8, 40), 90) }
func (m Model) overlayHeight() int { return max(m.height-6, 10) }

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if !m.connected {
		return m.renderDisconnected()
	}

	switch m.overlay {
	case OverlayDetail:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.detail.View())
	case OverlayLog:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.log.View(m.overlayWidth(), m.overlayHeight()))
	}

	sections := []string{m.statusBar.View()}
	for _, t := range m.toasts {
		sections = append(sections, renderToast(t.payload))
	}
	sections = append(sections,
		m.list.View(m.width, m.height-6-4*len(m.toasts)),
		theme.StyleDimmed.Render("  j/k:select  h/l/tab:category  enter:details  d:log  r:resync  q:quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderDisconnected() string {
	box := lipgloss.NewStyle().
		Padding(1, 3).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorDanger).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDanger).Render("DISCONNECTED"),
			"",
			theme.StyleDimmed.Render("Reconnecting to the achievements server..."),
		))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		lipgloss.Place(m.width, max(m.height-3, 5), lipgloss.Center, lipgloss.Center, box),
	)
}
