// Package status renders the top bar: connection, profile, live game
// statistics and an animated overall completion meter.
package status

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tetris-web/achievements/internal/achievement"
	stats "github.com/tetris-web/achievements/internal/progress"
	"github.com/tetris-web/achievements/internal/tui/theme"
)

const (
	fps        = 60
	meterWidth = 24
	// settle is how close the meter must be to its target to stop animating.
	settle = 0.001
)

// FrameMsg advances the completion meter animation.
type FrameMsg struct{}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}

// Model holds the status bar state.
type Model struct {
	Connected bool
	Profile   string
	Stats     stats.Statistics
	Width     int

	unlocked, total int

	spring    harmonica.Spring
	pos, vel  float64
	target    float64
	animating bool

	spin  spinner.Model
	meter progress.Model
}

// New creates a status bar model.
func New() Model {
	return Model{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.5),
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.ColorWarning))),
		meter: progress.New(
			progress.WithGradient(string(theme.ColorRare), string(theme.ColorLegendary)),
			progress.WithWidth(meterWidth),
			progress.WithoutPercentage(),
		),
	}
}

// Init starts the connecting spinner.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// SetCompletion moves the meter towards unlocked/total, animating the change.
func (m *Model) SetCompletion(unlocked, total int) tea.Cmd {
	m.unlocked, m.total = unlocked, total
	target := 0.0
	if total > 0 {
		target = float64(unlocked) / float64(total)
	}
	if target == m.target && !m.animating {
		return nil
	}
	m.target = target
	if m.animating {
		return nil
	}
	m.animating = true
	return frame()
}

// Displayed is the meter's current, possibly mid-animation, value.
func (m Model) Displayed() float64 { return m.pos }

// Update advances the animation and the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
		if math.Abs(m.pos-m.target) < settle && math.Abs(m.vel) < settle {
			m.pos, m.vel = m.target, 0
			m.animating = false
			return m, nil
		}
		return m, frame()
	case spinner.TickMsg:
		if m.Connected {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	width := max(m.Width, 40)

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		connStr = m.spin.View() + lipgloss.NewStyle().Foreground(theme.ColorDanger).Render(" Connecting...")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	profile := theme.StyleHeader.Render(m.Profile)

	g := m.Stats.Game
	game := fmt.Sprintf("lvl %d  %s lines  %s pts  %d tetrises  %s",
		g.Level,
		humanize.Comma(int64(g.Lines)),
		humanize.Comma(int64(g.Score)),
		g.Tetrises,
		achievement.FormatValue(achievement.TypeTimePlayed, g.TimePlayed),
	)
	if m.Stats.Finished {
		game += theme.StyleDimmed.Render("  (game over)")
	}

	meter := m.meter.ViewAs(m.pos) + " " +
		theme.StyleDimmed.Render(fmt.Sprintf("%d/%d", m.unlocked, m.total))

	content := connStr + sep + profile + sep + game + sep + meter

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
