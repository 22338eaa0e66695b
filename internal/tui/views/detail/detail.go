// Package detail renders one achievement as a markdown card.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tetris-web/achievements/internal/tui/theme"
	"github.com/tetris-web/achievements/internal/ws"
)

var stylePanel = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.ColorBorder).
	Padding(0, 1)

// Model holds the detail overlay.
type Model struct {
	style string
	vp    viewport.Model
	err   string
	open  bool
}

// New creates a detail model using the named glamour style ("dark",
// "light", "notty", ...).
func New(style string) Model {
	if style == "" {
		style = "dark"
	}
	return Model{style: style, vp: viewport.New(60, 16)}
}

// Open renders a into a w×h panel.
func (m *Model) Open(a ws.AchievementView, w, h int) {
	m.open = true
	m.vp.Width = max(w-4, 20)
	m.vp.Height = max(h-2, 4)
	m.vp.SetYOffset(0)

	out, err := render(Markdown(a), m.style, m.vp.Width)
	if err != nil {
		m.err = err.Error()
		m.vp.SetContent(Markdown(a))
		return
	}
	m.err = ""
	m.vp.SetContent(out)
}

// Close hides the panel.
func (m *Model) Close() { m.open = false }

// IsOpen reports whether the panel is showing.
func (m Model) IsOpen() bool { return m.open }

// Update scrolls the rendered card.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the panel, or nothing when closed.
func (m Model) View() string {
	if !m.open {
		return ""
	}
	body := m.vp.View()
	if m.err != "" {
		body = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("render: "+m.err) + "\n" + body
	}
	footer := theme.StyleDimmed.Render("j/k scroll  esc close")
	return stylePanel.Render(body + "\n" + footer)
}

func render(md, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// Markdown describes a as a markdown document.
func Markdown(a ws.AchievementView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", a.Icon, a.Name)
	fmt.Fprintf(&b, "*%s*\n\n", a.Description)
	fmt.Fprintf(&b, "- **Category:** %s\n", a.Category)
	fmt.Fprintf(&b, "- **Rarity:** %s\n", a.Rarity)
	fmt.Fprintf(&b, "- **Requirement:** %s\n", a.Requirement())
	if a.Unlocked && a.UnlockedAt != nil {
		fmt.Fprintf(&b, "- **Unlocked:** %s (%s)\n", humanize.Time(*a.UnlockedAt), a.UnlockedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "\n> %s\n", a.RewardMessage)
	} else {
		fmt.Fprintf(&b, "- **Progress:** %.0f%%\n", a.Progress.Fraction*100)
		b.WriteString("\n_Locked._\n")
	}
	return b.String()
}
