package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/tetris-web/achievements/internal/tui/theme"
	"github.com/tetris-web/achievements/internal/ws"
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3
)

type toast struct {
	id      int
	payload ws.AchievementUnlockedPayload
}

// toastExpiredMsg removes the toast with the given id.
type toastExpiredMsg struct{ id int }

func expireToast(id int) tea.Cmd {
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

// pushToast queues an unlock banner. Older banners make room for new ones.
func (m *Model) pushToast(p ws.AchievementUnlockedPayload) tea.Cmd {
	m.nextToast++
	m.toasts = append(m.toasts, toast{id: m.nextToast, payload: p})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return expireToast(m.nextToast)
}

func (m *Model) dropToast(id int) {
	m.toasts = lo.Reject(m.toasts, func(t toast, _ int) bool { return t.id == id })
}

func renderToast(p ws.AchievementUnlockedPayload) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).
		Render(p.Icon + " Achievement unlocked: " + p.Name)
	body := theme.StyleDimmed.Render(p.RewardMessage)
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.RarityColor(p.Rarity)).
		Render(title + " " + theme.RarityBadge(p.Rarity) + "\n" + body)
}
