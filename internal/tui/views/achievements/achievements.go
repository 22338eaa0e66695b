// Package achievements renders the catalog panel: category tabs, lock
// state, rarity badges and per-achievement progress bars.
package achievements

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tetris-web/achievements/internal/achievement"
	stats "github.com/tetris-web/achievements/internal/progress"
	"github.com/tetris-web/achievements/internal/tui/client"
	"github.com/tetris-web/achievements/internal/tui/theme"
	"github.com/tetris-web/achievements/internal/ws"
)

const barWidth = 18

// LoadedMsg is returned when the /api/achievements fetch completes.
type LoadedMsg struct {
	Items []ws.AchievementView
	Err   error
}

// FetchCmd returns a Bubble Tea command that fetches achievements via HTTP.
func FetchCmd(h *client.HTTPClient) tea.Cmd {
	return func() tea.Msg {
		items, err := h.GetAchievements(client.Filter{})
		return LoadedMsg{Items: items, Err: err}
	}
}

// Model holds the achievements panel state.
type Model struct {
	items     []ws.AchievementView
	activeTab int
	cursor    int
	loading   bool
	fetchErr  string
	bar       progress.Model
}

// New returns a Model in loading state.
func New() Model {
	return Model{
		loading: true,
		bar: progress.New(
			progress.WithSolidFill(string(theme.ColorUnlocked)),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
	}
}

// ApplyLoaded stores fetched achievements.
func (m *Model) ApplyLoaded(msg LoadedMsg) {
	m.loading = false
	if msg.Err != nil {
		m.fetchErr = msg.Err.Error()
		return
	}
	m.SetItems(msg.Items)
}

// SetItems replaces the whole list, e.g. from a snapshot.
func (m *Model) SetItems(items []ws.AchievementView) {
	m.loading = false
	m.fetchErr = ""
	m.items = items
	m.cursor = clamp(m.cursor, 0, max(len(m.filtered())-1, 0))
}

// ApplyStats recomputes progress of locked achievements.
func (m *Model) ApplyStats(s stats.Statistics) {
	for i := range m.items {
		if m.items[i].Unlocked {
			continue
		}
		m.items[i].Progress = achievement.ProgressOf(m.items[i].Achievement, s)
	}
}

// ApplyUnlock marks an achievement as unlocked when the WS notification arrives.
func (m *Model) ApplyUnlock(p ws.AchievementUnlockedPayload) {
	for i := range m.items {
		if m.items[i].ID == p.ID {
			at := p.UnlockedAt
			m.items[i].Unlocked = true
			m.items[i].UnlockedAt = &at
			m.items[i].Progress.Fraction = 1
			return
		}
	}
}

// Counts reports unlocked and total achievements across all categories.
func (m Model) Counts() (unlocked, total int) {
	return countUnlocked(m.items), len(m.items)
}

// Selected returns the achievement under the cursor.
func (m Model) Selected() (ws.AchievementView, bool) {
	f := m.filtered()
	if m.cursor < 0 || m.cursor >= len(f) {
		return ws.AchievementView{}, false
	}
	return f[m.cursor], true
}

// ActiveCategory is the category of the current tab.
func (m Model) ActiveCategory() achievement.Category {
	return achievement.Categories[m.activeTab]
}

// Update processes key messages forwarded from the parent.
func (m Model) Update(msg tea.KeyMsg) Model {
	n := len(achievement.Categories)
	switch msg.String() {
	case "left", "h":
		if m.activeTab > 0 {
			m.activeTab--
			m.cursor = 0
		}
	case "right", "l":
		if m.activeTab < n-1 {
			m.activeTab++
			m.cursor = 0
		}
	case "tab":
		m.activeTab = (m.activeTab + 1) % n
		m.cursor = 0
	case "j", "down":
		if m.cursor < len(m.filtered())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	}
	return m
}

func (m Model) filtered() []ws.AchievementView {
	cat := m.ActiveCategory()
	var out []ws.AchievementView
	for _, v := range m.items {
		if v.Category == cat {
			out = append(out, v)
		}
	}
	return out
}

// View renders the panel into a w×h box.
func (m Model) View(w, h int) string {
	inner := m.renderInner(max(w-4, 20), max(h-2, 6))
	return lipgloss.NewStyle().
		Width(max(w-2, 22)).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(inner)
}

func (m Model) renderInner(w, h int) string {
	var b strings.Builder

	if m.loading {
		b.WriteString(theme.StyleDimmed.Render("Loading..."))
		return b.String()
	}
	if m.fetchErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("Error: " + m.fetchErr))
		return b.String()
	}

	var tabs []string
	for i, cat := range achievement.Categories {
		label := theme.CategoryLabel(cat)
		if i == m.activeTab {
			tabs = append(tabs, lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.CategoryColor(cat)).
				Underline(true).
				Render(label))
		} else {
			tabs = append(tabs, theme.StyleDimmed.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "  ") + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("─", w)) + "\n")

	filtered := m.filtered()
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("%d / %d unlocked", countUnlocked(filtered), len(filtered))) + "\n\n")

	// Each row takes two lines: name and description or progress.
	maxItems := max((h-6)/2, 1)
	start := 0
	if m.cursor >= maxItems {
		start = m.cursor - maxItems + 1
	}

	shown := 0
	for i := start; i < len(filtered) && shown < maxItems; i++ {
		b.WriteString(m.renderRow(filtered[i], i == m.cursor, w))
		shown++
	}

	if len(filtered) == 0 {
		b.WriteString(theme.StyleDimmed.Render("No achievements in this category."))
	}
	if remaining := len(filtered) - start - shown; remaining > 0 {
		b.WriteString("\n" + theme.StyleDimmed.Render(fmt.Sprintf("↓ %d more", remaining)))
	}
	return b.String()
}

func (m Model) renderRow(a ws.AchievementView, selected bool, w int) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}

	var lockGlyph string
	var nameStyle lipgloss.Style
	if a.Unlocked {
		lockGlyph = lipgloss.NewStyle().Foreground(theme.ColorUnlocked).Render("✓")
		nameStyle = lipgloss.NewStyle().Foreground(theme.ColorBright)
	} else {
		lockGlyph = theme.StyleDimmed.Render("○")
		nameStyle = theme.StyleDimmed
	}
	if selected {
		nameStyle = nameStyle.Bold(true)
	}

	nameLine := prefix + lockGlyph + " " + theme.RarityBadge(a.Rarity) + " " + a.Icon + " " + nameStyle.Render(a.Name)

	var second string
	if a.Unlocked && a.UnlockedAt != nil {
		second = theme.StyleDimmed.Render("unlocked " + humanize.Time(*a.UnlockedAt))
	} else {
		second = m.bar.ViewAs(a.Progress.Fraction) + " " + theme.StyleDimmed.Render(progressLabel(a))
	}
	descLine := "      " + truncate(second, w)

	return nameLine + "\n" + descLine + "\n"
}

// progressLabel renders "current / target" in the condition's units.
func progressLabel(a ws.AchievementView) string {
	p := a.Progress
	return achievement.FormatValue(p.Type, p.Current) + " / " + achievement.FormatValue(p.Type, p.Target)
}

func countUnlocked(items []ws.AchievementView) int {
	n := 0
	for i := 0; i < len(items); i++ {
		if items[i].Unlocked {
			n++
		}
	}
	return n
}

// truncate shortens plain text; styled text is left alone.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || lipgloss.Width(s) <= maxLen || strings.Contains(s, "\x1b") {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
