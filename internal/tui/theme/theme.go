// Package theme provides the Lip Gloss color palette and reusable styles
// for the achievements TUI. It is a leaf package with no TUI imports to
// avoid import cycles.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tetris-web/achievements/internal/achievement"
)

// Rarity colors.
var (
	ColorCommon    = lipgloss.Color("#9ca3af")
	ColorRare      = lipgloss.Color("#3b82f6")
	ColorEpic      = lipgloss.Color("#a855f7")
	ColorLegendary = lipgloss.Color("#f59e0b")
)

// Category colors, one per tetromino.
var (
	ColorGameplay    = lipgloss.Color("#06b6d4") // I
	ColorScoring     = lipgloss.Color("#eab308") // O
	ColorProgression = lipgloss.Color("#22c55e") // S
	ColorSkill       = lipgloss.Color("#ef4444") // Z
)

// UI chrome colors.
var (
	ColorBorder   = lipgloss.Color("#4b5563")
	ColorDimmed   = lipgloss.Color("#6b7280")
	ColorBright   = lipgloss.Color("#f9fafb")
	ColorBg       = lipgloss.Color("#111827")
	ColorUnlocked = lipgloss.Color("#16a34a")
	ColorHealthy  = lipgloss.Color("#22c55e")
	ColorWarning  = lipgloss.Color("#d97706")
	ColorDanger   = lipgloss.Color("#dc2626")
)

// RarityColor returns the color for a rarity.
func RarityColor(r achievement.Rarity) lipgloss.Color {
	switch r {
	case achievement.RarityCommon:
		return ColorCommon
	case achievement.RarityRare:
		return ColorRare
	case achievement.RarityEpic:
		return ColorEpic
	case achievement.RarityLegendary:
		return ColorLegendary
	default:
		return ColorDimmed
	}
}

// RarityBadge returns a compact colored badge such as "[E]".
func RarityBadge(r achievement.Rarity) string {
	var label string
	switch r {
	case achievement.RarityCommon:
		label = "[C]"
	case achievement.RarityRare:
		label = "[R]"
	case achievement.RarityEpic:
		label = "[E]"
	case achievement.RarityLegendary:
		label = "[L]"
	default:
		label = "[?]"
	}
	return lipgloss.NewStyle().Foreground(RarityColor(r)).Bold(true).Render(label)
}

// CategoryColor returns the color for a category.
func CategoryColor(c achievement.Category) lipgloss.Color {
	switch c {
	case achievement.CategoryGameplay:
		return ColorGameplay
	case achievement.CategoryScoring:
		return ColorScoring
	case achievement.CategoryProgression:
		return ColorProgression
	case achievement.CategorySkill:
		return ColorSkill
	default:
		return ColorDimmed
	}
}

// CategoryLabel returns the tab label for a category.
func CategoryLabel(c achievement.Category) string {
	switch c {
	case achievement.CategoryGameplay:
		return "Gameplay"
	case achievement.CategoryScoring:
		return "Scoring"
	case achievement.CategoryProgression:
		return "Progression"
	case achievement.CategorySkill:
		return "Skill"
	default:
		return string(c)
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)
)
