package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tetris-web/achievements/internal/achievement"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the achievement catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		category, _ := cmd.Flags().GetString("category")
		rarity, _ := cmd.Flags().GetString("rarity")
		id, _ := cmd.Flags().GetString("id")

		cat := achievement.Default()

		if id != "" {
			a, ok := cat.ByID(id)
			if !ok {
				return fmt.Errorf("no achievement with id %q", id)
			}
			printAchievement(out, a)
			return nil
		}

		list := cat.All()
		if category != "" {
			list = keepIn(list, cat.ByCategory(achievement.Category(category)))
		}
		if rarity != "" {
			list = keepIn(list, cat.ByRarity(achievement.Rarity(rarity)))
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No achievements match.")
			return nil
		}

		fmt.Fprintf(out, "%-3s %-16s %-20s %-12s %-10s  %s\n", "", "ID", "Name", "Category", "Rarity", "Requirement")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, a := range list {
			fmt.Fprintf(out, "%-3s %-16s %-20s %-12s %-10s  %s\n",
				a.Icon, a.ID, a.Name, a.Category, a.Rarity, a.Requirement())
		}
		fmt.Fprintf(out, "\n%d of %d achievements\n", len(list), cat.Len())
		return nil
	},
}

func init() {
	catalogCmd.Flags().String("category", "", "Only show this category (gameplay, scoring, progression, skill)")
	catalogCmd.Flags().String("rarity", "", "Only show this rarity (common, rare, epic, legendary)")
	catalogCmd.Flags().String("id", "", "Show a single achievement")
}

// keepIn returns the entries of list whose id also appears in other,
// preserving list's order.
func keepIn(list, other []achievement.Achievement) []achievement.Achievement {
	ids := make(map[string]bool, len(other))
	for _, a := range other {
		ids[a.ID] = true
	}
	var out []achievement.Achievement
	for _, a := range list {
		if ids[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

func printAchievement(out io.Writer, a achievement.Achievement) {
	fmt.Fprintf(out, "%s  %s (%s)\n", a.Icon, a.Name, a.ID)
	fmt.Fprintf(out, "  %s\n\n", a.Description)
	fmt.Fprintf(out, "  Category:     %s\n", a.Category)
	fmt.Fprintf(out, "  Rarity:       %s\n", a.Rarity)
	fmt.Fprintf(out, "  Requirement:  %s\n", a.Requirement())
	fmt.Fprintf(out, "  Reward:       %s\n", a.RewardMessage)
}
