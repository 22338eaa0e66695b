package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/mock"
	"github.com/tetris-web/achievements/internal/progress"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play simulated games offline and print unlocks in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		games, _ := cmd.Flags().GetInt("games")
		seed, _ := cmd.Flags().GetInt64("seed")
		name, _ := cmd.Flags().GetString("player")

		player, ok := mock.PlayerByName(name)
		if !ok {
			return fmt.Errorf("unknown player model %q", name)
		}
		if games <= 0 {
			return fmt.Errorf("--games must be positive")
		}

		res, err := simulate(games, seed, player)
		if err != nil {
			return err
		}

		for _, u := range res.unlocks {
			fmt.Fprintf(out, "game %-4d %s  %-20s %-10s %s\n", u.game, u.Icon, u.Name, u.Rarity, u.RewardMessage)
		}
		life := res.stats.Lifetime
		fmt.Fprintf(out, "\n%s games, %s lines, %s tetrises, best score %s, played %s\n",
			humanize.Comma(int64(life.GamesPlayed)),
			humanize.Comma(int64(life.Lines)),
			humanize.Comma(int64(life.Tetrises)),
			humanize.Comma(int64(life.BestScore)),
			achievement.FormatValue(achievement.TypeTimePlayed, life.TimePlayed),
		)
		fmt.Fprintf(out, "%d of %d achievements unlocked\n", len(res.unlocks), res.total)
		return nil
	},
}

func init() {
	simulateCmd.Flags().Int("games", 10, "Number of games to play")
	simulateCmd.Flags().Int64("seed", 1, "Random seed")
	simulateCmd.Flags().String("player", mock.Steady.Name, "Player model: casual, steady or expert")
}

type simulatedUnlock struct {
	achievement.Achievement
	game int
}

type simulation struct {
	unlocks []simulatedUnlock
	stats   progress.Statistics
	total   int
}

// simulate folds games generated games through a fresh tracker and manager,
// the same path a live profile takes minus persistence.
func simulate(games int, seed int64, player mock.Player) (simulation, error) {
	gen := mock.NewGenerator(seed, player)
	tracker := progress.NewTracker(progress.Statistics{})
	// Simulated games have no wall clock of their own.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	manager := achievement.NewManager(achievement.Default(), nil, achievement.WithClock(func() time.Time {
		return start.Add(time.Duration(tracker.Statistics().Lifetime.TimePlayed * float64(time.Second)))
	}))

	var out simulation
	for gen.Games() < games || !tracker.Statistics().Finished {
		ev := gen.Next()
		stats, err := tracker.ApplyDelta(ev)
		if err != nil {
			return out, fmt.Errorf("game %d: %w", gen.Games(), err)
		}
		for _, a := range manager.OnStatisticsChanged(stats) {
			out.unlocks = append(out.unlocks, simulatedUnlock{Achievement: a, game: gen.Games()})
		}
	}
	out.stats = tracker.Statistics()
	out.total = manager.Catalog().Len()
	return out, nil
}
