package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/mock"
)

func TestSimulate_PlaysRequestedGames(t *testing.T) {
	res, err := simulate(5, 42, mock.Expert)
	require.NoError(t, err)

	assert.Equal(t, 5, res.stats.Lifetime.GamesPlayed)
	assert.True(t, res.stats.Finished)
	assert.Equal(t, achievement.Default().Len(), res.total)
}

func TestSimulate_UnlocksOnceInGameOrder(t *testing.T) {
	res, err := simulate(20, 7, mock.Steady)
	require.NoError(t, err)
	require.NotEmpty(t, res.unlocks)

	seen := make(map[string]bool)
	lastGame := 0
	for _, u := range res.unlocks {
		assert.False(t, seen[u.ID], "%s unlocked twice", u.ID)
		seen[u.ID] = true
		assert.GreaterOrEqual(t, u.game, lastGame)
		lastGame = u.game
	}
	// Any cleared line unlocks first_blood, and it is always reported first.
	assert.Equal(t, "first_blood", res.unlocks[0].ID)
}

func TestSimulate_Deterministic(t *testing.T) {
	a, err := simulate(8, 3, mock.Casual)
	require.NoError(t, err)
	b, err := simulate(8, 3, mock.Casual)
	require.NoError(t, err)
	assert.Equal(t, a.unlocks, b.unlocks)
	assert.Equal(t, a.stats.Lifetime, b.stats.Lifetime)
}

func TestKeepIn_PreservesOrder(t *testing.T) {
	cat := achievement.Default()
	got := keepIn(cat.ByCategory(achievement.CategoryScoring), cat.ByRarity(achievement.RarityCommon))
	for _, a := range got {
		assert.Equal(t, achievement.CategoryScoring, a.Category)
		assert.Equal(t, achievement.RarityCommon, a.Rarity)
	}
	assert.Empty(t, keepIn(cat.All(), nil))
}
