package mock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetris-web/achievements/internal/progress"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(7, Steady)
	b := NewGenerator(7, Steady)
	for i := 0; i < 500; i++ {
		require.Equal(t, a.Next(), b.Next(), "event %d", i)
	}
}

func TestGenerator_GameShape(t *testing.T) {
	g := NewGenerator(1, Expert)
	events := g.NextGame()

	require.NotEmpty(t, events)
	assert.Equal(t, progress.EventGameStart, events[0].Kind)
	assert.Equal(t, progress.EventGameOver, events[len(events)-1].Kind)
	assert.Equal(t, 1, g.Games())

	for _, ev := range events[1 : len(events)-1] {
		assert.NotEqual(t, progress.EventGameStart, ev.Kind)
		assert.NotEqual(t, progress.EventGameOver, ev.Kind)
	}
}

func TestGenerator_EventsFoldCleanly(t *testing.T) {
	g := NewGenerator(3, Casual)
	tr := progress.NewTracker(progress.Statistics{})

	for game := 0; game < 3; game++ {
		var last progress.Statistics
		for _, ev := range g.NextGame() {
			s, err := tr.ApplyDelta(ev)
			require.NoError(t, err, "event %+v", ev)
			last = s
		}
		assert.True(t, last.Finished)
		// Level follows lines: one level per ten lines.
		assert.Equal(t, last.Game.Lines/linesPerLevel+1, last.Game.Level)
		assert.GreaterOrEqual(t, last.Game.Score, last.Game.Lines*100)
	}
	assert.Equal(t, 3, tr.Statistics().Lifetime.GamesPlayed)
}

func TestGenerator_TetrisScoring(t *testing.T) {
	g := NewGenerator(11, Expert)
	events := g.NextGame()
	level := 1
	for i, ev := range events {
		if ev.Kind == progress.EventLevel {
			level = ev.Payload.Level
		}
		if ev.Kind == progress.EventLock && ev.Payload.Rows > 0 {
			require.Less(t, i+1, len(events))
			next := events[i+1]
			require.Equal(t, progress.EventScore, next.Kind)
			assert.Equal(t, lineScores[ev.Payload.Rows]*level, next.Payload.Points)
		}
	}
}

func TestPlayerByName(t *testing.T) {
	p, ok := PlayerByName("expert")
	require.True(t, ok)
	assert.Equal(t, Expert.Name, p.Name)

	_, ok = PlayerByName("nobody")
	assert.False(t, ok)
}

func TestGenerator_RunSubmitsUntilCancelled(t *testing.T) {
	g := NewGenerator(5, Steady)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var got []progress.Event
	done := make(chan struct{})
	go func() {
		g.Run(ctx, time.Millisecond, func(_ context.Context, ev progress.Event) error {
			mu.Lock()
			got = append(got, ev)
			n := len(got)
			mu.Unlock()
			if n == 20 {
				cancel()
			}
			return nil
		}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(got), 20)
	assert.Equal(t, progress.EventGameStart, got[0].Kind)
}
