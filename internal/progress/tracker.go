package progress

import (
	"fmt"

	"github.com/google/uuid"
)

const startingLevel = 1

// Tracker folds game events into a single Statistics value. It is the sole
// mutator of that value and is not safe for concurrent use; callers that
// share a Tracker across goroutines must serialise ApplyDelta themselves.
type Tracker struct {
	stats Statistics
	newID func() string
}

// NewTracker returns a Tracker seeded with initial. Production callers pass
// the persisted lifetime counters with zeroed per-game counters.
func NewTracker(initial Statistics) *Tracker {
	return &Tracker{stats: initial, newID: uuid.NewString}
}

// Statistics returns a copy of the current statistics.
func (t *Tracker) Statistics() Statistics {
	return t.stats
}

// ApplyDelta folds ev into the statistics and returns the updated snapshot.
// An invalid event leaves the statistics untouched.
func (t *Tracker) ApplyDelta(ev Event) (Statistics, error) {
	if err := ev.Validate(); err != nil {
		return t.stats, err
	}
	if t.stats.Finished && ev.Kind != EventGameStart {
		return t.stats, fmt.Errorf("%w: %s after game_over", ErrInvalidEvent, ev.Kind)
	}

	g := &t.stats.Game
	life := &t.stats.Lifetime

	switch ev.Kind {
	case EventGameStart:
		level := ev.Payload.Level
		if level == 0 {
			level = startingLevel
		}
		t.stats.GameID = t.newID()
		t.stats.Finished = false
		t.stats.Game = GameStats{Level: level}
		life.GamesPlayed++
		life.HighestLevel = max(life.HighestLevel, level)

	case EventLock:
		rows := ev.Payload.Rows
		if rows == 0 {
			g.Combo = 0
			break
		}
		g.Lines += rows
		life.Lines += rows
		g.Combo++
		life.BestCombo = max(life.BestCombo, g.Combo)
		if rows == maxRowsPerLock {
			g.Tetrises++
			life.Tetrises++
		}

	case EventScore:
		g.Score += ev.Payload.Points
		life.BestScore = max(life.BestScore, g.Score)

	case EventLevel:
		g.Level = max(g.Level, ev.Payload.Level)
		life.HighestLevel = max(life.HighestLevel, g.Level)

	case EventTick:
		g.TimePlayed += ev.Payload.Seconds
		life.TimePlayed += ev.Payload.Seconds

	case EventGameOver:
		t.stats.Finished = true
	}

	return t.stats, nil
}
