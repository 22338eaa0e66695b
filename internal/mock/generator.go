package mock

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/progress"
)

// lineScores is the guideline score per clear, multiplied by the level.
var lineScores = [5]int{0, 100, 300, 500, 800}

const (
	linesPerLevel   = 10
	piecesPerSecond = 2
)

// Player shapes how a simulated player clears lines.
type Player struct {
	Name string
	// rowWeights[n] is the relative chance a piece clears n rows.
	rowWeights [5]int
	// topOut is the base per-piece chance of losing; it grows with level.
	topOut float64
}

var (
	Casual = Player{Name: "casual", rowWeights: [5]int{70, 18, 7, 3, 2}, topOut: 0.004}
	Steady = Player{Name: "steady", rowWeights: [5]int{55, 20, 12, 6, 7}, topOut: 0.002}
	Expert = Player{Name: "expert", rowWeights: [5]int{45, 12, 10, 8, 25}, topOut: 0.0008}
)

// Players lists the built-in player models.
var Players = []Player{Casual, Steady, Expert}

// PlayerByName looks a player model up by name.
func PlayerByName(name string) (Player, bool) {
	for _, p := range Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// Generator produces a deterministic stream of game events for a seed,
// standing in for the browser game loop.
type Generator struct {
	rng    *rand.Rand
	player Player

	queue  []progress.Event
	inGame bool
	level  int
	lines  int
	pieces int
	games  int
}

func NewGenerator(seed int64, player Player) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		player: player,
	}
}

// Games reports how many games have been started.
func (g *Generator) Games() int { return g.games }

// Next returns the next event. Games follow one another indefinitely.
func (g *Generator) Next() progress.Event {
	for len(g.queue) == 0 {
		g.step()
	}
	ev := g.queue[0]
	g.queue = g.queue[1:]
	return ev
}

// NextGame returns events up to and including the next game_over. On a
// fresh generator that is one whole game starting with game_start.
func (g *Generator) NextGame() []progress.Event {
	var events []progress.Event
	for {
		ev := g.Next()
		events = append(events, ev)
		if ev.Kind == progress.EventGameOver {
			return events
		}
	}
}

func (g *Generator) step() {
	if !g.inGame {
		g.inGame = true
		g.games++
		g.level = 1
		g.lines = 0
		g.pieces = 0
		g.emit(progress.GameStart(1))
		return
	}

	g.pieces++
	rows := g.rows()
	g.emit(progress.Lock(rows))
	if rows > 0 {
		g.emit(progress.Score(lineScores[rows] * g.level))
		g.lines += rows
		if lvl := g.lines/linesPerLevel + 1; lvl > g.level {
			g.level = lvl
			g.emit(progress.LevelUp(lvl))
		}
	}
	if g.pieces%piecesPerSecond == 0 {
		g.emit(progress.Tick(1))
	}

	if g.rng.Float64() < g.player.topOut*float64(g.level) {
		g.inGame = false
		g.emit(progress.GameOver())
	}
}

func (g *Generator) rows() int {
	total := 0
	for _, w := range g.player.rowWeights {
		total += w
	}
	n := g.rng.Intn(total)
	for rows, w := range g.player.rowWeights {
		if n < w {
			return rows
		}
		n -= w
	}
	return 0
}

func (g *Generator) emit(ev progress.Event) {
	g.queue = append(g.queue, ev)
}

// SubmitFunc delivers one event; Coordinator.Submit and Hub.Submit fit.
type SubmitFunc func(context.Context, progress.Event) error

// Run feeds one event per interval into submit until ctx is cancelled.
// Rejected events are logged and skipped.
func (g *Generator) Run(ctx context.Context, interval time.Duration, submit SubmitFunc, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("mock game loop started", zap.String("player", g.player.Name), zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ev := g.Next()
			if err := submit(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("mock event rejected", zap.String("event", string(ev.Kind)), zap.Error(err))
			}
		}
	}
}
