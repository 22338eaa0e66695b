package progress

import (
	"errors"
	"fmt"
)

// EventKind classifies discrete game-loop events.
type EventKind string

const (
	EventGameStart EventKind = "game_start" // a new game begins
	EventLock      EventKind = "lock"       // tetromino locked; Payload.Rows lines cleared
	EventScore     EventKind = "score"      // score delta
	EventLevel     EventKind = "level"      // level change
	EventTick      EventKind = "tick"       // elapsed game time
	EventGameOver  EventKind = "game_over"  // game finished
)

// maxRowsPerLock is the most lines a single placement can clear.
const maxRowsPerLock = 4

// ErrInvalidEvent is returned for events whose kind or payload cannot be folded.
var ErrInvalidEvent = errors.New("invalid game event")

// Payload carries the kind-specific data of an Event. Only the field
// relevant to the event kind is read.
type Payload struct {
	Rows    int     `json:"rows,omitempty"`
	Points  int     `json:"points,omitempty"`
	Level   int     `json:"level,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
}

// Event is a single game-loop event, shaped {kind, payload} on the wire.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload Payload   `json:"payload"`
}

// GameStart returns a game_start event. A level of zero starts at level 1.
func GameStart(level int) Event {
	return Event{Kind: EventGameStart, Payload: Payload{Level: level}}
}

// Lock returns a lock event that cleared rows lines.
func Lock(rows int) Event {
	return Event{Kind: EventLock, Payload: Payload{Rows: rows}}
}

// Score returns a score delta event.
func Score(points int) Event {
	return Event{Kind: EventScore, Payload: Payload{Points: points}}
}

// LevelUp returns a level change event.
func LevelUp(level int) Event {
	return Event{Kind: EventLevel, Payload: Payload{Level: level}}
}

// Tick returns an elapsed-time event.
func Tick(seconds float64) Event {
	return Event{Kind: EventTick, Payload: Payload{Seconds: seconds}}
}

// GameOver returns a game_over event.
func GameOver() Event {
	return Event{Kind: EventGameOver}
}

// Validate reports whether the event can be folded into statistics.
func (e Event) Validate() error {
	switch e.Kind {
	case EventGameStart:
		if e.Payload.Level < 0 {
			return fmt.Errorf("%w: negative starting level %d", ErrInvalidEvent, e.Payload.Level)
		}
	case EventLock:
		if e.Payload.Rows < 0 || e.Payload.Rows > maxRowsPerLock {
			return fmt.Errorf("%w: lock cleared %d rows", ErrInvalidEvent, e.Payload.Rows)
		}
	case EventScore:
		if e.Payload.Points < 0 {
			return fmt.Errorf("%w: negative score delta %d", ErrInvalidEvent, e.Payload.Points)
		}
	case EventLevel:
		if e.Payload.Level < 1 {
			return fmt.Errorf("%w: level %d", ErrInvalidEvent, e.Payload.Level)
		}
	case EventTick:
		if e.Payload.Seconds < 0 {
			return fmt.Errorf("%w: negative tick %v", ErrInvalidEvent, e.Payload.Seconds)
		}
	case EventGameOver:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}
