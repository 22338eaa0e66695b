package progress

// GameStats holds the counters for the game currently being played.
type GameStats struct {
	Lines      int     `json:"lines"`
	Tetrises   int     `json:"tetrisCount"`
	Combo      int     `json:"combo"`
	Level      int     `json:"level"`
	TimePlayed float64 `json:"timePlayed"` // seconds
	Score      int     `json:"score"`
}

// LifetimeStats accumulates across every game of a profile. Counters are
// only ever added to; the best-of fields only ever grow.
type LifetimeStats struct {
	Lines        int     `json:"lines"`
	Tetrises     int     `json:"tetrisCount"`
	GamesPlayed  int     `json:"gamesPlayed"`
	TimePlayed   float64 `json:"timePlayed"` // seconds
	BestScore    int     `json:"bestScore"`
	BestCombo    int     `json:"bestCombo"`
	HighestLevel int     `json:"highestLevel"`
}

// Statistics is the player snapshot the achievement evaluator reads.
// It contains no reference types, so a plain copy is a deep copy.
type Statistics struct {
	GameID   string        `json:"gameId,omitempty"`
	Finished bool          `json:"finished"`
	Game     GameStats     `json:"game"`
	Lifetime LifetimeStats `json:"lifetime"`
}
