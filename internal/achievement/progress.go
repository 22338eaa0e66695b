package achievement

import "github.com/tetris-web/achievements/internal/progress"

// Progress is how far a player is towards an achievement.
type Progress struct {
	// Type is the statistic Current and Target are measured in.
	Type     ConditionType `json:"type"`
	Current  float64       `json:"current"`
	Target   float64       `json:"target"`
	Fraction float64       `json:"fraction"` // 0..1
}

// ProgressOf measures stats against a. For gte conditions it is the counter
// over the threshold, clamped to 1. An lte achievement reports progress
// towards its gate while the condition still holds, and zero once the
// window has passed.
func ProgressOf(a Achievement, stats progress.Statistics) Progress {
	c := a.Condition
	if c.Operator == OpLTE {
		if !Evaluate(c, stats) {
			return Progress{Type: c.Type, Current: Value(c, stats), Target: c.Value}
		}
		if a.Gate == nil {
			return Progress{Type: c.Type, Current: Value(c, stats), Target: c.Value, Fraction: 1}
		}
		c = *a.Gate
	}
	cur := Value(c, stats)
	p := Progress{Type: c.Type, Current: cur, Target: c.Value, Fraction: 1}
	if c.Value > 0 {
		p.Fraction = min(cur/c.Value, 1)
	}
	return p
}
