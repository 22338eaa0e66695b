package achievement

import (
	"fmt"

	"github.com/tetris-web/achievements/internal/progress"
)

// ConditionError describes a condition outside the closed set of types,
// operators and scopes. Evaluate panics with it: a malformed condition is a
// catalog defect, not a runtime state.
type ConditionError struct {
	Condition Condition
	Reason    string
}

func (e *ConditionError) Error() string {
	c := e.Condition
	return fmt.Sprintf("condition {type:%q operator:%q scope:%q value:%v}: %s",
		c.Type, c.Operator, c.Scope, c.Value, e.Reason)
}

type statFunc func(progress.Statistics) float64

// selector maps (scope, type) to the counter it reads. Lifetime combo and
// level read the best-ever values; lifetime score reads the best game score.
func selector(scope Scope, typ ConditionType) (statFunc, error) {
	switch scope {
	case ScopeGame, "":
		switch typ {
		case TypeLines:
			return func(s progress.Statistics) float64 { return float64(s.Game.Lines) }, nil
		case TypeTetrisCount:
			return func(s progress.Statistics) float64 { return float64(s.Game.Tetrises) }, nil
		case TypeCombo:
			return func(s progress.Statistics) float64 { return float64(s.Game.Combo) }, nil
		case TypeLevel:
			return func(s progress.Statistics) float64 { return float64(s.Game.Level) }, nil
		case TypeTimePlayed:
			return func(s progress.Statistics) float64 { return s.Game.TimePlayed }, nil
		case TypeScore:
			return func(s progress.Statistics) float64 { return float64(s.Game.Score) }, nil
		}
	case ScopeLifetime:
		switch typ {
		case TypeLines:
			return func(s progress.Statistics) float64 { return float64(s.Lifetime.Lines) }, nil
		case TypeTetrisCount:
			return func(s progress.Statistics) float64 { return float64(s.Lifetime.Tetrises) }, nil
		case TypeCombo:
			return func(s progress.Statistics) float64 { return float64(s.Lifetime.BestCombo) }, nil
		case TypeLevel:
			return func(s progress.Statistics) float64 { return float64(s.Lifetime.HighestLevel) }, nil
		case TypeTimePlayed:
			return func(s progress.Statistics) float64 { return s.Lifetime.TimePlayed }, nil
		case TypeScore:
			return func(s progress.Statistics) float64 { return float64(s.Lifetime.BestScore) }, nil
		}
	default:
		return nil, &ConditionError{Condition: Condition{Type: typ, Scope: scope}, Reason: "unknown scope"}
	}
	return nil, &ConditionError{Condition: Condition{Type: typ, Scope: scope}, Reason: "unknown type"}
}

// Value returns the statistic cond reads. It panics with *ConditionError
// for an unknown type or scope.
func Value(cond Condition, stats progress.Statistics) float64 {
	read, err := selector(cond.Scope, cond.Type)
	if err != nil {
		ce := err.(*ConditionError)
		ce.Condition = cond
		panic(ce)
	}
	return read(stats)
}

// Evaluate reports whether stats satisfies cond. It is pure and panics with
// *ConditionError for an unknown type, operator or scope.
func Evaluate(cond Condition, stats progress.Statistics) bool {
	v := Value(cond, stats)
	switch cond.Operator {
	case OpGTE:
		return v >= cond.Value
	case OpLTE:
		return v <= cond.Value
	default:
		panic(&ConditionError{Condition: cond, Reason: "unknown operator"})
	}
}

// Satisfied reports whether a is earned by stats: the gate, if any, holds
// and the condition holds.
func Satisfied(a Achievement, stats progress.Statistics) bool {
	if a.Gate != nil && !Evaluate(*a.Gate, stats) {
		return false
	}
	return Evaluate(a.Condition, stats)
}
