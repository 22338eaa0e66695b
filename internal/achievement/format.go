package achievement

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// String renders c for people, e.g. "lines ≥ 1,000 (lifetime)" or
// "time played ≤ 3 minutes".
func (c Condition) String() string {
	op := "≥"
	if c.Operator == OpLTE {
		op = "≤"
	}
	s := fmt.Sprintf("%s %s %s", strings.ReplaceAll(string(c.Type), "_", " "), op, FormatValue(c.Type, c.Value))
	if c.Scope == ScopeLifetime {
		s += " (lifetime)"
	}
	return s
}

// Requirement renders the full unlock rule of a, gate included.
func (a Achievement) Requirement() string {
	if a.Gate == nil {
		return a.Condition.String()
	}
	return a.Gate.String() + " and " + a.Condition.String()
}

// FormatValue renders a statistic value of type t: durations in words,
// counts with thousands separators.
func FormatValue(t ConditionType, v float64) string {
	if t == TypeTimePlayed {
		var zero time.Time
		d := time.Duration(v * float64(time.Second))
		if d < time.Second {
			return "0 seconds"
		}
		return strings.TrimSpace(humanize.RelTime(zero, zero.Add(d), "", ""))
	}
	return humanize.Comma(int64(v))
}
