package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionString(t *testing.T) {
	tests := []struct {
		cond Condition
		want string
	}{
		{gte(TypeLines, 1), "lines ≥ 1"},
		{gte(TypeScore, 100000), "score ≥ 100,000"},
		{lifetime(gte(TypeLines, 500)), "lines ≥ 500 (lifetime)"},
		{lte(TypeTimePlayed, 180), "time played ≤ 3 minutes"},
		{lifetime(gte(TypeTimePlayed, 3600)), "time played ≥ 1 hour (lifetime)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.String())
		})
	}
}

func TestRequirement_IncludesGate(t *testing.T) {
	a, ok := Default().ByID("quick_fingers")
	if !ok {
		t.Fatal("quick_fingers missing from catalog")
	}
	assert.Equal(t, "lines ≥ 50 and time played ≤ 3 minutes", a.Requirement())

	b, _ := Default().ByID("first_blood")
	assert.Equal(t, "lines ≥ 1", b.Requirement())
}

func TestFormatValue_SubSecond(t *testing.T) {
	assert.Equal(t, "0 seconds", FormatValue(TypeTimePlayed, 0.4))
	assert.Equal(t, "10 minutes", FormatValue(TypeTimePlayed, 600))
}
