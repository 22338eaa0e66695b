package achievement

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Category groups related achievements for display. It has no effect on
// evaluation.
type Category string

const (
	CategoryGameplay    Category = "gameplay"
	CategoryScoring     Category = "scoring"
	CategoryProgression Category = "progression"
	CategorySkill       Category = "skill"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryGameplay, CategoryScoring, CategoryProgression, CategorySkill}

// Rarity is informational only.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities lists every rarity from most to least common.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// ConditionType selects the statistic a condition reads.
type ConditionType string

const (
	TypeLines       ConditionType = "lines"
	TypeTetrisCount ConditionType = "tetris_count"
	TypeCombo       ConditionType = "combo"
	TypeLevel       ConditionType = "level"
	TypeTimePlayed  ConditionType = "time_played"
	TypeScore       ConditionType = "score"
)

// Operator is the comparison direction of a condition.
type Operator string

const (
	OpGTE Operator = "gte"
	OpLTE Operator = "lte"
)

// Scope binds a condition to the current game or to the lifetime totals.
// The zero value means ScopeGame.
type Scope string

const (
	ScopeGame     Scope = "game"
	ScopeLifetime Scope = "lifetime"
)

// Condition is a single threshold rule.
type Condition struct {
	Type     ConditionType `json:"type"`
	Operator Operator      `json:"operator"`
	Value    float64       `json:"value"`
	Scope    Scope         `json:"scope,omitempty"`
}

// Achievement describes a single one-shot unlockable goal.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Category    Category  `json:"category"`
	Rarity      Rarity    `json:"rarity"`
	Condition   Condition `json:"condition"`
	// Gate must hold before Condition is considered. It is the one exception
	// to a single condition per achievement: only lte achievements carry one,
	// so that "at most N" is not satisfied by an empty game. There is no
	// other way to combine conditions.
	Gate          *Condition `json:"gate,omitempty"`
	RewardMessage string     `json:"rewardMessage"`
}

func (a Achievement) clone() Achievement {
	if a.Gate != nil {
		g := *a.Gate
		a.Gate = &g
	}
	return a
}

// ErrDuplicateID is reported by Validate when two achievements share an id.
var ErrDuplicateID = errors.New("duplicate achievement id")

// ErrInvalidAchievement is reported by Validate for malformed definitions.
var ErrInvalidAchievement = errors.New("invalid achievement")

// Catalog is an immutable, ordered achievement registry. All lookups return
// copies, so callers can never mutate the registry.
type Catalog struct {
	list []Achievement
	byID map[string]int
}

// NewCatalog validates list and builds a catalog preserving its order.
func NewCatalog(list []Achievement) (*Catalog, error) {
	if err := Validate(list); err != nil {
		return nil, err
	}
	c := &Catalog{
		list: make([]Achievement, len(list)),
		byID: make(map[string]int, len(list)),
	}
	for i, a := range list {
		c.list[i] = a.clone()
		c.byID[a.ID] = i
	}
	return c, nil
}

// Default returns the compiled-in catalog. It panics if the built-in
// definitions are malformed, which the package tests guard against.
func Default() *Catalog {
	c, err := NewCatalog(definitions())
	if err != nil {
		panic(fmt.Sprintf("achievement: built-in catalog: %v", err))
	}
	return c
}

// ByID looks up an achievement. An unknown id reports false.
func (c *Catalog) ByID(id string) (Achievement, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Achievement{}, false
	}
	return c.list[i].clone(), true
}

// ByCategory returns the achievements of cat in catalog order.
func (c *Catalog) ByCategory(cat Category) []Achievement {
	return c.filter(func(a Achievement) bool { return a.Category == cat })
}

// ByRarity returns the achievements of r in catalog order.
func (c *Catalog) ByRarity(r Rarity) []Achievement {
	return c.filter(func(a Achievement) bool { return a.Rarity == r })
}

// All returns every achievement in catalog order.
func (c *Catalog) All() []Achievement {
	return c.filter(func(Achievement) bool { return true })
}

// Len reports the number of achievements.
func (c *Catalog) Len() int { return len(c.list) }

func (c *Catalog) filter(keep func(Achievement) bool) []Achievement {
	matched := lo.Filter(c.list, func(a Achievement, _ int) bool { return keep(a) })
	return lo.Map(matched, func(a Achievement, _ int) Achievement { return a.clone() })
}

// Validate checks the invariants a catalog must satisfy: unique non-empty
// ids, known enumerations and gate rules. All violations are reported.
func Validate(list []Achievement) error {
	var errs []error
	seen := make(map[string]bool, len(list))
	for i, a := range list {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("%w: entry %d has no id", ErrInvalidAchievement, i))
			continue
		}
		if seen[a.ID] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateID, a.ID))
		}
		seen[a.ID] = true

		if !lo.Contains(Categories, a.Category) {
			errs = append(errs, fmt.Errorf("%w: %s: category %q", ErrInvalidAchievement, a.ID, a.Category))
		}
		if !lo.Contains(Rarities, a.Rarity) {
			errs = append(errs, fmt.Errorf("%w: %s: rarity %q", ErrInvalidAchievement, a.ID, a.Rarity))
		}
		if err := checkCondition(a.Condition); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidAchievement, a.ID, err))
		}
		if a.Gate != nil {
			switch {
			case a.Condition.Operator != OpLTE:
				errs = append(errs, fmt.Errorf("%w: %s: gate on a %s condition", ErrInvalidAchievement, a.ID, a.Condition.Operator))
			case a.Gate.Operator != OpGTE:
				errs = append(errs, fmt.Errorf("%w: %s: gate operator must be gte", ErrInvalidAchievement, a.ID))
			}
			if err := checkCondition(*a.Gate); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: gate: %v", ErrInvalidAchievement, a.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkCondition(c Condition) error {
	if _, err := selector(c.Scope, c.Type); err != nil {
		return err
	}
	switch c.Operator {
	case OpGTE, OpLTE:
	default:
		return &ConditionError{Condition: c, Reason: "unknown operator"}
	}
	if c.Value < 0 {
		return &ConditionError{Condition: c, Reason: "negative threshold"}
	}
	return nil
}
