package achievement

import (
	"errors"
	"testing"
)

func TestDefault_Validates(t *testing.T) {
	if err := Validate(Default().All()); err != nil {
		t.Fatalf("built-in catalog invalid: %v", err)
	}
}

func TestDefault_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Default().All() {
		if seen[a.ID] {
			t.Errorf("duplicate achievement ID: %s", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestDefault_AllCategoriesCovered(t *testing.T) {
	c := Default()
	for _, cat := range Categories {
		if len(c.ByCategory(cat)) == 0 {
			t.Errorf("category %q has no achievements", cat)
		}
	}
}

func TestDefault_ContainsRequiredAchievements(t *testing.T) {
	c := Default()
	for _, id := range []string{"first_blood", "tetris_master", "combo_king", "quick_fingers", "centurion", "line_clearer"} {
		if _, ok := c.ByID(id); !ok {
			t.Errorf("catalog missing %q", id)
		}
	}
}

func TestByID_Unknown(t *testing.T) {
	a, ok := Default().ByID("nonexistent")
	if ok {
		t.Fatal("ByID(nonexistent) reported found")
	}
	if a.ID != "" {
		t.Errorf("ByID(nonexistent) = %+v, want zero value", a)
	}
}

func TestByID_ReturnsCopy(t *testing.T) {
	c := Default()
	a, _ := c.ByID("quick_fingers")
	a.Name = "changed"
	a.Gate.Value = 1

	b, _ := c.ByID("quick_fingers")
	if b.Name != "Quick Fingers" {
		t.Errorf("Name mutated through copy: %q", b.Name)
	}
	if b.Gate.Value != 50 {
		t.Errorf("Gate mutated through copy: %v", b.Gate.Value)
	}
}

func TestByCategory_PreservesCatalogOrder(t *testing.T) {
	c := Default()
	got := c.ByCategory(CategoryScoring)
	want := []string{"score_1k", "score_10k", "score_100k"}
	if len(got) != len(want) {
		t.Fatalf("ByCategory(scoring) len = %d, want %d", len(got), len(want))
	}
	for i, a := range got {
		if a.ID != want[i] {
			t.Errorf("ByCategory(scoring)[%d] = %s, want %s", i, a.ID, want[i])
		}
	}
}

func TestByRarity(t *testing.T) {
	c := Default()
	total := 0
	for _, r := range Rarities {
		list := c.ByRarity(r)
		for _, a := range list {
			if a.Rarity != r {
				t.Errorf("ByRarity(%s) returned %s with rarity %s", r, a.ID, a.Rarity)
			}
		}
		total += len(list)
	}
	if total != c.Len() {
		t.Errorf("rarities partition %d achievements, catalog has %d", total, c.Len())
	}
	if got := c.ByRarity("mythic"); len(got) != 0 {
		t.Errorf("ByRarity(mythic) = %d entries, want 0", len(got))
	}
}

func TestAll_ReturnsIndependentCopies(t *testing.T) {
	c := Default()
	r1 := c.All()
	r1[0].ID = "mutated"
	if c.All()[0].ID == "mutated" {
		t.Error("All should return an independent copy")
	}
}

func valid(id string) Achievement {
	return Achievement{
		ID: id, Name: id,
		Category: CategoryGameplay, Rarity: RarityCommon,
		Condition: gte(TypeLines, 1),
	}
}

func TestValidate(t *testing.T) {
	withGate := func(a Achievement, op Operator, g *Condition) Achievement {
		a.Condition.Operator = op
		a.Gate = g
		return a
	}
	tests := []struct {
		name string
		list []Achievement
		want error
	}{
		{"ok", []Achievement{valid("a"), valid("b")}, nil},
		{"duplicate", []Achievement{valid("a"), valid("a")}, ErrDuplicateID},
		{"empty id", []Achievement{valid("")}, ErrInvalidAchievement},
		{"bad category", []Achievement{func() Achievement { a := valid("a"); a.Category = "fun"; return a }()}, ErrInvalidAchievement},
		{"bad rarity", []Achievement{func() Achievement { a := valid("a"); a.Rarity = "mythic"; return a }()}, ErrInvalidAchievement},
		{"bad type", []Achievement{func() Achievement { a := valid("a"); a.Condition.Type = "holds"; return a }()}, ErrInvalidAchievement},
		{"bad operator", []Achievement{func() Achievement { a := valid("a"); a.Condition.Operator = "eq"; return a }()}, ErrInvalidAchievement},
		{"bad scope", []Achievement{func() Achievement { a := valid("a"); a.Condition.Scope = "season"; return a }()}, ErrInvalidAchievement},
		{"gate on gte", []Achievement{withGate(valid("a"), OpGTE, gate(gte(TypeLines, 5)))}, ErrInvalidAchievement},
		{"lte gate", []Achievement{withGate(valid("a"), OpLTE, gate(lte(TypeLines, 5)))}, ErrInvalidAchievement},
		{"gated lte ok", []Achievement{withGate(valid("a"), OpLTE, gate(gte(TypeLines, 5)))}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.list)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	if _, err := NewCatalog([]Achievement{valid("a"), valid("a")}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("NewCatalog() error = %v, want ErrDuplicateID", err)
	}
}

func TestDefault_GatesOnlyOnLTE(t *testing.T) {
	for _, a := range Default().All() {
		gated := a.Gate != nil
		lteCond := a.Condition.Operator == OpLTE
		if gated != lteCond {
			t.Errorf("%s: gate=%v operator=%s, want a gate exactly on lte conditions", a.ID, gated, a.Condition.Operator)
		}
	}
}
