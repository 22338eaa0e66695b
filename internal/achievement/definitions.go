package achievement

func gte(t ConditionType, v float64) Condition {
	return Condition{Type: t, Operator: OpGTE, Value: v, Scope: ScopeGame}
}

func lte(t ConditionType, v float64) Condition {
	return Condition{Type: t, Operator: OpLTE, Value: v, Scope: ScopeGame}
}

func lifetime(c Condition) Condition {
	c.Scope = ScopeLifetime
	return c
}

func gate(c Condition) *Condition { return &c }

// definitions is the compiled-in catalog. Order is significant: it is the
// order simultaneous unlocks are reported in.
func definitions() []Achievement {
	return []Achievement{

		// ── Gameplay ───────────────────────────────────────────────────────

		{
			ID: "first_blood", Name: "First Blood",
			Description: "Clear your first line",
			Icon:        "🩸", Category: CategoryGameplay, Rarity: RarityCommon,
			Condition:     gte(TypeLines, 1),
			RewardMessage: "The first of many. Keep stacking!",
		},
		{
			ID: "first_tetris", Name: "Four in a Row",
			Description: "Clear four lines with a single piece",
			Icon:        "🧱", Category: CategoryGameplay, Rarity: RarityCommon,
			Condition:     gte(TypeTetrisCount, 1),
			RewardMessage: "That's a Tetris!",
		},
		{
			ID: "centurion", Name: "Centurion",
			Description: "Clear 100 lines in a single game",
			Icon:        "💯", Category: CategoryGameplay, Rarity: RarityRare,
			Condition:     gte(TypeLines, 100),
			RewardMessage: "A hundred lines without topping out.",
		},
		{
			ID: "line_clearer", Name: "Line Clearer",
			Description: "Clear 500 lines across all games",
			Icon:        "🧹", Category: CategoryGameplay, Rarity: RarityRare,
			Condition:     lifetime(gte(TypeLines, 500)),
			RewardMessage: "Five hundred lines swept away.",
		},
		{
			ID: "tetris_master", Name: "Tetris Master",
			Description: "Score 10 Tetrises in a single game",
			Icon:        "👑", Category: CategoryGameplay, Rarity: RarityEpic,
			Condition:     gte(TypeTetrisCount, 10),
			RewardMessage: "Ten Tetrises. The well fears you.",
		},
		{
			ID: "marathon", Name: "Marathon",
			Description: "Survive 10 minutes in a single game",
			Icon:        "🏃", Category: CategoryGameplay, Rarity: RarityRare,
			Condition:     gte(TypeTimePlayed, 600),
			RewardMessage: "Ten minutes and still standing.",
		},
		{
			ID: "dedicated", Name: "Dedicated",
			Description: "Play for an hour in total",
			Icon:        "⏳", Category: CategoryGameplay, Rarity: RarityEpic,
			Condition:     lifetime(gte(TypeTimePlayed, 3600)),
			RewardMessage: "An hour of falling blocks. Respect.",
		},

		// ── Scoring ────────────────────────────────────────────────────────

		{
			ID: "score_1k", Name: "Getting Started",
			Description: "Reach 1,000 points in a single game",
			Icon:        "⭐", Category: CategoryScoring, Rarity: RarityCommon,
			Condition:     gte(TypeScore, 1_000),
			RewardMessage: "Your first thousand points.",
		},
		{
			ID: "score_10k", Name: "High Scorer",
			Description: "Reach 10,000 points in a single game",
			Icon:        "🌟", Category: CategoryScoring, Rarity: RarityRare,
			Condition:     gte(TypeScore, 10_000),
			RewardMessage: "Ten thousand and counting.",
		},
		{
			ID: "score_100k", Name: "Point Tycoon",
			Description: "Reach 100,000 points in a single game",
			Icon:        "💎", Category: CategoryScoring, Rarity: RarityLegendary,
			Condition:     gte(TypeScore, 100_000),
			RewardMessage: "A six-figure game. Legendary.",
		},

		// ── Progression ────────────────────────────────────────────────────

		{
			ID: "level_5", Name: "Warming Up",
			Description: "Reach level 5",
			Icon:        "📈", Category: CategoryProgression, Rarity: RarityCommon,
			Condition:     gte(TypeLevel, 5),
			RewardMessage: "Things are speeding up.",
		},
		{
			ID: "level_10", Name: "Double Digits",
			Description: "Reach level 10",
			Icon:        "🚀", Category: CategoryProgression, Rarity: RarityRare,
			Condition:     gte(TypeLevel, 10),
			RewardMessage: "Level 10. Pieces are really flying now.",
		},
		{
			ID: "level_15", Name: "Terminal Velocity",
			Description: "Reach level 15",
			Icon:        "☄️", Category: CategoryProgression, Rarity: RarityEpic,
			Condition:     gte(TypeLevel, 15),
			RewardMessage: "Faster than most people can think.",
		},
		{
			ID: "veteran", Name: "Veteran",
			Description: "Reach level 20 in any game",
			Icon:        "🎖️", Category: CategoryProgression, Rarity: RarityLegendary,
			Condition:     lifetime(gte(TypeLevel, 20)),
			RewardMessage: "Level 20. Few have seen it.",
		},

		// ── Skill ──────────────────────────────────────────────────────────

		{
			ID: "combo_king", Name: "Combo King",
			Description: "Clear lines with 5 consecutive pieces",
			Icon:        "🔥", Category: CategorySkill, Rarity: RarityRare,
			Condition:     gte(TypeCombo, 5),
			RewardMessage: "Five in a row!",
		},
		{
			ID: "combo_legend", Name: "Combo Legend",
			Description: "Clear lines with 10 consecutive pieces",
			Icon:        "🌀", Category: CategorySkill, Rarity: RarityLegendary,
			Condition:     gte(TypeCombo, 10),
			RewardMessage: "Ten consecutive clears. Unreal.",
		},
		{
			ID: "quick_fingers", Name: "Quick Fingers",
			Description: "Clear 50 lines within the first 3 minutes of a game",
			Icon:        "⚡", Category: CategorySkill, Rarity: RarityEpic,
			Condition:     lte(TypeTimePlayed, 180),
			Gate:          gate(gte(TypeLines, 50)),
			RewardMessage: "Fifty lines in three minutes. Blazing.",
		},
	}
}
