package ws

import (
	"encoding/json"
	"time"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/gamification"
	"github.com/tetris-web/achievements/internal/progress"
)

type MessageType string

const (
	// server → client
	MsgSnapshot            MessageType = "snapshot"
	MsgStats               MessageType = "stats"
	MsgAchievementUnlocked MessageType = "achievement_unlocked"
	MsgError               MessageType = "error"

	// client → server
	MsgGameEvent MessageType = "game_event"
	MsgResync    MessageType = "resync"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

// ClientMessage is an inbound frame; Payload is decoded per Type.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AchievementView is a catalog entry joined with a profile's unlock state.
type AchievementView struct {
	achievement.Achievement
	Unlocked   bool                 `json:"unlocked"`
	UnlockedAt *time.Time           `json:"unlockedAt,omitempty"`
	Progress   achievement.Progress `json:"progress"`
}

type SnapshotPayload struct {
	Profile      string              `json:"profile"`
	Stats        progress.Statistics `json:"stats"`
	Achievements []AchievementView   `json:"achievements"`
}

type StatsPayload struct {
	Profile string              `json:"profile"`
	Stats   progress.Statistics `json:"stats"`
}

type AchievementUnlockedPayload struct {
	Profile       string             `json:"profile"`
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Icon          string             `json:"icon"`
	Rarity        achievement.Rarity `json:"rarity"`
	RewardMessage string             `json:"rewardMessage"`
	UnlockedAt    time.Time          `json:"unlockedAt"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// EventResult is the response body of POST /api/events.
type EventResult struct {
	Stats    progress.Statistics    `json:"stats"`
	Unlocked []gamification.Unlock `json:"unlocked"`
}

func unlockedPayload(profile string, u gamification.Unlock) AchievementUnlockedPayload {
	return AchievementUnlockedPayload{
		Profile:       profile,
		ID:            u.ID,
		Name:          u.Name,
		Description:   u.Description,
		Icon:          u.Icon,
		Rarity:        u.Rarity,
		RewardMessage: u.RewardMessage,
		UnlockedAt:    u.UnlockedAt,
	}
}

// Views joins list with snap's unlock state and progress.
func Views(list []achievement.Achievement, snap gamification.Snapshot) []AchievementView {
	out := make([]AchievementView, len(list))
	for i, a := range list {
		v := AchievementView{Achievement: a, Progress: achievement.ProgressOf(a, snap.Stats)}
		if at, ok := snap.UnlockedAt(a.ID); ok {
			v.Unlocked = true
			v.UnlockedAt = &at
			v.Progress.Fraction = 1
		}
		out[i] = v
	}
	return out
}

func snapshotPayload(snap gamification.Snapshot, catalog *achievement.Catalog) SnapshotPayload {
	return SnapshotPayload{
		Profile:      snap.Profile,
		Stats:        snap.Stats,
		Achievements: Views(catalog.All(), snap),
	}
}
