package detail

import (
	"strings"
	"testing"
	"time"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/ws"
)

func view(t *testing.T, id string) ws.AchievementView {
	t.Helper()
	a, ok := achievement.Default().ByID(id)
	if !ok {
		t.Fatalf("unknown achievement %s", id)
	}
	return ws.AchievementView{Achievement: a}
}

func TestMarkdown_Locked(t *testing.T) {
	v := view(t, "centurion")
	v.Progress.Fraction = 0.42
	md := Markdown(v)

	for _, want := range []string{"# 💯 Centurion", "lines ≥ 100", "42%", "Locked"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, v.RewardMessage) {
		t.Error("reward message should stay hidden until unlocked")
	}
}

func TestMarkdown_Unlocked(t *testing.T) {
	v := view(t, "first_blood")
	at := time.Now().Add(-3 * time.Hour)
	v.Unlocked = true
	v.UnlockedAt = &at

	md := Markdown(v)
	if !strings.Contains(md, "3 hours ago") {
		t.Errorf("unlock time not humanized:\n%s", md)
	}
	if !strings.Contains(md, v.RewardMessage) {
		t.Error("reward message missing")
	}
}

func TestOpenRendersCard(t *testing.T) {
	m := New("notty")
	if m.View() != "" {
		t.Error("closed panel should render nothing")
	}

	m.Open(view(t, "quick_fingers"), 80, 20)
	if !m.IsOpen() {
		t.Fatal("panel should be open")
	}
	out := m.View()
	if !strings.Contains(out, "Quick Fingers") {
		t.Errorf("rendered card missing the name:\n%s", out)
	}
	if strings.Contains(out, "render:") {
		t.Errorf("unexpected render error:\n%s", out)
	}

	m.Close()
	if m.IsOpen() || m.View() != "" {
		t.Error("panel should be closed")
	}
}
