package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/config"
	"github.com/tetris-web/achievements/internal/gamification"
	"github.com/tetris-web/achievements/internal/persistence"
	"github.com/tetris-web/achievements/internal/progress"
	"github.com/tetris-web/achievements/internal/ws"
)

func startServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := gamification.NewHub(ctx, achievement.Default(), persistence.NewFileStore(t.TempDir()), gamification.Options{})
	b := ws.NewBroadcaster(10*time.Millisecond, 0, nil, nil)
	hub.OnUnlock(b.PublishUnlocks)
	hub.OnStats(b.QueueStats)

	srv := httptest.NewServer(ws.NewServer(hub, b, config.ServerConfig{AuthToken: token}, "default", nil, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		hub.Wait()
	})
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHTTPClient_RoundTrip(t *testing.T) {
	srv := startServer(t, "secret")
	c := NewHTTPClient(srv.URL, "secret", "alice")

	list, err := c.GetAchievements(Filter{})
	require.NoError(t, err)
	assert.Len(t, list, achievement.Default().Len())

	scoring, err := c.GetAchievements(Filter{Category: string(achievement.CategoryScoring)})
	require.NoError(t, err)
	for _, v := range scoring {
		assert.Equal(t, achievement.CategoryScoring, v.Category)
	}

	_, err = c.PostEvent(progress.GameStart(1))
	require.NoError(t, err)
	res, err := c.PostEvent(progress.Lock(1))
	require.NoError(t, err)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, "first_blood", res.Unlocked[0].ID)

	one, err := c.GetAchievement("first_blood")
	require.NoError(t, err)
	assert.True(t, one.Unlocked)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, "alice", stats.Profile)
	assert.Equal(t, 1, stats.Stats.Game.Lines)
}

func TestHTTPClient_Errors(t *testing.T) {
	srv := startServer(t, "secret")

	_, err := NewHTTPClient(srv.URL, "wrong", "").GetStats()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = NewHTTPClient(srv.URL, "secret", "").GetAchievement("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestWSClient_SnapshotAndUnlock(t *testing.T) {
	srv := startServer(t, "secret")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewWSClient(wsURL(srv), "secret", "bob", nil)
	defer c.Close()

	require.IsType(t, WSConnectedMsg{}, c.Listen(ctx)())

	snap, ok := c.ReadLoop(ctx)().(WSSnapshotMsg)
	require.True(t, ok, "first message should be a snapshot")
	assert.Equal(t, "bob", snap.Payload.Profile)
	assert.Len(t, snap.Payload.Achievements, achievement.Default().Len())

	require.NoError(t, c.SendEvent(progress.GameStart(1)))
	require.NoError(t, c.SendEvent(progress.Lock(4)))

	var unlocked []string
	for len(unlocked) < 2 {
		switch msg := c.ReadLoop(ctx)().(type) {
		case WSAchievementMsg:
			unlocked = append(unlocked, msg.Payload.ID)
		case WSStatsMsg:
		default:
			t.Fatalf("unexpected message %T", msg)
		}
	}
	assert.Equal(t, []string{"first_blood", "first_tetris"}, unlocked)
}

func TestWSClient_ErrorFrame(t *testing.T) {
	srv := startServer(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewWSClient(wsURL(srv), "", "", nil)
	defer c.Close()
	require.IsType(t, WSConnectedMsg{}, c.Listen(ctx)())
	require.IsType(t, WSSnapshotMsg{}, c.ReadLoop(ctx)())

	require.NoError(t, c.SendEvent(progress.Lock(9)))
	msg, ok := c.ReadLoop(ctx)().(WSErrorMsg)
	require.True(t, ok)
	assert.Contains(t, msg.Payload.Message, "invalid")
}

func TestDecode_Unknown(t *testing.T) {
	assert.Nil(t, Decode([]byte(`{"type":"bogus","payload":{}}`)))
	assert.Nil(t, Decode([]byte(`not json`)))
	assert.IsType(t, WSErrorMsg{}, Decode([]byte(`{"type":"error","payload":{"message":"x"}}`)))
}

func TestHTTPBase(t *testing.T) {
	tests := map[string]string{
		"ws://127.0.0.1:9000/ws": "http://127.0.0.1:9000",
		"wss://example.com/ws":   "https://example.com",
		"::not a url":            "http://127.0.0.1:8080",
	}
	for in, want := range tests {
		if got := HTTPBase(in); got != want {
			t.Errorf("HTTPBase(%q) = %q, want %q", in, got, want)
		}
	}
}
