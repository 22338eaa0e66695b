package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/gamification"
	"github.com/tetris-web/achievements/internal/progress"
)

// dialPair creates a test HTTP server that upgrades to WebSocket and returns
// the server-side connection together with the dialled client side.
func dialPair(t *testing.T) (server, peer *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- c
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { peer.Close() })

	select {
	case server = <-connCh:
		return server, peer
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side WebSocket connection")
		return nil, nil
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) rawMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var msg rawMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestAddClient_MaxConnections(t *testing.T) {
	const maxConns = 2
	b := NewBroadcaster(100*time.Millisecond, maxConns, zap.NewNop(), nil)

	var clients []*client
	for i := 0; i < maxConns; i++ {
		conn, _ := dialPair(t)
		c, err := b.AddClient(conn, "default")
		if err != nil {
			t.Fatalf("AddClient[%d]: unexpected error: %v", i, err)
		}
		clients = append(clients, c)
	}

	if got := b.ClientCount(); got != maxConns {
		t.Fatalf("expected %d clients, got %d", maxConns, got)
	}

	conn, _ := dialPair(t)
	if _, err := b.AddClient(conn, "default"); !errors.Is(err, ErrTooManyConnections) {
		t.Fatalf("expected ErrTooManyConnections, got %v", err)
	}

	b.RemoveClient(clients[0])
	b.RemoveClient(clients[0]) // second removal is a no-op

	conn2, _ := dialPair(t)
	if _, err := b.AddClient(conn2, "default"); err != nil {
		t.Fatalf("AddClient after removal: unexpected error: %v", err)
	}
	if got := b.ClientCount(); got != maxConns {
		t.Fatalf("expected %d clients after re-add, got %d", maxConns, got)
	}
}

func TestAddClient_ZeroMaxConnections_Unlimited(t *testing.T) {
	b := NewBroadcaster(100*time.Millisecond, 0, nil, nil)
	for i := 0; i < 10; i++ {
		conn, _ := dialPair(t)
		if _, err := b.AddClient(conn, "default"); err != nil {
			t.Fatalf("AddClient[%d]: unexpected error with maxConns=0: %v", i, err)
		}
	}
	if got := b.ClientCount(); got != 10 {
		t.Fatalf("expected 10 clients, got %d", got)
	}
}

func TestQueueStats_CoalescesToLatest(t *testing.T) {
	b := NewBroadcaster(30*time.Millisecond, 0, nil, nil)
	conn, peer := dialPair(t)
	if _, err := b.AddClient(conn, "alice"); err != nil {
		t.Fatal(err)
	}

	for lines := 1; lines <= 5; lines++ {
		b.QueueStats("alice", progress.Statistics{Game: progress.GameStats{Lines: lines}})
	}

	msg := readMessage(t, peer)
	if msg.Type != MsgStats {
		t.Fatalf("type = %s, want stats", msg.Type)
	}
	var sp StatsPayload
	if err := json.Unmarshal(msg.Payload, &sp); err != nil {
		t.Fatal(err)
	}
	if sp.Stats.Game.Lines != 5 {
		t.Errorf("Lines = %d, want latest value 5", sp.Stats.Game.Lines)
	}

	// Nothing else was queued.
	peer.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var extra rawMessage
	if err := peer.ReadJSON(&extra); err == nil {
		t.Errorf("unexpected extra message %s", extra.Type)
	}
}

func TestPublishUnlocks_InOrder(t *testing.T) {
	b := NewBroadcaster(time.Second, 0, nil, nil)
	conn, peer := dialPair(t)
	if _, err := b.AddClient(conn, "alice"); err != nil {
		t.Fatal(err)
	}

	cat := achievement.Default()
	var unlocks []gamification.Unlock
	for _, id := range []string{"first_blood", "first_tetris", "centurion"} {
		a, _ := cat.ByID(id)
		unlocks = append(unlocks, gamification.Unlock{Achievement: a, UnlockedAt: time.Now().UTC()})
	}
	b.PublishUnlocks("alice", unlocks)

	for _, want := range []string{"first_blood", "first_tetris", "centurion"} {
		msg := readMessage(t, peer)
		if msg.Type != MsgAchievementUnlocked {
			t.Fatalf("type = %s, want achievement_unlocked", msg.Type)
		}
		var p AchievementUnlockedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			t.Fatal(err)
		}
		if p.ID != want {
			t.Errorf("unlock = %s, want %s", p.ID, want)
		}
		if p.Profile != "alice" {
			t.Errorf("profile = %s, want alice", p.Profile)
		}
	}
}

func TestBroadcast_SlowClientDisconnected(t *testing.T) {
	b := NewBroadcaster(time.Second, 0, nil, nil)
	conn, _ := dialPair(t)

	// A client without a write pump never drains its buffer.
	c := &client{conn: conn, profile: "alice", send: make(chan []byte, 1)}
	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	msg := WSMessage{Type: MsgError, Payload: ErrorPayload{Message: "x"}}
	b.broadcast("alice", msg)
	if b.ClientCount() != 1 {
		t.Fatal("client dropped before its buffer was full")
	}
	b.broadcast("alice", msg)
	if b.ClientCount() != 0 {
		t.Fatal("slow client should have been disconnected")
	}
}
