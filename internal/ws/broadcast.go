package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/gamification"
	"github.com/tetris-web/achievements/internal/metrics"
	"github.com/tetris-web/achievements/internal/progress"
)

// ErrTooManyConnections is returned by AddClient when the connection limit
// is reached.
var ErrTooManyConnections = errors.New("too many websocket connections")

const sendBuffer = 64

type client struct {
	conn    *websocket.Conn
	profile string
	send    chan []byte
}

func newClient(conn *websocket.Conn, profile string) *client {
	c := &client{
		conn:    conn,
		profile: profile,
		send:    make(chan []byte, sendBuffer),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Broadcaster fans messages out to the websocket clients watching a
// profile. Unlocks are sent immediately and in order; statistics are
// coalesced per profile and flushed at most once per throttle interval.
type Broadcaster struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	maxConns int
	log      *zap.Logger
	metrics  *metrics.Metrics

	throttle     time.Duration
	flushMu      sync.Mutex
	pendingStats map[string]progress.Statistics
	flushTimer   *time.Timer
}

// NewBroadcaster returns a broadcaster. maxConns of zero means unlimited.
func NewBroadcaster(throttle time.Duration, maxConns int, logger *zap.Logger, m *metrics.Metrics) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		clients:      make(map[*client]bool),
		maxConns:     maxConns,
		log:          logger,
		metrics:      m,
		throttle:     throttle,
		pendingStats: make(map[string]progress.Statistics),
	}
}

// AddClient registers conn as a watcher of profile.
func (b *Broadcaster) AddClient(conn *websocket.Conn, profile string) (*client, error) {
	b.mu.Lock()
	if b.maxConns > 0 && len(b.clients) >= b.maxConns {
		b.mu.Unlock()
		return nil, ErrTooManyConnections
	}
	c := newClient(conn, profile)
	b.clients[c] = true
	b.mu.Unlock()

	b.metrics.ClientConnected()
	return c, nil
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	_, ok := b.clients[c]
	if ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()

	if ok {
		b.metrics.ClientDisconnected()
	}
}

// SendTo queues msg for a single client, disconnecting it if it cannot keep
// up.
func (b *Broadcaster) SendTo(c *client, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("ws marshal failed", zap.Error(err))
		return
	}
	b.deliver([]*client{c}, data)
}

// PublishUnlocks sends one achievement_unlocked message per unlock, in the
// order given. It is meant to be registered as the hub's unlock callback.
func (b *Broadcaster) PublishUnlocks(profile string, unlocks []gamification.Unlock) {
	for _, u := range unlocks {
		b.broadcast(profile, WSMessage{Type: MsgAchievementUnlocked, Payload: unlockedPayload(profile, u)})
	}
}

// QueueStats records the latest statistics of profile for the next flush.
func (b *Broadcaster) QueueStats(profile string, stats progress.Statistics) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.pendingStats[profile] = stats
	if b.flushTimer == nil {
		b.flushTimer = time.AfterFunc(b.throttle, b.flush)
	}
}

func (b *Broadcaster) flush() {
	b.flushMu.Lock()
	pending := b.pendingStats
	b.pendingStats = make(map[string]progress.Statistics)
	b.flushTimer = nil
	b.flushMu.Unlock()

	for profile, stats := range pending {
		b.broadcast(profile, WSMessage{Type: MsgStats, Payload: StatsPayload{Profile: profile, Stats: stats}})
	}
}

func (b *Broadcaster) broadcast(profile string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("ws marshal failed", zap.Error(err))
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		if c.profile == profile {
			clients = append(clients, c)
		}
	}
	b.mu.RUnlock()

	b.deliver(clients, data)
}

func (b *Broadcaster) deliver(clients []*client, data []byte) {
	for _, c := range clients {
		// The read lock keeps RemoveClient from closing c.send mid-send.
		slow := false
		b.mu.RLock()
		if b.clients[c] {
			select {
			case c.send <- data:
			default:
				slow = true
			}
		}
		b.mu.RUnlock()
		if slow {
			b.log.Warn("ws client too slow, disconnecting", zap.String("profile", c.profile))
			b.RemoveClient(c)
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
