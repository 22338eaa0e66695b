// Package client provides WebSocket and HTTP clients for the achievements
// server. Wire types are shared with the server's ws package.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/progress"
	"github.com/tetris-web/achievements/internal/ws"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// WSClient manages the WebSocket connection for one profile.
type WSClient struct {
	url     string
	token   string
	profile string
	log     *zap.Logger

	mu      sync.Mutex
	writeMu sync.Mutex // serialises all conn writes
	conn    *websocket.Conn
	pingCtx context.CancelFunc
}

// NewWSClient creates a client for wsURL. An empty profile lets the server
// pick its default. logger may be nil.
func NewWSClient(wsURL, token, profile string, logger *zap.Logger) *WSClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSClient{url: wsURL, token: token, profile: profile, log: logger}
}

// --- Bubble Tea messages ---

// WSConnectedMsg is sent when the WebSocket connects.
type WSConnectedMsg struct{}

// WSDisconnectedMsg is sent when the connection drops.
type WSDisconnectedMsg struct{ Err error }

// WSSnapshotMsg delivers the catalog joined with the profile's state.
type WSSnapshotMsg struct{ Payload ws.SnapshotPayload }

// WSStatsMsg delivers the latest statistics.
type WSStatsMsg struct{ Payload ws.StatsPayload }

// WSAchievementMsg is sent when an achievement unlocks.
type WSAchievementMsg struct{ Payload ws.AchievementUnlockedPayload }

// WSErrorMsg wraps a server-side error.
type WSErrorMsg struct{ Payload ws.ErrorPayload }

// dialURL adds the profile to the connection URL.
func (c *WSClient) dialURL() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	if c.profile != "" {
		q := u.Query()
		q.Set("profile", c.profile)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Listen returns a Bubble Tea command that connects, retrying with backoff
// until ctx is done.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		target, err := c.dialURL()
		if err != nil {
			return WSDisconnectedMsg{Err: err}
		}
		header := http.Header{}
		if c.token != "" {
			header.Set("Authorization", "Bearer "+c.token)
		}

		delay := reconnectBaseDelay
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, header)
			if err != nil {
				c.log.Debug("ws dial failed", zap.Error(err), zap.Duration("retry", delay))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
				delay = min(delay*2, reconnectMaxDelay)
				continue
			}

			c.mu.Lock()
			if c.pingCtx != nil {
				c.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			c.conn = conn
			c.pingCtx = pingCancel
			c.mu.Unlock()

			go c.pingLoop(pingCtx, conn)

			return WSConnectedMsg{}
		}
	}
}

// ReadLoop returns a Bubble Tea command that reads until the next message
// the UI cares about. Start it after WSConnectedMsg and again after every
// message it delivers.
func (c *WSClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return WSDisconnectedMsg{Err: fmt.Errorf("no connection")}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				if c.conn == conn {
					c.conn = nil
				}
				c.mu.Unlock()
				conn.Close()
				return WSDisconnectedMsg{Err: err}
			}

			if teaMsg := Decode(data); teaMsg != nil {
				return teaMsg
			}
			c.log.Debug("ignored ws frame", zap.ByteString("data", data))
		}
	}
}

func (c *WSClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			cc := c.conn
			c.mu.Unlock()
			if cc != conn {
				return
			}
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Resync asks the server for a fresh snapshot.
func (c *WSClient) Resync() error {
	return c.send(ws.ClientMessage{Type: ws.MsgResync})
}

// SendEvent submits a game event over the socket. Its effects come back as
// stats and achievement_unlocked messages.
func (c *WSClient) SendEvent(ev progress.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.send(ws.ClientMessage{Type: ws.MsgGameEvent, Payload: payload})
}

func (c *WSClient) send(msg ws.ClientMessage) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

// Close drops the current connection.
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pingCtx != nil {
		c.pingCtx()
		c.pingCtx = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Decode turns a server frame into its Bubble Tea message. Unknown or
// malformed frames yield nil.
func Decode(data []byte) tea.Msg {
	var env struct {
		Type    ws.MessageType  `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}

	switch env.Type {
	case ws.MsgSnapshot:
		var p ws.SnapshotPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSSnapshotMsg{Payload: p}
		}
	case ws.MsgStats:
		var p ws.StatsPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSStatsMsg{Payload: p}
		}
	case ws.MsgAchievementUnlocked:
		var p ws.AchievementUnlockedPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSAchievementMsg{Payload: p}
		}
	case ws.MsgError:
		var p ws.ErrorPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSErrorMsg{Payload: p}
		}
	}
	return nil
}
