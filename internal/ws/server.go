package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/config"
	"github.com/tetris-web/achievements/internal/gamification"
	"github.com/tetris-web/achievements/internal/metrics"
	"github.com/tetris-web/achievements/internal/persistence"
	"github.com/tetris-web/achievements/internal/progress"
)

const (
	// TokenHeader carries the auth token for clients that cannot set
	// Authorization.
	TokenHeader = "X-Achievements-Token"

	maxEventBody = 4 << 10
)

type Server struct {
	hub            *gamification.Hub
	broadcaster    *Broadcaster
	defaultProfile string
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	authToken      string
	log            *zap.Logger
	metrics        *metrics.Metrics
	started        time.Time
}

func NewServer(hub *gamification.Hub, broadcaster *Broadcaster, cfg config.ServerConfig, defaultProfile string, logger *zap.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hub:            hub,
		broadcaster:    broadcaster,
		defaultProfile: defaultProfile,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      cfg.AuthToken,
		log:            logger,
		metrics:        m,
		started:        time.Now(),
	}

	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

// Handler returns the routed, header-hardened HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(mux)
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("GET /api/achievements", s.authorized(s.handleAchievements))
	mux.HandleFunc("GET /api/achievements/{id}", s.authorized(s.handleAchievement))
	mux.HandleFunc("GET /api/stats", s.authorized(s.handleStats))
	mux.HandleFunc("POST /api/events", s.authorized(s.handleEvent))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) profileOf(r *http.Request) string {
	if p := r.URL.Query().Get("profile"); p != "" {
		return p
	}
	return s.defaultProfile
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	profile := s.profileOf(r)
	coord, err := s.hub.Get(profile)
	if err != nil {
		s.httpError(w, err)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	c, err := s.broadcaster.AddClient(conn, profile)
	if err != nil {
		s.log.Warn("ws client rejected", zap.String("remote", r.RemoteAddr), zap.Error(err))
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
		return
	}
	log := s.log.With(zap.String("remote", r.RemoteAddr), zap.String("profile", profile))
	log.Info("ws client connected")
	defer func() {
		s.broadcaster.RemoveClient(c)
		log.Info("ws client disconnected")
	}()

	s.broadcaster.SendTo(c, WSMessage{Type: MsgSnapshot, Payload: snapshotPayload(coord.Snapshot(), coord.Catalog())})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleClientMessage(r.Context(), c, coord, data)
	}
}

func (s *Server) handleClientMessage(ctx context.Context, c *client, coord *gamification.Coordinator, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.broadcaster.SendTo(c, errorMessage("malformed message: "+err.Error()))
		return
	}

	switch msg.Type {
	case MsgGameEvent:
		var ev progress.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			s.broadcaster.SendTo(c, errorMessage("malformed game event: "+err.Error()))
			return
		}
		// Unlocks and stats reach this client through the hub callbacks.
		if _, err := coord.Submit(ctx, ev); err != nil {
			s.broadcaster.SendTo(c, errorMessage(err.Error()))
		}
	case MsgResync:
		s.broadcaster.SendTo(c, WSMessage{Type: MsgSnapshot, Payload: snapshotPayload(coord.Snapshot(), coord.Catalog())})
	default:
		s.broadcaster.SendTo(c, errorMessage("unknown message type "+string(msg.Type)))
	}
}

func errorMessage(text string) WSMessage {
	return WSMessage{Type: MsgError, Payload: ErrorPayload{Message: text}}
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	snap, err := s.hub.Snapshot(s.profileOf(r))
	if err != nil {
		s.httpError(w, err)
		return
	}

	list := s.hub.Catalog().All()
	if v := r.URL.Query().Get("category"); v != "" {
		cat := achievement.Category(v)
		if !lo.Contains(achievement.Categories, cat) {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		list = lo.Filter(list, func(a achievement.Achievement, _ int) bool { return a.Category == cat })
	}
	if v := r.URL.Query().Get("rarity"); v != "" {
		rarity := achievement.Rarity(v)
		if !lo.Contains(achievement.Rarities, rarity) {
			http.Error(w, "unknown rarity", http.StatusBadRequest)
			return
		}
		list = lo.Filter(list, func(a achievement.Achievement, _ int) bool { return a.Rarity == rarity })
	}

	s.writeJSON(w, http.StatusOK, Views(list, snap))
}

func (s *Server) handleAchievement(w http.ResponseWriter, r *http.Request) {
	a, ok := s.hub.Catalog().ByID(r.PathValue("id"))
	if !ok {
		http.Error(w, "achievement not found", http.StatusNotFound)
		return
	}
	snap, err := s.hub.Snapshot(s.profileOf(r))
	if err != nil {
		s.httpError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Views([]achievement.Achievement{a}, snap)[0])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.hub.Snapshot(s.profileOf(r))
	if err != nil {
		s.httpError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StatsPayload{Profile: snap.Profile, Stats: snap.Stats})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev progress.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		http.Error(w, "malformed event: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.hub.Submit(r.Context(), s.profileOf(r), ev)
	if err != nil {
		s.httpError(w, err)
		return
	}
	unlocked := res.Unlocked
	if unlocked == nil {
		unlocked = []gamification.Unlock{}
	}
	s.writeJSON(w, http.StatusOK, EventResult{Stats: res.Stats, Unlocked: unlocked})
}

func (s *Server) httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, progress.ErrInvalidEvent), errors.Is(err, persistence.ErrInvalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, gamification.ErrStopped):
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out, so a failed encode can only be logged.
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("write response failed", zap.Error(err))
	}
}

func (s *Server) authorized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorize(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if r.Header.Get(TokenHeader) == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	hostname := parsed.Hostname()
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
