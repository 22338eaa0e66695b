package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tetris-web/achievements/internal/progress"
	"github.com/tetris-web/achievements/internal/ws"
)

// HTTPClient makes REST calls to the achievements server on behalf of one
// profile.
type HTTPClient struct {
	baseURL string
	token   string
	profile string
	client  *http.Client
}

// NewHTTPClient creates a client targeting baseURL (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL, token, profile string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		profile: profile,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Filter narrows GetAchievements. Empty fields match everything.
type Filter struct {
	Category string
	Rarity   string
}

// GetAchievements fetches /api/achievements.
func (c *HTTPClient) GetAchievements(f Filter) ([]ws.AchievementView, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Rarity != "" {
		q.Set("rarity", f.Rarity)
	}
	var out []ws.AchievementView
	if err := c.get("/api/achievements", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAchievement fetches /api/achievements/{id}.
func (c *HTTPClient) GetAchievement(id string) (*ws.AchievementView, error) {
	var out ws.AchievementView
	if err := c.get("/api/achievements/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStats fetches /api/stats.
func (c *HTTPClient) GetStats() (*ws.StatsPayload, error) {
	var out ws.StatsPayload
	if err := c.get("/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostEvent sends POST /api/events and returns what it unlocked.
func (c *HTTPClient) PostEvent(ev progress.Event) (*ws.EventResult, error) {
	var out ws.EventResult
	if err := c.post("/api/events", ev, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) endpoint(path string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	if c.profile != "" {
		q.Set("profile", c.profile)
	}
	if len(q) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + q.Encode()
}

func (c *HTTPClient) get(path string, q url.Values, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.endpoint(path, nil), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %d %s", path, resp.StatusCode, bytes.TrimSpace(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// HTTPBase converts ws://host:port/ws into http://host:port.
func HTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil || u.Host == "" {
		return "http://127.0.0.1:8080"
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}
