package ws

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// Health is the /healthz response body.
type Health struct {
	Status     string   `json:"status"`
	Uptime     string   `json:"uptime"`
	Goroutines int      `json:"goroutines"`
	Clients    int      `json:"clients"`
	Profiles   []string `json:"profiles"`
	RSSBytes   uint64   `json:"rssBytes,omitempty"`
	CPUPercent float64  `json:"cpuPercent,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := Health{
		Status:     "ok",
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Clients:    s.broadcaster.ClientCount(),
		Profiles:   s.hub.Profiles(),
	}

	// Process stats are best effort; some platforms do not expose them.
	if p, err := process.NewProcessWithContext(r.Context(), int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfoWithContext(r.Context()); err == nil {
			h.RSSBytes = mem.RSS
		}
		if cpu, err := p.CPUPercentWithContext(r.Context()); err == nil {
			h.CPUPercent = cpu
		}
	} else {
		s.log.Debug("process stats unavailable", zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, h)
}
