package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "achievements"

// Metrics holds the service collectors on a private registry so tests can
// build as many instances as they like. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	events     *prometheus.CounterVec
	unlocks    *prometheus.CounterVec
	evaluation prometheus.Histogram
	saves      *prometheus.CounterVec
	clients    prometheus.Gauge
}

// New registers the collectors together with the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Game events received, partitioned by kind and result.",
		}, []string{"kind", "result"}),
		unlocks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unlocks_total",
			Help:      "Achievements unlocked, partitioned by rarity.",
		}, []string{"rarity"}),
		evaluation: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_seconds",
			Help:      "Time spent applying one event and scanning the catalog.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_saves_total",
			Help:      "Profile persistence attempts, partitioned by result.",
		}, []string{"result"}),
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket clients.",
		}),
	}
}

// Event counts one game event. result is "ok" or "invalid".
func (m *Metrics) Event(kind, result string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind, result).Inc()
}

// Unlock counts one unlocked achievement.
func (m *Metrics) Unlock(rarity string) {
	if m == nil {
		return
	}
	m.unlocks.WithLabelValues(rarity).Inc()
}

// ObserveEvaluation records how long one apply+scan cycle took.
func (m *Metrics) ObserveEvaluation(d time.Duration) {
	if m == nil {
		return
	}
	m.evaluation.Observe(d.Seconds())
}

// Save counts a profile save attempt.
func (m *Metrics) Save(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
}

// ClientConnected and ClientDisconnected track the websocket client gauge.
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.clients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.clients.Dec()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
