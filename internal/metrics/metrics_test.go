package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.Event("lock", "ok")
	m.Event("lock", "ok")
	m.Event("hold", "invalid")
	m.Unlock("rare")
	m.Save(nil)
	m.Save(errors.New("disk full"))
	m.ObserveEvaluation(20 * time.Microsecond)
	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()

	events := family(t, m, "achievements_events_total")
	assert.Len(t, events.GetMetric(), 2)

	unlocks := family(t, m, "achievements_unlocks_total")
	require.Len(t, unlocks.GetMetric(), 1)
	assert.Equal(t, 1.0, unlocks.GetMetric()[0].GetCounter().GetValue())

	saves := family(t, m, "achievements_profile_saves_total")
	assert.Len(t, saves.GetMetric(), 2)

	clients := family(t, m, "achievements_ws_clients")
	assert.Equal(t, 1.0, clients.GetMetric()[0].GetGauge().GetValue())

	eval := family(t, m, "achievements_evaluation_seconds")
	assert.Equal(t, uint64(1), eval.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Event("lock", "ok")
	m.Unlock("common")
	m.Save(nil)
	m.ObserveEvaluation(time.Millisecond)
	m.ClientConnected()
	m.ClientDisconnected()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Unlock("epic")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `achievements_unlocks_total{rarity="epic"} 1`)
}
