package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersExposed(t *testing.T) {
	SyncRuns.WithLabelValues("ok").Inc()
	if got := testutil.ToFloat64(SyncRuns.WithLabelValues("ok")); got < 1 {
		t.Errorf("sync runs = %v, want >= 1", got)
	}

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "conversa_sync_runs_total") {
		t.Error("metrics output missing conversa_sync_runs_total")
	}
}
