package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("build_pages", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("build_pages", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.IncPagesWritten("page")
	pr.IncPagesWritten("page")
	pr.IncAssetsExtracted("css")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				names[mf.GetName()] += c.GetValue()
			}
		}
	}
	require.InDelta(t, 2, names["pagesmith_pages_written_total"], 0)
	require.InDelta(t, 1, names["pagesmith_assets_extracted_total"], 0)
	require.InDelta(t, 1, names["pagesmith_build_outcomes_total"], 0)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncPagesWritten("page")
	pr.ObserveBuildDuration(time.Second)

	var r Recorder = NoopRecorder{}
	r.IncStageResult("x", ResultFatal)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome(BuildOutcomeFailed)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `pagesmith_build_outcomes_total{outcome="failed"} 1`))
}

func TestNewRegistryExposesVersion(t *testing.T) {
	reg := NewRegistry("v1.2.3")
	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	require.True(t, names["pagesmith_info"])
	require.True(t, names["go_goroutines"])

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), `pagesmith_info{version="v1.2.3"} 1`)
}
