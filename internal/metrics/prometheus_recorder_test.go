package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var _ Recorder = (*PrometheusRecorder)(nil)
var _ Recorder = NoopRecorder{}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.AddPagesRendered(12)
	pr.AddAssetsCopied(3)
	pr.IncPageFailure("layout")
	pr.SetLastBuild(time.Unix(1700000000, 0))

	require.InDelta(t, 2, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")), 0)
	require.InDelta(t, 12, testutil.ToFloat64(pr.pages), 0)
	require.InDelta(t, 3, testutil.ToFloat64(pr.assets), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.pageFailures.WithLabelValues("layout")), 0)
	require.InDelta(t, 1700000000, testutil.ToFloat64(pr.lastBuild), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).AddPagesRendered(1)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sitebuilder_pages_rendered_total 1")
}
