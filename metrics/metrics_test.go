package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zntus/jbfc-kakao-chatbot/cache"
)

func TestCacheObserver(t *testing.T) {
	m := New("")
	observe := m.CacheObserver()
	observe("today-match-전북", cache.ResultHit)
	observe("today-match-전북", cache.ResultHit)
	observe("today-match-전북", cache.ResultNegative)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("today-match-전북", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("today-match-전북", "negative")))
}

func TestUpstreamObserver(t *testing.T) {
	m := New("test")
	observe := m.UpstreamObserver()
	observe("schedule", 200, 120*time.Millisecond)
	observe("schedule", 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("schedule", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("schedule", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.upstreamDuration))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("")
	m.ObserveHTTP("today", http.StatusOK, 5*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `jbfc_http_requests_total{code="200",route="today"} 1`)
	assert.Contains(t, string(body), "jbfc_http_request_duration_seconds_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
