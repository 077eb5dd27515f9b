// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, p *prometheusMetrics) map[string]*dto.MetricFamily {
	families, err := p.registry.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func sumCounters(mf *dto.MetricFamily) (total float64) {
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return
}

func TestPromMetrics(t *testing.T) {
	p := newPrometheusMetrics()

	p.GetOrCreateCountMeter("requests").Add(3)
	// same name resolves to the same meter
	p.GetOrCreateCountMeter("requests").Add(2)

	ops := p.GetOrCreateCountVecMeter("ops_count", []string{"op", "result"})
	ops.AddWithLabel(1, map[string]string{"op": "stake", "result": "ok"})
	ops.AddWithLabel(1, map[string]string{"op": "stake", "result": "ok"})
	ops.AddWithLabel(1, map[string]string{"op": "unstake", "result": "insufficient_stake"})

	staked := p.GetOrCreateGaugeMeter("staked_total")
	staked.Add(1000)
	staked.Add(-400)

	hist := p.GetOrCreateHistogramVecMeter("duration_ms", []string{"method"}, BucketHTTPReqs)
	hist.ObserveWithLabels(5, map[string]string{"method": "GET"})
	hist.ObserveWithLabels(7, map[string]string{"method": "POST"})

	families := gather(t, p)

	require.Contains(t, families, "stakepoints_requests")
	assert.Equal(t, float64(5), sumCounters(families["stakepoints_requests"]))

	require.Contains(t, families, "stakepoints_ops_count")
	assert.Len(t, families["stakepoints_ops_count"].GetMetric(), 2)
	assert.Equal(t, float64(3), sumCounters(families["stakepoints_ops_count"]))

	require.Contains(t, families, "stakepoints_staked_total")
	assert.Equal(t, float64(600), families["stakepoints_staked_total"].GetMetric()[0].GetGauge().GetValue())

	require.Contains(t, families, "stakepoints_duration_ms")
	var sum float64
	for _, m := range families["stakepoints_duration_ms"].GetMetric() {
		sum += m.GetHistogram().GetSampleSum()
	}
	assert.Equal(t, float64(12), sum)
}

func TestPromHandler(t *testing.T) {
	p := newPrometheusMetrics()
	p.GetOrCreateCountMeter("served").Add(1)

	server := httptest.NewServer(p.GetOrCreateHandler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stakepoints_served 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })

	lazyGauge := LazyLoadGauge("lazy_gauge")
	lazyCounter := LazyLoadCounter("lazy_counter")
	lazyCounterVec := LazyLoadCounterVec("lazy_counter_vec", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazy_hist_vec", nil, nil)

	// meters defined before initialization resolve to prometheus once used
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())

	// resolution happens once
	require.Same(t, lazyGauge(), lazyGauge())
}
