// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepoints/cache"
	"github.com/vechain/stakepoints/metrics"
)

func TestLRUGetOrLoad(t *testing.T) {
	c := cache.MustNewLRU(2)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(int) * 10, nil
	}

	v, err := c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, loads)

	changed, hit, miss := c.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
}

func TestLRULoaderError(t *testing.T) {
	c := cache.MustNewLRU(2)
	boom := errors.New("boom")

	_, err := c.GetOrLoad("k", func(any) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Contains("k"))
}

func TestNewLRUInvalidSize(t *testing.T) {
	_, err := cache.NewLRU(0)
	assert.Error(t, err)
	assert.Panics(t, func() { cache.MustNewLRU(-1) })
}

func TestStats(t *testing.T) {
	var s cache.Stats
	s.Hit()
	s.Hit()
	s.Miss()

	changed, hit, miss := s.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ = s.Stats()
	assert.False(t, changed)
}

func TestNamedLRUMetrics(t *testing.T) {
	metrics.InitializePrometheusMetrics()

	c := cache.MustNewLRU(2).Named("records")
	loader := func(key any) (any, error) { return key, nil }
	for range 3 {
		_, err := c.GetOrLoad("alice", loader)
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	metrics.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)

	family, ok := families["stakepoints_cache_lookups_count"]
	require.True(t, ok)
	counts := make(map[string]float64)
	for _, m := range family.GetMetric() {
		var name, result string
		for _, l := range m.GetLabel() {
			switch l.GetName() {
			case "cache":
				name = l.GetValue()
			case "result":
				result = l.GetValue()
			}
		}
		counts[name+"/"+result] += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(2), counts["records/hit"])
	assert.Equal(t, float64(1), counts["records/miss"])
}
