// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepoints/metrics"
)

func TestStartMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	metrics.Counter("ledger_ops_total_test").Add(1)

	url, stop, err := StartMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	defer stop()
	assert.True(t, strings.HasSuffix(url, "/metrics"))

	res, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "stakepoints_ledger_ops_total_test 1")

	res, err = http.Post(url, "text/plain", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestStartMetricsServerBadAddr(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	_, _, err := StartMetricsServer("256.0.0.1:bad")
	assert.Error(t, err)
}
