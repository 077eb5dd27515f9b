// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepoints/api/admin/apilogs"
	"github.com/vechain/stakepoints/api/admin/health"
	"github.com/vechain/stakepoints/api/admin/loglevel"
)

func TestStartAdminServer(t *testing.T) {
	var logLevel slog.LevelVar
	logLevel.Set(slog.LevelInfo)
	apiLogs := &atomic.Bool{}

	url, stop, err := StartAdminServer("127.0.0.1:0", &logLevel, apiLogs, health.New(func() error { return nil }))
	require.NoError(t, err)
	defer stop()

	post := func(path string, body any) *http.Response {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		res, err := http.Post(url+path, "application/json", bytes.NewReader(data))
		require.NoError(t, err)
		return res
	}

	res := post("/loglevel", loglevel.Request{Level: "debug"})
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, slog.LevelDebug, logLevel.Level())

	res = post("/apilogs", apilogs.LogStatus{Enabled: true})
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, apiLogs.Load())

	res, err = http.Get(url + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var status health.Status
	require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
	assert.True(t, status.Healthy)
}

func TestStartAdminServerBadAddr(t *testing.T) {
	_, _, err := StartAdminServer("256.0.0.1:bad", new(slog.LevelVar), &atomic.Bool{}, health.New(func() error { return nil }))
	assert.Error(t, err)
}
