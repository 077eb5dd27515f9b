// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, h *Health, query string) (*Status, int) {
	router := mux.NewRouter()
	NewAPI(h).Mount(router, "/health")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health"+query, nil))

	var status Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return &status, rr.Code
}

func TestHealth(t *testing.T) {
	var probeErr error
	h := New(func() error { return probeErr })

	status, code := getHealth(t, h, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)
	assert.Nil(t, status.ClockCheck)

	h.ClockOffset(-2 * time.Second)
	status, code = getHealth(t, h, "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, status.ClockCheck)
	assert.Equal(t, "-2s", status.ClockCheck.Offset)

	status, code = getHealth(t, h, "?maxClockOffset=1s")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)
	assert.True(t, status.Storage)

	h.ClockOffset(0)
	probeErr = errors.New("closed")
	status, code = getHealth(t, h, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)
	assert.False(t, status.Storage)
}
