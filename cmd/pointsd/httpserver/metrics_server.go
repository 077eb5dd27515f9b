// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/metrics"
)

// StartMetricsServer exposes the ledger, api and cache meters for prometheus
// to scrape at addr/metrics. Metrics must have been initialized.
func StartMetricsServer(addr string) (string, func(), error) {
	exposition := metrics.HTTPHandler()
	if exposition == nil {
		return "", nil, errors.New("metrics not initialized")
	}

	router := mux.NewRouter()
	router.Path("/metrics").Methods(http.MethodGet).Handler(exposition)
	return startSideServer("metrics", addr, "/metrics", handlers.CompressHandler(router))
}
