// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepoints/api/admin/apilogs"
	"github.com/vechain/stakepoints/api/admin/health"
	"github.com/vechain/stakepoints/api/admin/loglevel"
)

// New returns the admin router, serving under /admin.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, h *health.Health) http.HandlerFunc {
	router := mux.NewRouter()

	loglevel.New(logLevel).Mount(router, "/admin/loglevel")
	apilogs.New(apiLogs).Mount(router, "/admin/apilogs")
	health.NewAPI(h).Mount(router, "/admin/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
