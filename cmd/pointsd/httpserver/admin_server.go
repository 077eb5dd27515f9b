// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"log/slog"
	"sync/atomic"

	"github.com/vechain/stakepoints/api/admin"
	"github.com/vechain/stakepoints/api/admin/health"
)

// StartAdminServer serves the admin api on addr and returns its base url and
// a function stopping it.
func StartAdminServer(addr string, logLevel *slog.LevelVar, apiLogs *atomic.Bool, h *health.Health) (string, func(), error) {
	return startSideServer("admin", addr, "/admin", admin.New(logLevel, apiLogs, h))
}
