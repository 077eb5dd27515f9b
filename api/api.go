// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepoints/api/middleware"
	"github.com/vechain/stakepoints/api/node"
	"github.com/vechain/stakepoints/api/records"
	"github.com/vechain/stakepoints/api/vault"
	"github.com/vechain/stakepoints/auth"
	"github.com/vechain/stakepoints/clock"
	"github.com/vechain/stakepoints/ledger"
	"github.com/vechain/stakepoints/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	PprofOn              bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	JournalLimit         uint64
	Info                 node.Info
}

// Backend groups the services the api serves.
type Backend struct {
	Ledger   *ledger.Ledger
	Balances vault.Balances
	Signing  *auth.Signing
	Guard    *auth.Guard
	Journal  records.Journal // optional
	Clock    clock.Clock
}

// New return api router
func New(backend *Backend, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	records.New(backend.Ledger, backend.Signing, backend.Guard, backend.Journal, opts.JournalLimit).
		Mount(router, "")
	vault.New(backend.Balances).
		Mount(router, "/vault")
	node.New(opts.Info, backend.Clock).
		Mount(router, "/node")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	reqLogger := opts.EnableReqLogger
	if reqLogger == nil {
		reqLogger = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, reqLogger, opts.SlowQueriesThreshold)(handler)

	return handler.ServeHTTP
}
