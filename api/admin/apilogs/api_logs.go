// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package apilogs lets an operator switch the public api request logger on
// and off without restarting pointsd.
package apilogs

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepoints/api/utils"
	"github.com/vechain/stakepoints/log"
)

var logger = log.WithContext("pkg", "apilogs")

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

// APILogs flips the flag the request logger middleware reads on every request.
type APILogs struct {
	enabled *atomic.Bool
}

func New(enabled *atomic.Bool) *APILogs {
	return &APILogs{enabled: enabled}
}

func (a *APILogs) handleGet(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogStatus{Enabled: a.enabled.Load()})
}

func (a *APILogs) handleSet(w http.ResponseWriter, req *http.Request) error {
	var status LogStatus
	if err := utils.ParseJSON(req.Body, &status); err != nil {
		return utils.BadRequest(err)
	}
	if prev := a.enabled.Swap(status.Enabled); prev != status.Enabled {
		logger.Info("api request logs toggled", "enabled", status.Enabled)
	}
	return utils.WriteJSON(w, status)
}

func (a *APILogs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("admin_get_api_logs").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGet))
	sub.Path("").
		Methods(http.MethodPost).
		Name("admin_set_api_logs").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSet))
}
