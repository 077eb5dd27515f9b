// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepoints/api/utils"
	"github.com/vechain/stakepoints/clock"
	"github.com/vechain/stakepoints/thor"
)

// Info describes the running node.
type Info struct {
	Version string       `json:"version"`
	Domain  thor.Bytes32 `json:"domain"`
	Solo    bool         `json:"solo"`
}

// Status is Info stamped with the ledger clock.
type Status struct {
	Info
	Time uint64 `json:"time"`
}

type Node struct {
	info  Info
	clock clock.Clock
}

func New(info Info, clk clock.Clock) *Node {
	return &Node{
		info,
		clk,
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Status{Info: n.info, Time: n.clock.Now()})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("node_get_info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
}
