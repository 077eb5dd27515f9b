// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepoints/api/utils"
	"github.com/vechain/stakepoints/thor"
)

// Balances reads vault and account balances.
type Balances interface {
	BalanceOf(addr thor.Address) (uint64, error)
}

// Balance is the api view of a balance.
type Balance struct {
	Address thor.Address        `json:"address"`
	Balance math.HexOrDecimal64 `json:"balance"`
}

type Vault struct {
	balances Balances
}

func New(balances Balances) *Vault {
	return &Vault{balances}
}

func (v *Vault) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	bal, err := v.balances.BalanceOf(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Address: addr, Balance: math.HexOrDecimal64(bal)})
}

func (v *Vault) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("vault_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetBalance))
}
