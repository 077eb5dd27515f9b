// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package journal

import (
	"github.com/vechain/stakepoints/thor"
)

// Entry is a journaled ledger operation.
type Entry struct {
	Seq    uint64
	Record thor.Address
	Owner  thor.Address
	Op     string
	Amount uint64
	Staked uint64
	Points uint64
	Time   uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive unix time range. To is ignored when lower than From.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects journal entries.
type Filter struct {
	Record  *thor.Address
	Op      string
	Range   *Range
	Options *Options
	Order   Order
}
