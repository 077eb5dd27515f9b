// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepoints/journal"
	"github.com/vechain/stakepoints/ledger"
	"github.com/vechain/stakepoints/thor"
)

// Record is the api view of a ledger record.
type Record struct {
	Address         thor.Address        `json:"address"`
	Owner           thor.Address        `json:"owner"`
	StakedAmount    math.HexOrDecimal64 `json:"stakedAmount"`
	TotalPoints     math.HexOrDecimal64 `json:"totalPoints"`
	LastUpdatedTime uint64              `json:"lastUpdatedTime"`
	Bump            uint8               `json:"bump"`
	// PendingPoints is TotalPoints accrued up to the time of the response.
	PendingPoints math.HexOrDecimal64 `json:"pendingPoints"`
}

func convertRecord(addr thor.Address, rec *ledger.Record, now uint64) *Record {
	return &Record{
		Address:         addr,
		Owner:           rec.Owner,
		StakedAmount:    math.HexOrDecimal64(rec.StakedAmount),
		TotalPoints:     math.HexOrDecimal64(rec.TotalPoints),
		LastUpdatedTime: rec.LastUpdatedTime,
		Bump:            rec.Bump,
		PendingPoints:   math.HexOrDecimal64(ledger.Pending(rec, now)),
	}
}

// SignedRequest is the body of a create, stake or unstake call. The
// operation and the record, or the owner for create, are taken from the path.
type SignedRequest struct {
	Amount     *math.HexOrDecimal64 `json:"amount"`
	Expiration *math.HexOrDecimal64 `json:"expiration"`
	Nonce      *math.HexOrDecimal64 `json:"nonce"`
	Signature  hexutil.Bytes        `json:"signature"`
}

// JournalEntry is the api view of a journal entry.
type JournalEntry struct {
	Seq    uint64              `json:"seq"`
	Record thor.Address        `json:"record"`
	Owner  thor.Address        `json:"owner"`
	Op     string              `json:"op"`
	Amount math.HexOrDecimal64 `json:"amount"`
	Staked math.HexOrDecimal64 `json:"staked"`
	Points math.HexOrDecimal64 `json:"points"`
	Time   uint64              `json:"time"`
}

func convertEntries(entries []*journal.Entry) []*JournalEntry {
	out := make([]*JournalEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &JournalEntry{
			Seq:    e.Seq,
			Record: e.Record,
			Owner:  e.Owner,
			Op:     e.Op,
			Amount: math.HexOrDecimal64(e.Amount),
			Staked: math.HexOrDecimal64(e.Staked),
			Points: math.HexOrDecimal64(e.Points),
			Time:   e.Time,
		})
	}
	return out
}
