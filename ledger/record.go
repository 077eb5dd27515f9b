// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepoints/custody"
	"github.com/vechain/stakepoints/points"
	"github.com/vechain/stakepoints/thor"
)

// Record is the per-owner stake account.
type Record struct {
	Owner           thor.Address
	StakedAmount    uint64
	TotalPoints     uint64
	LastUpdatedTime uint64 // unix seconds
	Bump            byte
}

// Address re-derives the record address from its owner and bump.
func (r *Record) Address() (thor.Address, error) {
	return custody.CreateAddress(r.Owner, r.Bump)
}

// Signer is the credential the ledger presents to the vault on release.
func (r *Record) Signer() custody.Signer {
	return custody.Signer{Owner: r.Owner, Bump: r.Bump}
}

func (r *Record) state() points.State {
	return points.State{
		Staked:      r.StakedAmount,
		TotalPoints: r.TotalPoints,
		LastUpdated: r.LastUpdatedTime,
	}
}

// accrue returns a copy of r with points folded in up to now.
func (r *Record) accrue(now uint64) (*Record, error) {
	s, err := points.Accrue(r.state(), now)
	if err != nil {
		return nil, err
	}
	next := *r
	next.TotalPoints = s.TotalPoints
	next.LastUpdatedTime = s.LastUpdated
	return &next, nil
}

// Pending returns the points total rec would hold after accruing to now.
// It does not mutate rec.
func Pending(rec *Record, now uint64) uint64 {
	return points.Pending(rec.state(), now)
}

func encodeRecord(r *Record) ([]byte, error) {
	return rlp.EncodeToBytes(r)
}

func decodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
