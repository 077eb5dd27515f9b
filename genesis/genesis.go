// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial state a ledger instance starts from.
package genesis

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/kv"
	"github.com/vechain/stakepoints/log"
	"github.com/vechain/stakepoints/thor"
)

var logger = log.WithContext("pkg", "genesis")

// ErrDomainMismatch is returned by Apply when the store was initialized by a different genesis.
var ErrDomainMismatch = errors.New("store was initialized with a different genesis")

// MarkerBucket holds the applied genesis marker.
const MarkerBucket = kv.Bucket("g")

var markerKey = []byte("genesis")

// Allocation is an initial balance.
type Allocation struct {
	Address thor.Address
	Amount  uint64
}

// Minter credits balances.
type Minter interface {
	Mint(to thor.Address, amount uint64) error
}

// Genesis names a deployment and lists its initial balances.
type Genesis struct {
	name   string
	domain thor.Bytes32
	allocs []Allocation
}

func newGenesis(name string, allocs []Allocation) *Genesis {
	return &Genesis{
		name:   name,
		domain: DomainOf(name),
		allocs: allocs,
	}
}

// DomainOf derives the signing domain of the deployment called name.
func DomainOf(name string) thor.Bytes32 {
	return thor.Blake2b(thor.ProgramID[:], []byte(name))
}

// Name returns the deployment name.
func (g *Genesis) Name() string {
	return g.name
}

// Domain returns the signing domain requests must be bound to.
func (g *Genesis) Domain() thor.Bytes32 {
	return g.domain
}

// Allocations returns the initial balances, ordered by address.
func (g *Genesis) Allocations() []Allocation {
	return append([]Allocation(nil), g.allocs...)
}

type marker struct {
	Domain thor.Bytes32
	Name   string
}

// Apply mints the initial balances into a fresh store and records the
// genesis marker. It reports false without minting when the store already
// carries the marker of this genesis.
func (g *Genesis) Apply(db kv.Store, minter Minter) (bool, error) {
	store := MarkerBucket.NewStore(db)

	data, err := store.Get(markerKey)
	if err == nil {
		var m marker
		if err := rlp.DecodeBytes(data, &m); err != nil {
			return false, errors.Wrap(err, "decode genesis marker")
		}
		if m.Domain != g.domain {
			return false, errors.WithMessagef(ErrDomainMismatch, "want %v (%v), have %v (%v)", g.domain, g.name, m.Domain, m.Name)
		}
		return false, nil
	}
	if !store.IsNotFound(err) {
		return false, errors.Wrap(err, "get genesis marker")
	}

	for _, a := range g.allocs {
		if err := minter.Mint(a.Address, a.Amount); err != nil {
			return false, errors.Wrapf(err, "mint %v", a.Address)
		}
	}

	enc, err := rlp.EncodeToBytes(&marker{g.domain, g.name})
	if err != nil {
		return false, err
	}
	if err := store.Put(markerKey, enc); err != nil {
		return false, errors.Wrap(err, "put genesis marker")
	}
	logger.Info("genesis applied", "name", g.name, "domain", g.domain, "accounts", len(g.allocs))
	return true, nil
}
