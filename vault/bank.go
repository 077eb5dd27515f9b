// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault keeps the fungible balances stake moves between.
package vault

import (
	"sync"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/custody"
	"github.com/vechain/stakepoints/kv"
	"github.com/vechain/stakepoints/log"
	"github.com/vechain/stakepoints/reverts"
	"github.com/vechain/stakepoints/thor"
)

var logger = log.WithContext("pkg", "vault")

var (
	ErrInsufficientFunds = reverts.New("insufficient funds")
	ErrBadCustodyProof   = reverts.New("custody proof does not match vault")
	ErrBalanceOverflow   = reverts.New("balance overflow")
	ErrSelfTransfer      = reverts.New("source and destination are the same account")
)

// BalanceBucket prefixes balance keys in the shared store.
const BalanceBucket = kv.Bucket("b")

// Bank is an in-process ledger of account balances. Both legs of a transfer
// are written in a single batch.
type Bank struct {
	mu    sync.Mutex
	store kv.Store
}

// New creates a bank over the balance bucket of db.
func New(db kv.Store) *Bank {
	return &Bank{store: BalanceBucket.NewStore(db)}
}

func balanceOf(g kv.Getter, addr thor.Address) (uint64, error) {
	data, err := g.Get(addr.Bytes())
	if err != nil {
		if g.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "get balance")
	}
	var bal uint64
	if err := rlp.DecodeBytes(data, &bal); err != nil {
		return 0, errors.Wrap(err, "decode balance")
	}
	return bal, nil
}

func putBalance(p kv.Putter, addr thor.Address, bal uint64) error {
	if bal == 0 {
		return p.Delete(addr.Bytes())
	}
	data, err := rlp.EncodeToBytes(bal)
	if err != nil {
		return err
	}
	return p.Put(addr.Bytes(), data)
}

// BalanceOf returns the balance held by addr.
func (b *Bank) BalanceOf(addr thor.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return balanceOf(b.store, addr)
}

// Mint credits amount to addr out of thin air. Used to seed dev balances.
func (b *Bank) Mint(to thor.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bal, err := balanceOf(b.store, to)
	if err != nil {
		return err
	}
	sum, overflow := math.SafeAdd(bal, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	return b.store.Batch(func(p kv.Putter) error {
		return putBalance(p, to, sum)
	})
}

// Deposit moves amount from an external account into a vault.
func (b *Bank) Deposit(from, vault thor.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.transfer(from, vault, amount); err != nil {
		return err
	}
	logger.Trace("deposit", "from", from, "vault", vault, "amount", amount)
	return nil
}

// Release moves amount out of the vault signer derives to. The signer must
// reproduce a valid derivation, otherwise ErrBadCustodyProof is returned.
func (b *Bank) Release(signer custody.Signer, to thor.Address, amount uint64) error {
	vault, err := signer.Address()
	if err != nil {
		return ErrBadCustodyProof
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.transfer(vault, to, amount); err != nil {
		return err
	}
	logger.Trace("release", "vault", vault, "to", to, "amount", amount)
	return nil
}

func (b *Bank) transfer(from, to thor.Address, amount uint64) error {
	if from == to {
		return ErrSelfTransfer
	}
	fromBal, err := balanceOf(b.store, from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return ErrInsufficientFunds
	}
	toBal, err := balanceOf(b.store, to)
	if err != nil {
		return err
	}
	toSum, overflow := math.SafeAdd(toBal, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	return b.store.Batch(func(p kv.Putter) error {
		if err := putBalance(p, from, fromBal-amount); err != nil {
			return err
		}
		return putBalance(p, to, toSum)
	})
}
