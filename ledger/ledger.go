// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the stake and unstake transitions of a record.
//
// Each transition accrues points against the balance held so far, then moves
// value through the Vault and commits the record. A failing transition leaves
// the stored record and both vault balances as they were.
package ledger

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/clock"
	"github.com/vechain/stakepoints/custody"
	"github.com/vechain/stakepoints/log"
	"github.com/vechain/stakepoints/metrics"
	"github.com/vechain/stakepoints/points"
	"github.com/vechain/stakepoints/thor"
)

var (
	logger = log.WithContext("pkg", "ledger")

	metricOpsCount    = metrics.LazyLoadCounterVec("ledger_ops_count", []string{"op", "result"})
	metricStakedTotal = metrics.LazyLoadGauge("ledger_staked_total")
)

// Vault moves value between external accounts and record vaults.
type Vault interface {
	Deposit(from, vault thor.Address, amount uint64) error
	// Release pays amount out of the vault signer derives to.
	Release(signer custody.Signer, to thor.Address, amount uint64) error
}

// Op names a journaled ledger operation.
type Op string

const (
	OpCreate  Op = "create"
	OpStake   Op = "stake"
	OpUnstake Op = "unstake"
)

// Event describes a committed operation.
type Event struct {
	Record thor.Address
	Owner  thor.Address
	Op     Op
	Amount uint64
	Staked uint64 // balance after the operation
	Points uint64 // total points after the operation
	Time   uint64
}

// Journal receives an Event after every commit.
type Journal interface {
	Write(ctx context.Context, ev *Event) error
}

const lockStripes = 256

// ResetStakedGauge seeds the staked total gauge, normally from a Summary taken
// at startup.
func ResetStakedGauge(total uint64) {
	const maxGauge = 1<<63 - 1
	if total > maxGauge {
		total = maxGauge
	}
	metricStakedTotal().Set(int64(total)) //#nosec G115
}

// Ledger serializes operations per record and applies them to the repository.
type Ledger struct {
	repo    Repository
	vault   Vault
	clock   clock.Clock
	journal Journal

	locks [lockStripes]sync.Mutex
}

// New creates a ledger. journal may be nil.
func New(repo Repository, vault Vault, clk clock.Clock, journal Journal) *Ledger {
	return &Ledger{
		repo:    repo,
		vault:   vault,
		clock:   clk,
		journal: journal,
	}
}

// Now returns the ledger clock reading.
func (l *Ledger) Now() uint64 {
	return l.clock.Now()
}

func (l *Ledger) lock(addr thor.Address) func() {
	mu := &l.locks[addr[len(addr)-1]]
	mu.Lock()
	return mu.Unlock
}

// CreateRecord returns the record of owner, creating an empty one stamped with
// the current time if none exists yet.
func (l *Ledger) CreateRecord(ctx context.Context, owner thor.Address) (thor.Address, *Record, error) {
	addr, bump, err := custody.FindAddress(owner)
	if err != nil {
		return thor.Address{}, nil, errors.WithMessage(err, "derive record address")
	}
	defer l.lock(addr)()

	exists, err := l.repo.Has(addr)
	if err != nil {
		return thor.Address{}, nil, err
	}
	if exists {
		rec, err := l.repo.Get(addr)
		return addr, rec, err
	}

	rec := &Record{
		Owner:           owner,
		LastUpdatedTime: l.clock.Now(),
		Bump:            bump,
	}
	if err := l.repo.Put(addr, rec); err != nil {
		return thor.Address{}, nil, err
	}
	metricOpsCount().AddWithLabel(1, map[string]string{"op": string(OpCreate), "result": "ok"})
	logger.Debug("record created", "record", addr, "owner", owner, "bump", bump)
	l.emit(ctx, addr, rec, OpCreate, 0)
	return addr, rec, nil
}

// Record returns the record stored at addr.
func (l *Ledger) Record(addr thor.Address) (*Record, error) {
	defer l.lock(addr)()
	return l.repo.Get(addr)
}

// RecordOf returns the record owned by owner.
func (l *Ledger) RecordOf(owner thor.Address) (thor.Address, *Record, error) {
	addr, _, err := custody.FindAddress(owner)
	if err != nil {
		return thor.Address{}, nil, errors.WithMessage(err, "derive record address")
	}
	defer l.lock(addr)()

	rec, err := l.repo.Get(addr)
	if err != nil {
		return thor.Address{}, nil, err
	}
	return addr, rec, nil
}

// Stake deposits amount from requester into the vault of the record at addr.
// Points are accrued against the balance held before the deposit.
func (l *Ledger) Stake(ctx context.Context, requester, addr thor.Address, amount uint64) (rec *Record, err error) {
	defer func() {
		metricOpsCount().AddWithLabel(1, map[string]string{"op": string(OpStake), "result": result(err)})
	}()

	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer l.lock(addr)()

	cur, err := l.repo.Get(addr)
	if err != nil {
		return nil, err
	}
	if cur.Owner != requester {
		return nil, ErrUnauthorized
	}

	next, err := cur.accrue(l.clock.Now())
	if err != nil {
		return nil, err
	}
	staked, overflow := math.SafeAdd(next.StakedAmount, amount)
	if overflow {
		return nil, ErrOverflow
	}
	next.StakedAmount = staked

	if err := l.vault.Deposit(requester, addr, amount); err != nil {
		return nil, &TransferError{Op: "deposit", Cause: err}
	}
	if err := l.repo.Put(addr, next); err != nil {
		if cerr := l.vault.Release(cur.Signer(), requester, amount); cerr != nil {
			logger.Error("failed to refund deposit", "record", addr, "amount", amount, "err", cerr)
		}
		return nil, errors.WithMessage(err, "commit stake")
	}

	metricStakedTotal().Add(int64(amount)) //#nosec G115
	logger.Debug("staked",
		"record", addr,
		"amount", amount,
		"balance", next.StakedAmount,
		"points", points.Whole(next.TotalPoints),
	)
	l.emit(ctx, addr, next, OpStake, amount)
	return next, nil
}

// Unstake releases amount from the vault of the record at addr back to requester.
// Points are accrued against the balance held before the withdrawal.
func (l *Ledger) Unstake(ctx context.Context, requester, addr thor.Address, amount uint64) (rec *Record, err error) {
	defer func() {
		metricOpsCount().AddWithLabel(1, map[string]string{"op": string(OpUnstake), "result": result(err)})
	}()

	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer l.lock(addr)()

	cur, err := l.repo.Get(addr)
	if err != nil {
		return nil, err
	}
	if cur.Owner != requester {
		return nil, ErrUnauthorized
	}
	if cur.StakedAmount < amount {
		return nil, ErrInsufficientStake
	}

	next, err := cur.accrue(l.clock.Now())
	if err != nil {
		return nil, err
	}
	staked, underflow := math.SafeSub(next.StakedAmount, amount)
	if underflow {
		return nil, ErrUnderflow
	}
	next.StakedAmount = staked

	if err := l.vault.Release(cur.Signer(), requester, amount); err != nil {
		return nil, &TransferError{Op: "release", Cause: err}
	}
	if err := l.repo.Put(addr, next); err != nil {
		if cerr := l.vault.Deposit(requester, addr, amount); cerr != nil {
			logger.Error("failed to restore released stake", "record", addr, "amount", amount, "err", cerr)
		}
		return nil, errors.WithMessage(err, "commit unstake")
	}

	metricStakedTotal().Add(-int64(amount)) //#nosec G115
	logger.Debug("unstaked",
		"record", addr,
		"amount", amount,
		"balance", next.StakedAmount,
		"points", points.Whole(next.TotalPoints),
	)
	l.emit(ctx, addr, next, OpUnstake, amount)
	return next, nil
}

// ClaimPoints is reserved for redeeming accrued points.
func (l *Ledger) ClaimPoints(_ context.Context, _, _ thor.Address) error {
	return ErrNotImplemented
}

// QueryPoints is reserved for an authoritative points query.
func (l *Ledger) QueryPoints(_ context.Context, _ thor.Address) (uint64, error) {
	return 0, ErrNotImplemented
}

func (l *Ledger) emit(ctx context.Context, addr thor.Address, rec *Record, op Op, amount uint64) {
	if l.journal == nil {
		return
	}
	ev := &Event{
		Record: addr,
		Owner:  rec.Owner,
		Op:     op,
		Amount: amount,
		Staked: rec.StakedAmount,
		Points: rec.TotalPoints,
		Time:   rec.LastUpdatedTime,
	}
	if err := l.journal.Write(ctx, ev); err != nil {
		logger.Warn("failed to journal operation", "op", op, "record", addr, "err", err)
	}
}
