// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"bytes"
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepoints/clock"
	"github.com/vechain/stakepoints/kv"
	"github.com/vechain/stakepoints/lvldb"
	"github.com/vechain/stakepoints/reverts"
	"github.com/vechain/stakepoints/thor"
	"github.com/vechain/stakepoints/vault"
)

const (
	oneUnit = 1_000_000_000
	oneDay  = 86_400
)

var (
	alice   = thor.BytesToAddress([]byte("alice"))
	mallory = thor.BytesToAddress([]byte("mallory"))
)

type memJournal struct {
	mu     sync.Mutex
	events []*Event
}

func (j *memJournal) Write(_ context.Context, ev *Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	return nil
}

type testLedger struct {
	*Ledger
	repo    *KVRepository
	bank    *vault.Bank
	clock   *clock.Manual
	journal *memJournal
}

func newTestLedger(t *testing.T) *testLedger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tl := &testLedger{
		repo:    NewKVRepository(db, 16),
		bank:    vault.New(db),
		clock:   clock.NewManual(0),
		journal: &memJournal{},
	}
	tl.Ledger = New(tl.repo, tl.bank, tl.clock, tl.journal)
	return tl
}

func (tl *testLedger) balance(t *testing.T, addr thor.Address) uint64 {
	bal, err := tl.bank.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func (tl *testLedger) stored(t *testing.T, addr thor.Address) Record {
	rec, err := tl.repo.Get(addr)
	require.NoError(t, err)
	return *rec
}

// setup creates alice's record at the current clock and funds her.
func (tl *testLedger) setup(t *testing.T, funds uint64) thor.Address {
	addr, _, err := tl.CreateRecord(context.Background(), alice)
	require.NoError(t, err)
	require.NoError(t, tl.bank.Mint(alice, funds))
	return addr
}

func TestCreateRecord(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.clock.Set(1_700_000_000)

	addr, rec, err := tl.CreateRecord(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, alice, rec.Owner)
	assert.Zero(t, rec.StakedAmount)
	assert.Zero(t, rec.TotalPoints)
	assert.Equal(t, uint64(1_700_000_000), rec.LastUpdatedTime)

	derived, err := rec.Address()
	require.NoError(t, err)
	assert.Equal(t, addr, derived)

	// idempotent: the existing record is returned unchanged
	tl.clock.Advance(oneDay)
	addr2, rec2, err := tl.CreateRecord(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)
	assert.Equal(t, rec, rec2)

	addr3, rec3, err := tl.RecordOf(alice)
	require.NoError(t, err)
	assert.Equal(t, addr, addr3)
	assert.Equal(t, rec, rec3)

	_, _, err = tl.RecordOf(mallory)
	assert.Equal(t, ErrRecordNotFound, err)

	require.Len(t, tl.journal.events, 1)
	assert.Equal(t, OpCreate, tl.journal.events[0].Op)
}

func TestOneUnitForOneDay(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, oneUnit)

	rec, err := tl.Stake(ctx, alice, addr, oneUnit)
	require.NoError(t, err)
	assert.Equal(t, uint64(oneUnit), rec.StakedAmount)
	assert.Zero(t, rec.TotalPoints)
	assert.Zero(t, tl.balance(t, alice))
	assert.Equal(t, uint64(oneUnit), tl.balance(t, addr))

	tl.clock.Set(oneDay)
	rec, err = tl.Unstake(ctx, alice, addr, oneUnit)
	require.NoError(t, err)
	assert.Zero(t, rec.StakedAmount)
	assert.Equal(t, uint64(1_000_000), rec.TotalPoints)
	assert.Equal(t, uint64(oneDay), rec.LastUpdatedTime)

	assert.Equal(t, *rec, tl.stored(t, addr))
	assert.Equal(t, uint64(oneUnit), tl.balance(t, alice))
	assert.Zero(t, tl.balance(t, addr))
}

func TestStakeAccruesAgainstPriorBalance(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 3*oneUnit)

	_, err := tl.Stake(ctx, alice, addr, oneUnit)
	require.NoError(t, err)

	tl.clock.Set(oneDay)
	rec, err := tl.Stake(ctx, alice, addr, 2*oneUnit)
	require.NoError(t, err)
	assert.Equal(t, uint64(3*oneUnit), rec.StakedAmount)
	assert.Equal(t, uint64(1_000_000), rec.TotalPoints)

	tl.clock.Set(2 * oneDay)
	rec, err = tl.Unstake(ctx, alice, addr, oneUnit)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*oneUnit), rec.StakedAmount)
	assert.Equal(t, uint64(4_000_000), rec.TotalPoints)
}

func TestSameInstantIsIdempotent(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 2*oneUnit)

	tl.clock.Set(oneDay)
	rec, err := tl.Stake(ctx, alice, addr, oneUnit)
	require.NoError(t, err)
	assert.Zero(t, rec.TotalPoints)

	rec, err = tl.Stake(ctx, alice, addr, oneUnit)
	require.NoError(t, err)
	assert.Zero(t, rec.TotalPoints)
	assert.Equal(t, uint64(oneDay), rec.LastUpdatedTime)
}

func TestInvalidAmount(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 10)

	_, err := tl.Stake(ctx, alice, addr, 0)
	assert.Equal(t, ErrInvalidAmount, err)
	_, err = tl.Unstake(ctx, alice, addr, 0)
	assert.Equal(t, ErrInvalidAmount, err)

	// amount is checked before the record is looked up
	_, err = tl.Stake(ctx, alice, thor.Address{}, 0)
	assert.Equal(t, ErrInvalidAmount, err)
}

func TestRecordNotFound(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()

	_, err := tl.Stake(ctx, alice, thor.BytesToAddress([]byte("nowhere")), 1)
	assert.Equal(t, ErrRecordNotFound, err)
	_, err = tl.Unstake(ctx, alice, thor.BytesToAddress([]byte("nowhere")), 1)
	assert.Equal(t, ErrRecordNotFound, err)
}

func TestUnauthorized(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, oneUnit)
	require.NoError(t, tl.bank.Mint(mallory, oneUnit))

	_, err := tl.Stake(ctx, alice, addr, oneUnit/2)
	require.NoError(t, err)
	before := tl.stored(t, addr)

	tl.clock.Set(oneDay)
	_, err = tl.Stake(ctx, mallory, addr, 1)
	assert.Equal(t, ErrUnauthorized, err)
	_, err = tl.Unstake(ctx, mallory, addr, 1)
	assert.Equal(t, ErrUnauthorized, err)

	assert.Equal(t, before, tl.stored(t, addr))
	assert.Equal(t, uint64(oneUnit), tl.balance(t, mallory))
	assert.Equal(t, uint64(oneUnit/2), tl.balance(t, addr))
}

func TestInsufficientStake(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 100)

	_, err := tl.Stake(ctx, alice, addr, 100)
	require.NoError(t, err)
	before := tl.stored(t, addr)

	tl.clock.Set(oneDay)
	_, err = tl.Unstake(ctx, alice, addr, 101)
	assert.Equal(t, ErrInsufficientStake, err)
	assert.Equal(t, before, tl.stored(t, addr))
	assert.Equal(t, uint64(100), tl.balance(t, addr))
}

func TestStakeOverflowPerformsNoTransfer(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 10)

	rec := tl.stored(t, addr)
	rec.StakedAmount = math.MaxUint64 - 5
	require.NoError(t, tl.repo.Put(addr, &rec))

	_, err := tl.Stake(ctx, alice, addr, 10)
	assert.Equal(t, ErrOverflow, err)
	assert.Equal(t, rec, tl.stored(t, addr))
	assert.Equal(t, uint64(10), tl.balance(t, alice))
	assert.Zero(t, tl.balance(t, addr))
}

func TestPointsOverflow(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 10)

	rec := tl.stored(t, addr)
	rec.StakedAmount = math.MaxUint64
	rec.TotalPoints = math.MaxUint64 - 1
	require.NoError(t, tl.repo.Put(addr, &rec))

	tl.clock.Set(oneDay)
	_, err := tl.Stake(ctx, alice, addr, 1)
	assert.Equal(t, ErrOverflow, err)
	assert.Equal(t, rec, tl.stored(t, addr))
	assert.Equal(t, uint64(10), tl.balance(t, alice))
}

func TestInvalidTimestamp(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.clock.Set(1_000)
	addr := tl.setup(t, 10)

	tl.clock.Set(999)
	_, err := tl.Stake(ctx, alice, addr, 1)
	assert.Equal(t, ErrInvalidTimestamp, err)
	assert.Equal(t, uint64(1_000), tl.stored(t, addr).LastUpdatedTime)
	assert.Equal(t, uint64(10), tl.balance(t, alice))
}

func TestTransferFailure(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 10)
	before := tl.stored(t, addr)

	tl.clock.Set(oneDay)
	_, err := tl.Stake(ctx, alice, addr, 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransferFailure))
	assert.True(t, errors.Is(err, vault.ErrInsufficientFunds))
	assert.True(t, reverts.IsRevertErr(err))

	assert.Equal(t, before, tl.stored(t, addr))
	assert.Equal(t, uint64(10), tl.balance(t, alice))
}

type failingPut struct {
	Repository
}

func (failingPut) Put(thor.Address, *Record) error {
	return errors.New("disk full")
}

func TestCommitFailureRestoresBalances(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 100)

	_, err := tl.Stake(ctx, alice, addr, 40)
	require.NoError(t, err)
	before := tl.stored(t, addr)

	broken := New(failingPut{tl.repo}, tl.bank, tl.clock, nil)
	tl.clock.Set(oneDay)

	_, err = broken.Stake(ctx, alice, addr, 10)
	require.Error(t, err)
	assert.False(t, reverts.IsRevertErr(err))
	assert.Equal(t, uint64(60), tl.balance(t, alice))
	assert.Equal(t, uint64(40), tl.balance(t, addr))

	_, err = broken.Unstake(ctx, alice, addr, 10)
	require.Error(t, err)
	assert.Equal(t, uint64(60), tl.balance(t, alice))
	assert.Equal(t, uint64(40), tl.balance(t, addr))

	assert.Equal(t, before, tl.stored(t, addr))
}

func TestCanceledContext(t *testing.T) {
	tl := newTestLedger(t)
	addr := tl.setup(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tl.Stake(ctx, alice, addr, 1)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, uint64(10), tl.balance(t, alice))
}

func TestNotImplementedHooks(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 0)

	assert.Equal(t, ErrNotImplemented, tl.ClaimPoints(ctx, alice, addr))
	_, err := tl.QueryPoints(ctx, addr)
	assert.Equal(t, ErrNotImplemented, err)
}

func TestPending(t *testing.T) {
	rec := &Record{StakedAmount: oneUnit, TotalPoints: 5, LastUpdatedTime: 100}

	assert.Equal(t, uint64(5), Pending(rec, 100))
	assert.Equal(t, uint64(1_000_005), Pending(rec, 100+oneDay))
	// clock behind the record reports the stored total
	assert.Equal(t, uint64(5), Pending(rec, 99))
	assert.Equal(t, uint64(5), rec.TotalPoints)
}

func TestConcurrentStakes(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, 1_000)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tl.Stake(ctx, alice, addr, 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(100), tl.stored(t, addr).StakedAmount)
	assert.Equal(t, uint64(900), tl.balance(t, alice))
	assert.Equal(t, uint64(100), tl.balance(t, addr))
}

// stallingStore blocks the first record read after arm until resume is closed.
type stallingStore struct {
	kv.Store
	armed   atomic.Bool
	stalled chan struct{}
	resume  chan struct{}
}

func (s *stallingStore) Get(key []byte) ([]byte, error) {
	if bytes.HasPrefix(key, []byte(RecordBucket)) && s.armed.CompareAndSwap(true, false) {
		close(s.stalled)
		<-s.resume
	}
	return s.Store.Get(key)
}

func TestReadDuringStakeKeepsDeposit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	store := &stallingStore{
		Store:   db,
		stalled: make(chan struct{}),
		resume:  make(chan struct{}),
	}
	bank := vault.New(db)
	l := New(NewKVRepository(store, 1), bank, clock.NewManual(0), nil)
	ctx := context.Background()

	addr, _, err := l.CreateRecord(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, bank.Mint(alice, 100))
	// evict alice's record
	_, _, err = l.CreateRecord(ctx, mallory)
	require.NoError(t, err)

	store.armed.Store(true)
	read := make(chan error, 1)
	go func() {
		_, err := l.Record(addr)
		read <- err
	}()
	<-store.stalled

	staked := make(chan error, 1)
	go func() {
		_, err := l.Stake(ctx, alice, addr, 40)
		staked <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(store.resume)

	require.NoError(t, <-read)
	require.NoError(t, <-staked)

	rec, err := l.Stake(ctx, alice, addr, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), rec.StakedAmount)

	bal, err := bank.BalanceOf(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), bal)
}

func TestJournalEvents(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	addr := tl.setup(t, oneUnit)

	_, err := tl.Stake(ctx, alice, addr, oneUnit)
	require.NoError(t, err)
	tl.clock.Set(oneDay)
	_, err = tl.Unstake(ctx, alice, addr, oneUnit/2)
	require.NoError(t, err)
	_, err = tl.Unstake(ctx, alice, addr, oneUnit)
	require.Error(t, err)

	require.Len(t, tl.journal.events, 3)
	ev := tl.journal.events[2]
	assert.Equal(t, &Event{
		Record: addr,
		Owner:  alice,
		Op:     OpUnstake,
		Amount: oneUnit / 2,
		Staked: oneUnit / 2,
		Points: 1_000_000,
		Time:   oneDay,
	}, ev)
}

func TestResultLabels(t *testing.T) {
	assert.Equal(t, "ok", result(nil))
	assert.Equal(t, "unauthorized", result(ErrUnauthorized))
	assert.Equal(t, "overflow", result(ErrOverflow))
	assert.Equal(t, "transfer_failure", result(&TransferError{Op: "deposit", Cause: vault.ErrInsufficientFunds}))
	assert.Equal(t, "internal", result(errors.New("boom")))
}
