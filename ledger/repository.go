// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/cache"
	"github.com/vechain/stakepoints/kv"
	"github.com/vechain/stakepoints/thor"
)

// RecordBucket prefixes record keys in the shared store.
const RecordBucket = kv.Bucket("r")

// Repository loads and stores records by address.
type Repository interface {
	// Get returns ErrRecordNotFound when no record exists at addr.
	Get(addr thor.Address) (*Record, error)
	Put(addr thor.Address, rec *Record) error
	Has(addr thor.Address) (bool, error)
}

// KVRepository keeps records RLP encoded in a kv store, fronted by an LRU cache.
type KVRepository struct {
	store kv.Store
	cache *cache.LRU
}

var _ Repository = (*KVRepository)(nil)

// NewKVRepository creates a repository over the record bucket of db.
func NewKVRepository(db kv.Store, cacheSize int) *KVRepository {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &KVRepository{
		store: RecordBucket.NewStore(db),
		cache: cache.MustNewLRU(cacheSize).Named("records"),
	}
}

// Get returns a copy of the record at addr; callers may modify it freely.
func (r *KVRepository) Get(addr thor.Address) (*Record, error) {
	v, err := r.cache.GetOrLoad(addr, func(any) (any, error) {
		data, err := r.store.Get(addr.Bytes())
		if err != nil {
			if r.store.IsNotFound(err) {
				return nil, ErrRecordNotFound
			}
			return nil, errors.Wrap(err, "get record")
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, errors.Wrap(err, "decode record")
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	cp := *(v.(*Record))
	return &cp, nil
}

func (r *KVRepository) Put(addr thor.Address, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	if err := r.store.Put(addr.Bytes(), data); err != nil {
		return errors.Wrap(err, "put record")
	}
	cp := *rec
	r.cache.Add(addr, &cp)
	return nil
}

func (r *KVRepository) Has(addr thor.Address) (bool, error) {
	if r.cache.Contains(addr) {
		return true, nil
	}
	ok, err := r.store.Has(addr.Bytes())
	if err != nil {
		return false, errors.Wrap(err, "has record")
	}
	return ok, nil
}

// Iterate visits every stored record in address order until fn returns false.
func (r *KVRepository) Iterate(fn func(addr thor.Address, rec *Record) bool) error {
	var decodeErr error
	err := r.store.Iterate(kv.Range{}, func(p kv.Pair) bool {
		rec, err := decodeRecord(p.Value())
		if err != nil {
			decodeErr = errors.Wrap(err, "decode record")
			return false
		}
		return fn(thor.BytesToAddress(p.Key()), rec)
	})
	if err != nil {
		return err
	}
	return decodeErr
}

// Summary aggregates every stored record.
type Summary struct {
	Records int
	Staked  uint64 // saturates at the uint64 maximum
}

// Summarize walks the repository and totals the stake held by all records.
func (r *KVRepository) Summarize() (*Summary, error) {
	var s Summary
	err := r.Iterate(func(_ thor.Address, rec *Record) bool {
		s.Records++
		if s.Staked > ^uint64(0)-rec.StakedAmount {
			s.Staked = ^uint64(0)
		} else {
			s.Staked += rec.StakedAmount
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}
