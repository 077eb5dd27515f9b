// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auth

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/kv"
	"github.com/vechain/stakepoints/log"
	"github.com/vechain/stakepoints/reverts"
	"github.com/vechain/stakepoints/thor"
)

var logger = log.WithContext("pkg", "auth")

var (
	ErrExpired  = reverts.New("request expired")
	ErrReplayed = reverts.New("request already consumed")
)

// ConsumedBucket prefixes consumed request ids in the shared store.
const ConsumedBucket = kv.Bucket("q")

// Guard admits each signed request at most once and only before it expires.
type Guard struct {
	mu    sync.Mutex
	store kv.Store
}

// NewGuard creates a guard keeping consumed ids in db.
func NewGuard(db kv.Store) *Guard {
	return &Guard{store: ConsumedBucket.NewStore(db)}
}

// Admit consumes req, as signed by origin, if it has not expired at now and
// was never admitted before. A consumed request stays consumed even if the
// operation it carries later fails.
func (g *Guard) Admit(req *SignedRequest, origin thor.Address, now uint64) error {
	if now > req.Expiration {
		return ErrExpired
	}
	id := req.ID(origin)

	g.mu.Lock()
	defer g.mu.Unlock()

	seen, err := g.store.Has(id[:])
	if err != nil {
		return errors.Wrap(err, "lookup request id")
	}
	if seen {
		return ErrReplayed
	}
	var exp [8]byte
	binary.BigEndian.PutUint64(exp[:], req.Expiration)
	if err := g.store.Put(id[:], exp[:]); err != nil {
		return errors.Wrap(err, "store request id")
	}
	return nil
}

// Prune forgets consumed ids whose requests expired before now. Expired
// requests are refused on expiry alone, so their ids are no longer needed.
func (g *Guard) Prune(now uint64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var stale [][]byte
	err := g.store.Iterate(kv.Range{}, func(p kv.Pair) bool {
		if v := p.Value(); len(v) == 8 && binary.BigEndian.Uint64(v) < now {
			stale = append(stale, append([]byte(nil), p.Key()...))
		}
		return true
	})
	if err != nil {
		return 0, errors.Wrap(err, "scan request ids")
	}
	if len(stale) == 0 {
		return 0, nil
	}
	err = g.store.Batch(func(p kv.Putter) error {
		for _, k := range stale {
			if err := p.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "prune request ids")
	}
	logger.Debug("pruned consumed requests", "count", len(stale))
	return len(stale), nil
}
