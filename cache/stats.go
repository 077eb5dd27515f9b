// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	"github.com/vechain/stakepoints/metrics"
)

var metricLookups = metrics.LazyLoadCounterVec("cache_lookups_count", []string{"cache", "result"})

// Stats counts the lookups a cache served. A named Stats also reports every
// lookup to the cache_lookups_count metric, labelled with its name.
type Stats struct {
	name      string
	hit, miss atomic.Int64
	permille  atomic.Int64
}

func (s *Stats) Hit() {
	s.hit.Add(1)
	s.report("hit")
}

func (s *Stats) Miss() {
	s.miss.Add(1)
	s.report("miss")
}

func (s *Stats) report(result string) {
	if s.name != "" {
		metricLookups().AddWithLabel(1, map[string]string{"cache": s.name, "result": result})
	}
}

// Stats returns the hit and miss totals, and whether the hit rate moved by at
// least one permille since the previous call.
func (s *Stats) Stats() (changed bool, hit, miss int64) {
	hit, miss = s.hit.Load(), s.miss.Load()

	var permille int64
	if total := hit + miss; total > 0 {
		permille = hit * 1000 / total
	}
	return s.permille.Swap(permille) != permille, hit, miss
}
