// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides the time source the ledger stamps records with.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakepoints/log"
)

var logger = log.WithContext("pkg", "clock")

// Clock returns the current time in unix seconds.
type Clock interface {
	Now() uint64
}

// System reads the wall clock.
type System struct{}

func (System) Now() uint64 {
	return uint64(time.Now().Unix()) //#nosec G115
}

// Manual is a clock that only moves when told to.
type Manual struct {
	now atomic.Uint64
}

// NewManual returns a manual clock set to now.
func NewManual(now uint64) *Manual {
	m := &Manual{}
	m.now.Store(now)
	return m
}

func (m *Manual) Now() uint64 { return m.now.Load() }

// Set moves the clock to ts. Moving backwards is allowed so callers can
// exercise timestamp validation.
func (m *Manual) Set(ts uint64) { m.now.Store(ts) }

// Advance moves the clock forward by secs and returns the new time.
func (m *Manual) Advance(secs uint64) uint64 { return m.now.Add(secs) }

// DefaultNTPServer is queried by CheckOffset when no server is given.
const DefaultNTPServer = "pool.ntp.org"

// MaxOffset is the drift above which CheckOffset warns.
const MaxOffset = 5 * time.Second

// QueryFunc returns the local clock offset reported by an NTP server.
type QueryFunc func(server string) (time.Duration, error)

// NTPQuery asks server for the local clock offset.
func NTPQuery(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// CheckOffset compares the local clock with server and logs a warning when
// the drift exceeds MaxOffset. Records are stamped with whole seconds so a
// drifting host clock shifts every accrual window. It returns the measured
// offset, or zero when the server is unreachable.
func CheckOffset(query QueryFunc, server string) time.Duration {
	if server == "" {
		server = DefaultNTPServer
	}
	offset, err := query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "server", server, "err", err)
		return 0
	}
	abs := offset
	if abs < 0 {
		abs = -abs
	}
	if abs > MaxOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(offset))
	}
	return offset
}
