// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ClockCheck is the outcome of the latest NTP offset check.
type ClockCheck struct {
	Offset    string     `json:"offset"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy    bool        `json:"healthy"`
	Storage    bool        `json:"storage"`
	ClockCheck *ClockCheck `json:"clockCheck"`
}

// Health tracks the conditions the node needs to serve the ledger: a
// reachable store and a local clock close to network time.
type Health struct {
	lock      sync.RWMutex
	probe     func() error
	offset    time.Duration
	checkedAt time.Time
}

// New creates a Health that calls probe to check the store on every status
// request.
func New(probe func() error) *Health {
	return &Health{probe: probe}
}

// ClockOffset records the offset measured by an NTP check.
func (h *Health) ClockOffset(offset time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.offset = offset
	h.checkedAt = time.Now()
}

// Status reports the node healthy when the store answers and the last
// measured clock offset is within maxOffset. A node that never ran a clock
// check is judged on storage alone.
func (h *Health) Status(maxOffset time.Duration) *Status {
	storage := h.probe() == nil

	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{
		Healthy: storage,
		Storage: storage,
	}
	if !h.checkedAt.IsZero() {
		checkedAt := h.checkedAt
		status.ClockCheck = &ClockCheck{
			Offset:    common.PrettyDuration(h.offset).String(),
			Timestamp: &checkedAt,
		}
		offset := h.offset
		if offset < 0 {
			offset = -offset
		}
		status.Healthy = status.Healthy && offset <= maxOffset
	}
	return status
}
