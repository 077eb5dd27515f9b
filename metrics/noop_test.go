// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()

	require.Nil(t, HTTPHandler())

	for _, m := range []any{
		Counter("noop_counter"),
		CounterVec("noop_counter_vec", []string{"op"}),
		Gauge("noop_gauge"),
		HistogramVec("noop_hist", []string{"op"}, nil),
	} {
		require.IsType(t, noopMeter{}, m)
	}

	// labels are never validated
	CounterVec("noop_counter_vec", []string{"op"}).AddWithLabel(1, map[string]string{"nonsense": "fine"})
	HistogramVec("noop_hist", nil, nil).ObserveWithLabels(1, map[string]string{"nonsense": "fine"})
	Gauge("noop_gauge").Set(42)
}
