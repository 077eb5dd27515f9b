// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		goes Goes
		n    atomic.Int32
	)
	for range 10 {
		goes.Go(func() { n.Add(1) })
	}
	goes.Wait()
	assert.Equal(t, int32(10), n.Load())

	select {
	case <-goes.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed")
	}
}

func TestGoesLoop(t *testing.T) {
	var (
		goes Goes
		n    atomic.Int32
	)
	ctx, cancel := context.WithCancel(context.Background())
	goes.Loop(ctx, time.Millisecond, func(context.Context) { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-goes.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}
