// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package points converts a held balance and an elapsed duration into loyalty points.
//
// Everything in this package is pure: functions take values and return values,
// so a failed computation can never leave a caller's record half-updated.
package points

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"github.com/vechain/stakepoints/reverts"
	"github.com/vechain/stakepoints/thor"
)

var (
	ErrOverflow         = reverts.New("arithmetic overflow")
	ErrInvalidTimestamp = reverts.New("invalid timestamp")
)

// intermediates are bounded to a double-width (128 bit) unsigned integer.
const maxBits = 128

var (
	pointsPerUnitPerDay = uint256.NewInt(thor.PointsPerUnitPerDay)
	unitSize            = uint256.NewInt(thor.UnitSize)
	secondsPerDay       = uint256.NewInt(thor.SecondsPerDay)
)

// State is the accrual-relevant part of a stake record.
type State struct {
	Staked      uint64
	TotalPoints uint64
	LastUpdated uint64 // unix seconds
}

// Earned returns the points a balance of staked units earns over elapsed seconds:
//
//	staked * elapsed * PointsPerUnitPerDay / UnitSize / SecondsPerDay
//
// The products are taken first, then each division truncates in turn.
func Earned(staked, elapsed uint64) (uint64, error) {
	x := uint256.NewInt(staked)
	x.Mul(x, uint256.NewInt(elapsed))

	if _, overflow := x.MulOverflow(x, pointsPerUnitPerDay); overflow || x.BitLen() > maxBits {
		return 0, ErrOverflow
	}
	x.Div(x, unitSize)
	x.Div(x, secondsPerDay)

	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// Accrue folds the points earned in [s.LastUpdated, now] into s.TotalPoints and
// advances s.LastUpdated to now. The input is never modified; on error the
// returned state equals the input.
func Accrue(s State, now uint64) (State, error) {
	if now < s.LastUpdated {
		return s, ErrInvalidTimestamp
	}

	next := s
	if elapsed := now - s.LastUpdated; elapsed > 0 && s.Staked > 0 {
		earned, err := Earned(s.Staked, elapsed)
		if err != nil {
			return s, err
		}
		total, overflow := math.SafeAdd(s.TotalPoints, earned)
		if overflow {
			return s, ErrOverflow
		}
		next.TotalPoints = total
	}
	next.LastUpdated = now
	return next, nil
}

// Pending returns the total points s would hold once accrued to now.
// It reports the stored total when accrual is not possible.
func Pending(s State, now uint64) uint64 {
	next, err := Accrue(s, now)
	if err != nil {
		return s.TotalPoints
	}
	return next.TotalPoints
}

// Whole expresses a points total in whole unit-days.
func Whole(total uint64) uint64 {
	return total / thor.PointsPerUnitPerDay
}
