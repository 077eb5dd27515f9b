// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Accrual constants.
const (
	PointsPerUnitPerDay uint64 = 1_000_000     // points earned by one whole unit held for one day.
	UnitSize            uint64 = 1_000_000_000 // smallest indivisible units per whole unit.
	SecondsPerDay       uint64 = 86_400
)

// RecordSeed prefixes every custody derivation.
var RecordSeed = []byte("client")

// ProgramID is mixed into custody derivations so that addresses are bound to this ledger.
var ProgramID = BytesToBytes32([]byte("stakepoints"))
