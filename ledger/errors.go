// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/points"
	"github.com/vechain/stakepoints/reverts"
)

var (
	ErrInvalidAmount     = reverts.New("amount must be greater than zero")
	ErrInsufficientStake = reverts.New("insufficient stake")
	ErrUnauthorized      = reverts.New("requester is not the record owner")
	ErrOverflow          = points.ErrOverflow
	ErrUnderflow         = reverts.New("arithmetic underflow")
	ErrInvalidTimestamp  = points.ErrInvalidTimestamp
	ErrTransferFailure   = reverts.New("transfer failed")
	ErrRecordNotFound    = reverts.New("record not found")
	ErrNotImplemented    = reverts.New("not implemented")
)

// TransferError reports a vault transfer the ledger could not complete.
// It matches ErrTransferFailure and unwraps to the vault's error.
type TransferError struct {
	Op    string
	Cause error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransferFailure.Error(), e.Op, e.Cause)
}

func (e *TransferError) Is(target error) bool {
	return target == ErrTransferFailure
}

func (e *TransferError) Unwrap() error {
	return e.Cause
}

// result classifies err for the ops counter.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range []struct {
		target error
		label  string
	}{
		{ErrTransferFailure, "transfer_failure"},
		{ErrInvalidAmount, "invalid_amount"},
		{ErrInsufficientStake, "insufficient_stake"},
		{ErrUnauthorized, "unauthorized"},
		{ErrOverflow, "overflow"},
		{ErrUnderflow, "underflow"},
		{ErrInvalidTimestamp, "invalid_timestamp"},
		{ErrRecordNotFound, "not_found"},
		{ErrNotImplemented, "not_implemented"},
	} {
		if errors.Is(err, c.target) {
			return c.label
		}
	}
	return "internal"
}
