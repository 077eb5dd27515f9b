// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts marks errors caused by the caller's request rather than by the node,
// so that transports can report them as rejections instead of internal failures.
package reverts

import "github.com/pkg/errors"

// ErrRevert is a rejected request. Sentinels are compared by identity.
type ErrRevert struct {
	reason string
}

func New(reason string) *ErrRevert {
	return &ErrRevert{reason: reason}
}

func (e *ErrRevert) Error() string {
	return e.reason
}

// IsRevertErr reports whether err, or any error it wraps, is a revert.
func IsRevertErr(err error) bool {
	var revert *ErrRevert
	return err != nil && errors.As(err, &revert)
}
