// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package custody derives the addresses at which the ledger holds staked funds.
//
// A custody address is keccak256(seed ‖ owner ‖ bump ‖ program) truncated to an
// address, accepted only if the full hash is not the x-coordinate of a secp256k1
// point. No private key can therefore sign for it, and the only way to move funds
// out is to present the owner and bump that re-derive it: the record's derivation
// proof.
package custody

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/thor"
)

var (
	ErrOnCurve      = errors.New("custody: derived key lies on the curve")
	ErrNoViableBump = errors.New("custody: unable to find a viable bump")
)

// CreateAddress derives the custody address of owner's record with the given bump.
func CreateAddress(owner thor.Address, bump byte) (thor.Address, error) {
	h := thor.Keccak256(thor.RecordSeed, owner.Bytes(), []byte{bump}, thor.ProgramID.Bytes())
	if onCurve(h) {
		return thor.Address{}, ErrOnCurve
	}
	return thor.BytesToAddress(h[12:]), nil
}

// FindAddress returns the canonical custody address of owner's record, which is
// the one derived with the highest viable bump.
func FindAddress(owner thor.Address) (thor.Address, byte, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateAddress(owner, byte(bump))
		if err == nil {
			return addr, byte(bump), nil
		}
	}
	return thor.Address{}, 0, ErrNoViableBump
}

func onCurve(h thor.Bytes32) bool {
	compressed := make([]byte, 0, secp256k1.PubKeyBytesLenCompressed)
	compressed = append(compressed, secp256k1.PubKeyFormatCompressedEven)
	compressed = append(compressed, h[:]...)

	_, err := secp256k1.ParsePubKey(compressed)
	return err == nil
}

// Signer is the credential a record carries to authenticate as its own custody
// address. It is fixed when the record is created.
type Signer struct {
	Owner thor.Address
	Bump  byte
}

// Address re-derives the custody address the signer speaks for.
func (s Signer) Address() (thor.Address, error) {
	return CreateAddress(s.Owner, s.Bump)
}

// Verify reports whether the signer derives exactly addr.
func (s Signer) Verify(addr thor.Address) bool {
	derived, err := s.Address()
	return err == nil && derived == addr
}
