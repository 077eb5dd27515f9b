// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth authenticates stake and unstake requests submitted over the API.
//
// A request is RLP encoded, hashed with blake2b and signed with a secp256k1
// key, the same way thor transactions are signed. The recovered signer is the
// principal the ledger checks against the record owner.
package auth

import (
	"crypto/ecdsa"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/thor"
)

// Op is the ledger operation a request asks for.
type Op string

const (
	OpCreate  Op = "create"
	OpStake   Op = "stake"
	OpUnstake Op = "unstake"
)

// Request is the signed payload of a ledger call. For OpCreate, Record is
// the owner and Amount is zero.
type Request struct {
	Op         Op
	Record     thor.Address
	Amount     uint64
	Expiration uint64 // unix seconds, inclusive
	Nonce      uint64
}

// SigningHash returns the hash the signature covers.
func (r *Request) SigningHash() thor.Bytes32 {
	return thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, r)
	})
}

// SignedRequest is a request with its 65 byte [R || S || V] signature.
type SignedRequest struct {
	Request
	Signature []byte
}

// ID identifies the request origin signed, independent of the signature
// encoding, for replay protection.
func (s *SignedRequest) ID(origin thor.Address) thor.Bytes32 {
	h := s.SigningHash()
	return thor.Blake2b(h[:], origin[:])
}

func (s *SignedRequest) sigKey() thor.Bytes32 {
	h := s.SigningHash()
	return thor.Blake2b(h[:], s.Signature)
}

// Sign signs req for the given domain with key.
func Sign(req Request, domain thor.Bytes32, key *ecdsa.PrivateKey) (*SignedRequest, error) {
	hash := maskHash(req.SigningHash(), domain)
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return nil, errors.Wrap(err, "sign request")
	}
	return &SignedRequest{Request: req, Signature: sig}, nil
}

// MustSign is like Sign but panics on error.
func MustSign(req Request, domain thor.Bytes32, key *ecdsa.PrivateKey) *SignedRequest {
	s, err := Sign(req, domain, key)
	if err != nil {
		panic(err)
	}
	return s
}

// maskHash binds a signing hash to a domain so a request signed for one
// deployment can not be replayed on another.
func maskHash(h, domain thor.Bytes32) thor.Bytes32 {
	for i := range h {
		h[i] ^= domain[i]
	}
	return h
}
