// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/stakepoints/cache"
	"github.com/vechain/stakepoints/reverts"
	"github.com/vechain/stakepoints/thor"
)

const originCacheSize = 1024

var ErrBadSignature = reverts.New("invalid request signature")

// Signing recovers the principal of signed requests for one domain.
type Signing struct {
	domain thor.Bytes32
	cache  *cache.LRU
}

// NewSigning creates a Signing bound to domain.
func NewSigning(domain thor.Bytes32) *Signing {
	return &Signing{
		domain: domain,
		cache:  cache.MustNewLRU(originCacheSize).Named("origins"),
	}
}

// Domain returns the domain requests must be signed for.
func (s *Signing) Domain() thor.Bytes32 {
	return s.domain
}

// validSignature reports whether sig is a canonical [R || S || V] signature.
// Upper range S values are rejected so that a signature has exactly one
// encoding.
func validSignature(sig []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	return crypto.ValidateSignatureValues(sig[64], r, s, true)
}

// Origin returns the address that signed req.
func (s *Signing) Origin(req *SignedRequest) (thor.Address, error) {
	if !validSignature(req.Signature) {
		return thor.Address{}, ErrBadSignature
	}
	v, err := s.cache.GetOrLoad(req.sigKey(), func(any) (any, error) {
		hash := maskHash(req.SigningHash(), s.domain)
		pub, err := crypto.SigToPub(hash[:], req.Signature)
		if err != nil {
			return nil, ErrBadSignature
		}
		return thor.Address(crypto.PubkeyToAddress(*pub)), nil
	})
	if err != nil {
		return thor.Address{}, err
	}
	return v.(thor.Address), nil
}
