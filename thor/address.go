// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding"
	"encoding/hex"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// AddressLength length of address in bytes.
const AddressLength = common.AddressLength

// Address identifies a principal, a record or a vault.
type Address common.Address

var (
	_ encoding.TextMarshaler   = Address{}
	_ encoding.TextUnmarshaler = (*Address)(nil)
)

// String returns the 0x prefixed lower case hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Bytes returns byte slice form of address.
func (a Address) Bytes() []byte {
	return a[:]
}

// MarshalText encodes a as its String form, which is also how it appears in
// json documents and as a map key.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts what ParseAddress accepts.
func (a *Address) UnmarshalText(text []byte) error {
	return decodeHex(string(text), a[:])
}

// ParseAddress parses a 40 digit hex string, optionally 0x prefixed.
func ParseAddress(s string) (addr Address, err error) {
	err = decodeHex(s, addr[:])
	return
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// BytesToAddress converts bytes slice into address, cropping or left padding
// b to AddressLength.
func BytesToAddress(b []byte) Address {
	return Address(common.BytesToAddress(b))
}

// decodeHex fills out from s, which must hold exactly len(out) bytes of hex
// with an optional 0x or 0X prefix. out is left untouched on error.
func decodeHex(s string, out []byte) error {
	if len(s) == 2*len(out)+2 {
		if s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
			return errors.New("invalid prefix")
		}
		s = s[2:]
	}
	if len(s) != 2*len(out) {
		return errors.New("invalid length")
	}
	buf := make([]byte, len(out))
	if _, err := hex.Decode(buf, []byte(s)); err != nil {
		return err
	}
	copy(out, buf)
	return nil
}
