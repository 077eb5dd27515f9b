// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

var sink []byte

func TestPrettyInt64(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{99999, "99999"},
		{100000, "100,000"},
		{-100000, "-100,000"},
		{1000000, "1,000,000"},
		{math.MaxInt64, "9,223,372,036,854,775,807"},
		{math.MinInt64, "-9,223,372,036,854,775,808"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(appendInt64(nil, tt.n)))
	}
}

func TestPrettyUint64(t *testing.T) {
	assert.Equal(t, "18,446,744,073,709,551,615", string(appendUint64(nil, math.MaxUint64, false)))
	assert.Equal(t, "12345", string(appendUint64(nil, 12345, false)))
}

func TestPrettyU256(t *testing.T) {
	u := uint256.NewInt(1_000_000)
	assert.Equal(t, "1,000,000", string(appendU256(nil, u)))
	u.Lsh(u, 100)
	assert.Equal(t, u.Dec(), string(appendU256(nil, u)))
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "plain", string(appendEscapeString(nil, "plain")))
	assert.Equal(t, `"with space"`, string(appendEscapeString(nil, "with space")))
	assert.Equal(t, `"a=b"`, string(appendEscapeString(nil, "a=b")))
	assert.Equal(t, `"line\nbreak"`, escapeMessage("line\nbreak"))
	assert.Equal(t, "tab\tok", escapeMessage("tab\tok"))
}

func BenchmarkPrettyInt64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendInt64(buf, rand.Int64()) //#nosec G404
	}
}

func BenchmarkPrettyUint64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendUint64(buf, rand.Uint64(), false) //#nosec G404
	}
}
