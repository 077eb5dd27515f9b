// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr string
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", ""},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", ""},
		{"0X7567D83B7B8D80ADDCB281A71D54FC7B3364FFED", ""},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", "invalid prefix"},
		{"0x7567d83b", "invalid length"},
	}

	for _, tt := range tests {
		addr, err := ParseAddress(tt.in)
		if tt.wantErr != "" {
			assert.EqualError(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
	}

	_, err := ParseAddress("0xzz67d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.Error(t, err)
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("owner"))
	data, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	// as a map key
	data, err = json.Marshal(map[Address]uint64{addr: 1})
	require.NoError(t, err)
	assert.Equal(t, `{"`+addr.String()+`":1}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`"0x1234"`), &decoded))
	assert.Equal(t, addr, decoded, "left untouched on error")
}

func TestMustParseAddressPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseAddress("nope") })
}
