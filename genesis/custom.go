// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepoints/thor"
)

// CustomGenesis is the user supplied genesis file.
//
//	name: testnet-7
//	balances:
//	  "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed": 1000000000000
type CustomGenesis struct {
	Name     string            `yaml:"name"`
	Balances map[string]uint64 `yaml:"balances"`
}

// Decode reads a CustomGenesis, rejecting unknown fields.
func Decode(r io.Reader) (*CustomGenesis, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var gen CustomGenesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

// Load reads and builds the genesis file at path.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	gen, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return NewCustomNet(gen)
}

// NewCustomNet validates gen and builds a Genesis from it.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.Name == "" {
		return nil, errors.New("name must be set")
	}

	var (
		allocs = make([]Allocation, 0, len(gen.Balances))
		supply uint64
	)
	for str, amount := range gen.Balances {
		addr, err := thor.ParseAddress(str)
		if err != nil {
			return nil, errors.Wrapf(err, "balance address %q", str)
		}
		if amount == 0 {
			return nil, errors.Errorf("%v: balance must be a non-zero integer", addr)
		}
		var overflow bool
		if supply, overflow = math.SafeAdd(supply, amount); overflow {
			return nil, errors.New("total supply overflows")
		}
		allocs = append(allocs, Allocation{addr, amount})
	}
	sort.Slice(allocs, func(i, j int) bool {
		return bytes.Compare(allocs[i].Address[:], allocs[j].Address[:]) < 0
	})
	for i := 1; i < len(allocs); i++ {
		if allocs[i].Address == allocs[i-1].Address {
			return nil, errors.Errorf("%v: duplicated balance", allocs[i].Address)
		}
	}
	return newGenesis(gen.Name, allocs), nil
}
