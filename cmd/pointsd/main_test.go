// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepoints/genesis"
	"github.com/vechain/stakepoints/lvldb"
	"github.com/vechain/stakepoints/vault"
)

func TestRunSolo(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = run(ctx, newContext(t, "--api-addr", "127.0.0.1:0", "--skip-journal"), &instance{
		gene:     genesis.NewDevnet(),
		mainDB:   db,
		logLevel: new(slog.LevelVar),
		solo:     true,
	})
	require.NoError(t, err)

	bal, err := vault.New(db).BalanceOf(genesis.DevAccounts()[0].Address)
	require.NoError(t, err)
	assert.Equal(t, genesis.DevBalance, bal)
}

func TestRunGenesisMismatch(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = genesis.NewDevnet().Apply(db, vault.New(db))
	require.NoError(t, err)

	other, err := genesis.NewCustomNet(&genesis.CustomGenesis{Name: "other"})
	require.NoError(t, err)

	err = run(context.Background(), newContext(t, "--api-addr", "127.0.0.1:0"), &instance{
		gene:     other,
		mainDB:   db,
		logLevel: new(slog.LevelVar),
	})
	assert.ErrorIs(t, err, genesis.ErrDomainMismatch)
}
