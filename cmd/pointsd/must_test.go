// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepoints/api/admin/health"
	"github.com/vechain/stakepoints/co"
	"github.com/vechain/stakepoints/genesis"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range append([]cli.Flag{genesisFlag, persistFlag}, commonFlags...) {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSelectGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: local\n"), 0o600))

	gene, err := selectGenesis(newContext(t, "--genesis", path))
	require.NoError(t, err)
	assert.Equal(t, "local", gene.Name())

	_, err = selectGenesis(newContext(t, "--genesis", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestMakeInstanceDir(t *testing.T) {
	dataDir := t.TempDir()
	gene := genesis.NewDevnet()

	dir, err := makeInstanceDir(newContext(t, "--data-dir", dataDir), gene)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "instance-"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = makeInstanceDir(newContext(t, "--data-dir", ""), gene)
	assert.Error(t, err)
}

func TestOpenJournal(t *testing.T) {
	jnl, err := openJournal(newContext(t, "--skip-journal"), t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, jnl)

	jnl, err = openJournal(newContext(t), "")
	require.NoError(t, err)
	require.NotNil(t, jnl)
	assert.NoError(t, jnl.Close())

	dir := t.TempDir()
	jnl, err = openJournal(newContext(t), dir)
	require.NoError(t, err)
	defer jnl.Close()
	assert.Equal(t, filepath.Join(dir, "journal.db"), jnl.Path())
}

func TestOpenMainDB(t *testing.T) {
	dir := t.TempDir()
	db, cacheMB, err := openMainDB(newContext(t, "--cache", "16"), dir)
	require.NoError(t, err)
	defer db.Close()

	assert.GreaterOrEqual(t, cacheMB, minCacheSizeMB)
	_, err = os.Stat(filepath.Join(dir, "main.db"))
	assert.NoError(t, err)
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, minCacheSizeMB, normalizeCacheSize(1))
	assert.LessOrEqual(t, normalizeCacheSize(256), 256)
}

func TestRecordCacheSize(t *testing.T) {
	assert.Equal(t, 0, recordCacheSize(0))
	assert.Equal(t, 128*1024, recordCacheSize(128))
}

func TestStartNTPCheck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := health.New(func() error { return nil })

	queried := make(chan string, 1)
	query := func(server string) (time.Duration, error) {
		select {
		case queried <- server:
		default:
		}
		return time.Minute, nil
	}

	var goes co.Goes
	startNTPCheck(ctx, &goes, query, "ntp.example.org", h)

	select {
	case server := <-queried:
		assert.Equal(t, "ntp.example.org", server)
	case <-time.After(time.Second):
		t.Fatal("initial clock check did not run")
	}

	cancel()
	goes.Wait()

	status := h.Status(time.Second)
	assert.False(t, status.Healthy, "a minute of drift is unhealthy")
	require.NotNil(t, status.ClockCheck)
}

func TestStartNTPCheckUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := health.New(func() error { return nil })

	var goes co.Goes
	startNTPCheck(ctx, &goes, func(string) (time.Duration, error) {
		return 0, errors.New("unreachable")
	}, "", h)
	cancel()
	goes.Wait()

	assert.True(t, h.Status(time.Second).Healthy)
}
