// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepoints/api/admin/health"
	"github.com/vechain/stakepoints/api/utils/fpath"
	"github.com/vechain/stakepoints/auth"
	"github.com/vechain/stakepoints/clock"
	"github.com/vechain/stakepoints/co"
	"github.com/vechain/stakepoints/genesis"
	"github.com/vechain/stakepoints/journal"
	"github.com/vechain/stakepoints/lvldb"
	"github.com/vechain/stakepoints/thor"
)

const (
	guardPruneInterval = time.Minute
	ntpCheckInterval   = 10 * time.Minute
	minCacheSizeMB     = 128
	maxFDCache         = 5120
)

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		cli.ShowAppHelp(ctx)
		return nil, errors.New("genesis flag not specified")
	}
	gene, err := genesis.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load genesis")
	}
	return gene, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	domain := gene.Domain()
	return fpath.MakeDir(filepath.Join(dataDir, fmt.Sprintf("instance-%x", domain[24:])))
}

func openMainDB(ctx *cli.Context, instanceDir string) (*lvldb.LevelDB, int, error) {
	flagMB, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		return nil, 0, errors.Wrap(err, "parse cache flag")
	}
	cacheMB := normalizeCacheSize(flagMB)
	logger.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, cacheMB, nil
}

func openMemMainDB() (*lvldb.LevelDB, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < minCacheSizeMB {
		sizeMB = minCacheSizeMB
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if limitMB >= minCacheSizeMB && sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > maxFDCache {
		return maxFDCache
	}
	return n
}

// openJournal returns nil when journaling is disabled.
func openJournal(ctx *cli.Context, instanceDir string) (*journal.Journal, error) {
	if ctx.Bool(skipJournalFlag.Name) {
		return nil, nil
	}
	if instanceDir == "" {
		jnl, err := journal.NewMem()
		if err != nil {
			return nil, errors.Wrap(err, "open journal")
		}
		return jnl, nil
	}
	dir := filepath.Join(instanceDir, "journal.db")
	jnl, err := journal.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open journal [%v]", dir)
	}
	return jnl, nil
}

// startGuardPruner drops expired consumed requests every guardPruneInterval.
func startGuardPruner(ctx context.Context, goes *co.Goes, guard *auth.Guard, clk clock.Clock) {
	goes.Loop(ctx, guardPruneInterval, func(context.Context) {
		n, err := guard.Prune(clk.Now())
		if err != nil {
			logger.Warn("failed to prune consumed requests", "err", err)
			return
		}
		if n > 0 {
			logger.Debug("pruned consumed requests", "count", n)
		}
	})
}

// startNTPCheck measures the clock offset now and then every ntpCheckInterval.
func startNTPCheck(ctx context.Context, goes *co.Goes, query clock.QueryFunc, server string, h *health.Health) {
	check := func(context.Context) {
		h.ClockOffset(clock.CheckOffset(query, server))
	}
	goes.Go(func() { check(ctx) })
	goes.Loop(ctx, ntpCheckInterval, check)
}

func printStartupMessage(
	name string,
	gene *genesis.Genesis,
	instanceDir string,
	apiURL string,
	metricsURL string,
	adminURL string,
) {
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		nodeName(name),
		gene.Domain(), gene.Name(),
		instanceDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

// nodeName identifies the running binary as name/version/os/go-version.
func nodeName(name string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", name, fullVersion(), runtime.GOOS, runtime.Version())
}

func orDisabled(url string) string {
	if url == "" {
		return "disabled"
	}
	return url
}

func printSoloStartupMessage(gene *genesis.Genesis, instanceDir string, apiURL string) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	info := fmt.Sprintf(`Starting %v
    Network     [ %v %v ]
    Data dir    [ %v ]
    API portal  [ %v ]`,
		nodeName("Stakepoints solo"),
		gene.Domain(), gene.Name(),
		instanceDir,
		apiURL)

	info += tableHead

	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent,
			a.Address,
			thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}
