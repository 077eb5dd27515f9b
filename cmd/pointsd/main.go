// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepoints/api"
	"github.com/vechain/stakepoints/api/admin/health"
	"github.com/vechain/stakepoints/api/node"
	"github.com/vechain/stakepoints/api/records"
	"github.com/vechain/stakepoints/api/utils/fpath"
	"github.com/vechain/stakepoints/auth"
	"github.com/vechain/stakepoints/clock"
	"github.com/vechain/stakepoints/cmd/pointsd/httpserver"
	"github.com/vechain/stakepoints/co"
	"github.com/vechain/stakepoints/genesis"
	"github.com/vechain/stakepoints/journal"
	"github.com/vechain/stakepoints/ledger"
	"github.com/vechain/stakepoints/log"
	"github.com/vechain/stakepoints/lvldb"
	"github.com/vechain/stakepoints/metrics"
	"github.com/vechain/stakepoints/vault"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "pointsd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

var commonFlags = []cli.Flag{
	dataDirFlag,
	cacheFlag,
	apiAddrFlag,
	apiCorsFlag,
	apiTimeoutFlag,
	apiJournalLimitFlag,
	apiSlowQueriesThresholdFlag,
	enableAPILogsFlag,
	pprofFlag,
	skipJournalFlag,
	verbosityFlag,
	jsonLogsFlag,
	logFileFlag,
	logFileMaxSizeFlag,
	enableMetricsFlag,
	metricsAddrFlag,
	enableAdminFlag,
	adminAddrFlag,
	ntpCheckFlag,
	ntpServerFlag,
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Pointsd",
		Usage:     "Staking ledger accruing loyalty points",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags:     append([]cli.Flag{genesisFlag}, commonFlags...),
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "solo",
				Usage:  "single instance ledger seeded with dev accounts, for test & dev",
				Flags:  append([]cli.Flag{persistFlag}, commonFlags...),
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, closeLog, err := initLogger(
		ctx.Uint64(verbosityFlag.Name),
		ctx.Bool(jsonLogsFlag.Name),
		ctx.String(logFileFlag.Name),
		ctx.Uint64(logFileMaxSizeFlag.Name),
	)
	if err != nil {
		return err
	}
	defer closeLog()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}
	if size, err := fpath.SizeOfDir(instanceDir); err == nil {
		logger.Debug("instance dir", "path", instanceDir, "bytes", size)
	}

	mainDB, cacheMB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	jnl, err := openJournal(ctx, instanceDir)
	if err != nil {
		return err
	}
	if jnl != nil {
		defer func() { logger.Info("closing journal..."); jnl.Close() }()
	}

	return run(exitSignal, ctx, &instance{
		gene:        gene,
		mainDB:      mainDB,
		journal:     jnl,
		cacheMB:     cacheMB,
		logLevel:    logLevel,
		instanceDir: instanceDir,
	})
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, closeLog, err := initLogger(
		ctx.Uint64(verbosityFlag.Name),
		ctx.Bool(jsonLogsFlag.Name),
		ctx.String(logFileFlag.Name),
		ctx.Uint64(logFileMaxSizeFlag.Name),
	)
	if err != nil {
		return err
	}
	defer closeLog()

	gene := genesis.NewDevnet()

	var (
		mainDB      *lvldb.LevelDB
		cacheMB     int
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, cacheMB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
	} else {
		if mainDB, err = openMemMainDB(); err != nil {
			return err
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	jnl, err := openJournal(ctx, instanceDir)
	if err != nil {
		return err
	}
	if jnl != nil {
		defer func() { logger.Info("closing journal..."); jnl.Close() }()
	}

	return run(exitSignal, ctx, &instance{
		gene:        gene,
		mainDB:      mainDB,
		journal:     jnl,
		cacheMB:     cacheMB,
		logLevel:    logLevel,
		instanceDir: instanceDir,
		solo:        true,
	})
}

type instance struct {
	gene        *genesis.Genesis
	mainDB      *lvldb.LevelDB
	journal     *journal.Journal // nil when skipped
	cacheMB     int
	logLevel    *slog.LevelVar
	instanceDir string // empty when in memory
	solo        bool
}

// recordCacheSize converts the record share of the cache budget into entries.
func recordCacheSize(cacheMB int) int {
	const approxRecordSize = 256
	if cacheMB <= 0 {
		return 0
	}
	return cacheMB / 4 * 1024 * 1024 / approxRecordSize
}

func run(exitSignal context.Context, ctx *cli.Context, inst *instance) error {
	bank := vault.New(inst.mainDB)
	if _, err := inst.gene.Apply(inst.mainDB, bank); err != nil {
		return errors.Wrap(err, "apply genesis")
	}

	repo := ledger.NewKVRepository(inst.mainDB, recordCacheSize(inst.cacheMB))
	summary, err := repo.Summarize()
	if err != nil {
		return errors.Wrap(err, "summarize records")
	}
	logger.Info("ledger loaded", "records", summary.Records, "staked", summary.Staked)

	var (
		clk           = clock.System{}
		ledgerJournal ledger.Journal
		apiJournal    records.Journal
	)
	if inst.journal != nil {
		ledgerJournal, apiJournal = inst.journal, inst.journal
	}
	led := ledger.New(repo, bank, clk, ledgerJournal)
	signing := auth.NewSigning(inst.gene.Domain())
	guard := auth.NewGuard(inst.mainDB)

	probeKey := []byte("health")
	nodeHealth := health.New(func() error {
		_, err := inst.mainDB.Has(probeKey)
		return err
	})

	var metricsURL, adminURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}
	ledger.ResetStakedGauge(summary.Staked)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), inst.logLevel, apiLogs, nodeHealth)
		if err != nil {
			return errors.Wrap(err, "start admin server")
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	journalLimit := ctx.Uint64(apiJournalLimitFlag.Name)
	handler := api.New(
		&api.Backend{
			Ledger:   led,
			Balances: bank,
			Signing:  signing,
			Guard:    guard,
			Journal:  apiJournal,
			Clock:    clk,
		},
		api.Options{
			AllowedOrigins:       ctx.String(apiCorsFlag.Name),
			PprofOn:              ctx.Bool(pprofFlag.Name),
			EnableReqLogger:      apiLogs,
			SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
			EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
			JournalLimit:         journalLimit,
			Info: node.Info{
				Version: fullVersion(),
				Domain:  inst.gene.Domain(),
				Solo:    inst.solo,
			},
		},
	)

	apiSrv, err := httpserver.ListenAPI(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}

	var goes co.Goes
	defer goes.Wait()
	runCtx, cancel := context.WithCancel(exitSignal)
	defer cancel()

	startGuardPruner(runCtx, &goes, guard, clk)
	if ctx.Bool(ntpCheckFlag.Name) {
		startNTPCheck(runCtx, &goes, clock.NTPQuery, ctx.String(ntpServerFlag.Name), nodeHealth)
	}

	instanceDir := inst.instanceDir
	if instanceDir == "" {
		instanceDir = "Memory"
	}
	if inst.solo {
		printSoloStartupMessage(inst.gene, instanceDir, apiSrv.URL())
	} else {
		printStartupMessage("Pointsd", inst.gene, instanceDir, apiSrv.URL(), metricsURL, adminURL)
	}

	return apiSrv.Serve(runCtx)
}
