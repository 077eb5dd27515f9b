// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vechain/stakepoints/log"
)

const logFileMaxBackups = 10

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("value %d exceeds max int", val)
	}
	return int(val), nil
}

// logOutput returns where logs go. A non-empty path selects a size rotated
// file, otherwise stdout.
func logOutput(path string, maxSizeMB int) (io.WriteCloser, bool) {
	if path == "" {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		return nopCloser{os.Stdout}, useColor
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: logFileMaxBackups,
		Compress:   true,
	}, false
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newLogHandler(w io.Writer, level *slog.LevelVar, jsonLogs, useColor bool) slog.Handler {
	if jsonLogs {
		return log.JSONHandler(w, level)
	}
	return log.NewTerminalHandler(w, level, useColor)
}

// initLogger installs the root logger and returns its adjustable level
// together with a func releasing the log output.
func initLogger(verbosity uint64, jsonLogs bool, path string, maxSizeMB uint64) (*slog.LevelVar, func(), error) {
	lvl, err := readIntFromUInt64Flag(verbosity)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse verbosity flag")
	}
	maxSize, err := readIntFromUInt64Flag(maxSizeMB)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse log-file-max-size flag")
	}

	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(lvl))

	output, useColor := logOutput(path, maxSize)
	log.SetDefault(log.NewLogger(newLogHandler(output, &level, jsonLogs, useColor)))

	return &level, func() { output.Close() }, nil
}
