// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fpath resolves and measures on-disk locations of the node.
package fpath

import (
	"io/fs"
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

// HomeDir returns the home dir of the current user, or the working dir when
// there is none.
func HomeDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	if u, err := user.Current(); err == nil && u.HomeDir != "" {
		return u.HomeDir, nil
	}
	return os.Getwd()
}

// DefaultDataDir is ~/.org.vechain.stakepoints, or a relative dir of the same
// name when no home dir can be found.
func DefaultDataDir() string {
	const name = ".org.vechain.stakepoints"
	home, err := HomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

// MakeDir creates dir and its parents with owner-only permissions.
func MakeDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolve dir %q", dir)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", errors.Wrapf(err, "create dir %q", abs)
	}
	return abs, nil
}

// SizeOfDir sums the sizes of the regular files under path.
func SizeOfDir(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}
