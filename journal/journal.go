// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package journal records committed ledger operations in sqlite for later queries.
package journal

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/ledger"
	"github.com/vechain/stakepoints/thor"
)

type Journal struct {
	path          string
	db            *sql.DB
	driverVersion string
}

var _ ledger.Journal = (*Journal)(nil)

// New creates or opens the journal at path.
func New(path string) (j *Journal, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if j == nil {
			db.Close()
		}
	}()
	// a single connection keeps an in-memory database alive and shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(entryTableSchema); err != nil {
		return nil, errors.Wrap(err, "create journal schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &Journal{path, db, driverVer}, nil
}

// NewMem creates a journal in ram.
func NewMem() (*Journal, error) {
	return New(":memory:")
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Path() string {
	return j.path
}

// DriverVersion returns the sqlite library version in use.
func (j *Journal) DriverVersion() string {
	return j.driverVersion
}

func u64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// Write appends a committed ledger event.
func (j *Journal) Write(ctx context.Context, ev *ledger.Event) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO entry(record, owner, op, amount, staked, points, ts) VALUES(?,?,?,?,?,?,?)",
		ev.Record.Bytes(),
		ev.Owner.Bytes(),
		string(ev.Op),
		u64(ev.Amount),
		u64(ev.Staked),
		u64(ev.Points),
		clampInt64(ev.Time),
	)
	return errors.Wrap(err, "insert journal entry")
}

// Filter returns the entries matching filter, all entries when filter is nil.
func (j *Journal) Filter(ctx context.Context, filter *Filter) ([]*Entry, error) {
	if filter == nil {
		return j.query(ctx, "SELECT * FROM entry ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT * FROM entry WHERE 1"
	if filter.Record != nil {
		args = append(args, filter.Record.Bytes())
		stmt += " AND record = ?"
	}
	if filter.Op != "" {
		args = append(args, filter.Op)
		stmt += " AND op = ?"
	}
	if filter.Range != nil {
		args = append(args, clampInt64(filter.Range.From))
		stmt += " AND ts >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, clampInt64(filter.Range.To))
			stmt += " AND ts <= ?"
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, clampInt64(filter.Options.Offset), clampInt64(filter.Options.Limit))
	}
	return j.query(ctx, stmt, args...)
}

func (j *Journal) query(ctx context.Context, stmt string, args ...any) ([]*Entry, error) {
	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query journal")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq                    uint64
			record, owner          []byte
			op                     string
			amount, staked, points []byte
			ts                     uint64
		)
		if err := rows.Scan(&seq, &record, &owner, &op, &amount, &staked, &points, &ts); err != nil {
			return nil, errors.Wrap(err, "scan journal entry")
		}
		entries = append(entries, &Entry{
			Seq:    seq,
			Record: thor.BytesToAddress(record),
			Owner:  thor.BytesToAddress(owner),
			Op:     op,
			Amount: binary.BigEndian.Uint64(amount),
			Staked: binary.BigEndian.Uint64(staked),
			Points: binary.BigEndian.Uint64(points),
			Time:   ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate journal")
	}
	return entries, nil
}
